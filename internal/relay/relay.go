// Package relay 实现消息中继：接收页面侧发来的动作消息，
// 维护最近一次抽取结果的快照，并驱动侧边面板的打开与聚焦。
package relay

import (
	"context"
	"encoding/json"
	"time"
	"truelens-go/internal/model"
	"truelens-go/pkg/log"
)

// 中继支持的动作。未知动作也会得到应答，永远不会让发送方挂起。
const (
	ActionArticleDetected = "articleDetected"
	ActionArticleNotFound = "articleNotFound"
	ActionOpenSidePanel   = "openSidePanel"
	ActionGetArticleText  = "getArticleText"
	ActionAnalyzeArticle  = "analyzeArticle"
)

// snapshotKey 是快照在 Store 里的键。每次页面加载整体覆盖。
const snapshotKey = "lastSnapshot"

// configKey 是面板配置 JSON 在 Store 里的键。
const configKey = "panelConfig"

// Message 是页面侧发来的一条动作消息。
type Message struct {
	Action   string              `json:"action"`
	Text     string              `json:"text,omitempty"`
	Metadata *model.PageMetadata `json:"metadata,omitempty"`
}

// Response 是中继对一条消息的应答。
type Response map[string]interface{}

// Store 是中继的本地 KV 存储。生产环境由 Redis 支撑。
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Broadcaster 向所有已连接的页面广播一条通知。失败只记日志。
type Broadcaster func(ctx context.Context, event string) error

// Relay 持有中继的全部状态。
type Relay struct {
	store     Store
	panel     *PanelState
	windows   WindowSystem
	panelURL  string
	broadcast Broadcaster
}

// New 创建一个消息中继。broadcast 允许为 nil，此时跳过广播。
func New(store Store, windows WindowSystem, panelURL string, broadcast Broadcaster) *Relay {
	return &Relay{
		store:     store,
		panel:     NewPanelState(),
		windows:   windows,
		panelURL:  panelURL,
		broadcast: broadcast,
	}
}

// Dispatch 按 action 分发一条消息并返回应答。
// 所有分支都会给出应答，包括未知动作。
func (r *Relay) Dispatch(ctx context.Context, msg Message) Response {
	switch msg.Action {
	case ActionArticleDetected, ActionArticleNotFound:
		r.cacheSnapshot(ctx, msg)
		return Response{"success": true}
	case ActionOpenSidePanel:
		r.OpenOrFocusPanel(ctx)
		return Response{"success": true}
	case ActionGetArticleText:
		return Response{"received": true}
	case ActionAnalyzeArticle:
		return Response{"status": "processing"}
	default:
		log.Warnf("[Relay] 未知动作: %q", msg.Action)
		return Response{"success": false, "ignored": true}
	}
}

// Snapshot 返回缓存的最近一次页面快照，没有时返回 ok=false。
func (r *Relay) Snapshot(ctx context.Context) (model.ArticleSnapshot, bool) {
	raw, ok, err := r.store.Get(ctx, snapshotKey)
	if err != nil {
		log.Warnf("[Relay] 读取快照失败: %v", err)
		return model.ArticleSnapshot{}, false
	}
	if !ok {
		return model.ArticleSnapshot{}, false
	}
	var snap model.ArticleSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warnf("[Relay] 快照解析失败: %v", err)
		return model.ArticleSnapshot{}, false
	}
	return snap, true
}

// cacheSnapshot 整体覆盖缓存的页面快照。articleNotFound 会清掉正文。
func (r *Relay) cacheSnapshot(ctx context.Context, msg Message) {
	snap := model.ArticleSnapshot{
		Action:     msg.Action,
		Metadata:   msg.Metadata,
		DetectedAt: time.Now(),
	}
	if msg.Action == ActionArticleDetected {
		snap.Text = msg.Text
	}
	b, err := json.Marshal(snap)
	if err != nil {
		log.Warnf("[Relay] 快照序列化失败: %v", err)
		return
	}
	if err := r.store.Set(ctx, snapshotKey, string(b)); err != nil {
		log.Warnf("[Relay] 缓存快照失败: %v", err)
	}
}

// ArticleTextAnswer 构造页面侧对 getArticleText 请求的应答。
// 只有缓存着 articleDetected 快照时才携带正文与元数据。
func (r *Relay) ArticleTextAnswer(ctx context.Context) Response {
	snap, ok := r.Snapshot(ctx)
	if !ok || snap.Action != ActionArticleDetected {
		return Response{"text": "", "success": false}
	}
	return Response{"text": snap.Text, "metadata": snap.Metadata, "success": true}
}

// SeedConfig 执行一次性的配置播种：仅当存储里还没有配置时写入默认配置，
// 然后尽力广播一条更新通知。重复调用是无害的。
func (r *Relay) SeedConfig(ctx context.Context, defaultConfig string) error {
	_, ok, err := r.store.Get(ctx, configKey)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := r.store.Set(ctx, configKey, defaultConfig); err != nil {
		return err
	}
	if r.broadcast != nil {
		if err := r.broadcast(ctx, "config updated"); err != nil {
			log.Warnf("[Relay] 广播配置更新失败: %v", err)
		}
	}
	return nil
}
