package relay

import (
	"context"
	"sync"
	"truelens-go/pkg/log"
)

// PanelWidth 是侧边面板弹窗的固定宽度。
const PanelWidth = 420

// Window 描述窗口系统里一个窗口的几何信息。
type Window struct {
	ID     int
	Left   int
	Top    int
	Width  int
	Height int
}

// Geometry 是创建弹窗时的期望位置与尺寸。
type Geometry struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// WindowSystem 抽象了中继操作窗口所需的能力。
type WindowSystem interface {
	// CurrentWindow 返回当前活动窗口的几何信息。
	CurrentWindow(ctx context.Context) (Window, error)
	// Focus 把指定窗口带到前台。窗口已不存在时返回错误。
	Focus(ctx context.Context, windowID int) error
	// CreatePopup 按给定几何创建一个弹窗，返回新窗口。
	CreatePopup(ctx context.Context, url string, geom Geometry) (Window, error)
	// OpenTab 在普通标签页中打开 URL，作为弹窗失败时的兜底。
	OpenTab(ctx context.Context, url string) error
}

// PanelState 记录当前面板窗口的 ID，跨消息保持。
type PanelState struct {
	mu       sync.Mutex
	windowID int
	open     bool
}

// NewPanelState 创建一个空的 PanelState。
func NewPanelState() *PanelState {
	return &PanelState{}
}

// Get 返回记录的面板窗口 ID。
func (p *PanelState) Get() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.windowID, p.open
}

// Set 记录面板窗口 ID。
func (p *PanelState) Set(windowID int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.windowID = windowID
	p.open = true
}

// Clear 清除面板记录，下次打开会重新创建窗口。
func (p *PanelState) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.windowID = 0
	p.open = false
}

// OpenOrFocusPanel 打开或聚焦侧边面板。
// 已有面板窗口时只做聚焦；聚焦失败说明窗口已被关闭，清除记录后重新创建。
// 弹窗创建失败时回退到普通标签页，任何失败都不会向调用方传播。
func (r *Relay) OpenOrFocusPanel(ctx context.Context) {
	if id, ok := r.panel.Get(); ok {
		if err := r.windows.Focus(ctx, id); err == nil {
			return
		}
		// 窗口已消失，走重建
		r.panel.Clear()
	}

	cur, err := r.windows.CurrentWindow(ctx)
	if err != nil {
		log.Warnf("[Relay] 获取当前窗口失败, 回退到标签页: %v", err)
		r.openTabFallback(ctx)
		return
	}

	left := cur.Left + cur.Width - PanelWidth
	if left < 0 {
		left = 0
	}
	geom := Geometry{
		Left:   left,
		Top:    cur.Top,
		Width:  PanelWidth,
		Height: cur.Height,
	}

	win, err := r.windows.CreatePopup(ctx, r.panelURL, geom)
	if err != nil {
		log.Warnf("[Relay] 创建面板弹窗失败, 回退到标签页: %v", err)
		r.openTabFallback(ctx)
		return
	}
	r.panel.Set(win.ID)
}

func (r *Relay) openTabFallback(ctx context.Context) {
	if err := r.windows.OpenTab(ctx, r.panelURL); err != nil {
		log.Warnf("[Relay] 打开兜底标签页失败: %v", err)
	}
}
