// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"truelens-go/internal/config"
	"truelens-go/internal/model"
	"truelens-go/internal/repository"
	"truelens-go/pkg/llm"
	"truelens-go/pkg/log"
	"truelens-go/pkg/search"
	"truelens-go/pkg/tasks"

	"github.com/google/uuid"
)

// AnalysisResult 是一次文章分析的返回结果。
type AnalysisResult struct {
	ReliabilityScore int      `json:"reliabilityScore"`
	Summary          []string `json:"summary"`
	Claims           []string `json:"claims"`
}

// AnalysisService 定义了文章分析编排的接口。
type AnalysisService interface {
	Analyze(ctx context.Context, text, userID, sourceURL string) (*AnalysisResult, error)
}

// Archiver 把一次分析的完整原文归档到对象存储。失败只记日志，不影响请求。
type Archiver func(ctx context.Context, analysisID, text string) error

// IndexNotifier 把索引任务投递到消息队列。失败只记日志，不影响请求。
type IndexNotifier func(task tasks.AnalysisIndexTask) error

type analysisService struct {
	llmClient    llm.Client
	searchClient search.Client
	analysisRepo repository.AnalysisRepository
	profileRepo  repository.ProfileRepository
	cfg          config.AnalysisConfig
	archive      Archiver
	notifyIndex  IndexNotifier
}

// NewAnalysisService 创建一个新的 AnalysisService 实例。
// archive 和 notifyIndex 允许为 nil，此时对应的善后步骤被跳过。
func NewAnalysisService(
	llmClient llm.Client,
	searchClient search.Client,
	analysisRepo repository.AnalysisRepository,
	profileRepo repository.ProfileRepository,
	cfg config.AnalysisConfig,
	archive Archiver,
	notifyIndex IndexNotifier,
) AnalysisService {
	return &analysisService{
		llmClient:    llmClient,
		searchClient: searchClient,
		analysisRepo: analysisRepo,
		profileRepo:  profileRepo,
		cfg:          cfg,
		archive:      archive,
		notifyIndex:  notifyIndex,
	}
}

// Analyze 编排一次完整的文章分析：
// 两次独立的 LLM 调用（声明抽取、要点摘要）、可选的搜索核验打分、
// 落库一条分析记录，并向用户档案追加一条历史条目。
func (s *analysisService) Analyze(ctx context.Context, text, userID, sourceURL string) (*AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: article text is required", ErrInvalidInput)
	}
	// 每条落库记录都必须归属认证网关解析出的调用方。
	// userID 为空说明认证链路被绕过，按非法输入拒绝。
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: missing authenticated user", ErrInvalidInput)
	}

	// 两个提示词共享同一份截断后的上下文预算
	promptText := truncateRunes(text, s.cfg.PromptMaxChars)

	log.Infof("[AnalysisService] 开始分析, user: %s, 原文长度: %d", userID, len(text))

	// 1. 声明抽取
	claimsPrompt := fmt.Sprintf(`Analyze the following article and extract 3-5 key factual claims that can be fact-checked. Format as JSON array.

Article:
%s

Respond with JSON array only, like: ["claim1", "claim2", "claim3"]`, promptText)

	claimsText, err := s.llmClient.Complete(ctx, claimsPrompt)
	if err != nil {
		return nil, fmt.Errorf("声明抽取调用失败: %w", err)
	}
	claims := parseJSONArrayOrRaw(claimsText)

	// 2. 要点摘要
	summaryPrompt := fmt.Sprintf(`Summarize the following article in exactly 3 bullet points. Each point should be concise and factual.

Article:
%s

Format as JSON array, like: ["point1", "point2", "point3"]`, promptText)

	summaryText, err := s.llmClient.Complete(ctx, summaryPrompt)
	if err != nil {
		return nil, fmt.Errorf("摘要调用失败: %w", err)
	}
	summary := parseJSONArrayOrRaw(summaryText)

	// 3. 搜索核验打分
	score := s.verifyClaims(ctx, claims)
	log.Infof("[AnalysisService] 核验完成, user: %s, score: %d", userID, score)

	// 4. 落库分析记录（摘录只保留原文前缀）
	record := &model.AnalysisRecord{
		ID:               uuid.NewString(),
		UserID:           userID,
		ArticleExcerpt:   truncateRunes(text, s.cfg.ExcerptMaxChars),
		Claims:           claims,
		Summary:          summary,
		ReliabilityScore: score,
	}
	if sourceURL != "" {
		record.SourceURL = &sourceURL
	}
	if err := s.analysisRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("保存分析记录失败: %w", err)
	}

	// 5. 向用户档案追加历史条目（局部更新，不覆盖整个文档）
	if err := s.profileRepo.AppendHistory(ctx, userID, record.ID, score, time.Now()); err != nil {
		return nil, fmt.Errorf("更新用户档案失败: %w", err)
	}

	// 6. 善后：原文归档与索引任务投递都是尽力而为，错误记日志后丢弃
	if s.archive != nil {
		if err := s.archive(ctx, record.ID, text); err != nil {
			log.Errorf("[AnalysisService] 归档原文失败, analysisID: %s, error: %v", record.ID, err)
		}
	}
	if s.notifyIndex != nil {
		if err := s.notifyIndex(tasks.AnalysisIndexTask{AnalysisID: record.ID, UserID: userID}); err != nil {
			log.Errorf("[AnalysisService] 投递索引任务失败, analysisID: %s, error: %v", record.ID, err)
		}
	}

	return &AnalysisResult{
		ReliabilityScore: score,
		Summary:          summary,
		Claims:           claims,
	}, nil
}

// verifyClaims 对前若干条声明做搜索核验并计算可靠性得分。
// 搜索未配置或没有声明可核验时，得分保持基准值。
// 单条搜索失败只算一次反向投票，绝不中断整个批次。
func (s *analysisService) verifyClaims(ctx context.Context, claims []string) int {
	base := s.cfg.BaseScore
	if s.searchClient == nil || !s.searchClient.Enabled() {
		return base
	}

	toVerify := claims
	if len(toVerify) > s.cfg.MaxVerifiedClaims {
		toVerify = toVerify[:s.cfg.MaxVerifiedClaims]
	}
	if len(toVerify) == 0 {
		return base
	}

	// 有界并发扇出：每条声明一个查询，整体等待后再继续
	votes := make([]int, len(toVerify))
	var wg sync.WaitGroup
	for i, claim := range toVerify {
		wg.Add(1)
		go func(i int, claim string) {
			defer wg.Done()
			results, err := s.searchClient.Search(ctx, claim)
			if err != nil {
				log.Warnf("[AnalysisService] 声明核验搜索失败（按未核验计）: %v", err)
				return
			}
			if len(results) > 0 {
				votes[i] = 1
			}
		}(i, claim)
	}
	wg.Wait()

	verified := 0
	for _, v := range votes {
		verified += v
	}
	rate := float64(verified) / float64(len(toVerify))
	return int(math.Round(float64(base) + rate*30))
}

// parseJSONArrayOrRaw 尝试把模型输出解析为 JSON 字符串数组。
// 解析失败时降级：把整段原始输出当作单元素列表，绝不报错。
func parseJSONArrayOrRaw(raw string) []string {
	var parsed []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return []string{raw}
	}
	return parsed
}

// truncateRunes 按字符数截断字符串，避免在多字节字符中间截断。
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
