// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"truelens-go/internal/config"
	"truelens-go/internal/model"
	"truelens-go/internal/repository"

	"gorm.io/gorm"
)

// HistorySearcher 基于全文索引检索某个用户的历史分析记录。
// 由 pkg/es 提供实现，注入为 nil 时检索功能不可用。
type HistorySearcher func(ctx context.Context, userID, query string, size int) ([]model.AnalysisDocument, error)

// UserService 定义了用户历史与档案相关的查询操作。
type UserService interface {
	GetHistory(ctx context.Context, userID string) ([]model.HistoryItem, error)
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	SearchHistory(ctx context.Context, userID, query string) ([]model.AnalysisDocument, error)
}

type userService struct {
	analysisRepo repository.AnalysisRepository
	profileRepo  repository.ProfileRepository
	searcher     HistorySearcher
	cfg          config.AnalysisConfig
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(
	analysisRepo repository.AnalysisRepository,
	profileRepo repository.ProfileRepository,
	searcher HistorySearcher,
	cfg config.AnalysisConfig,
) UserService {
	return &userService{
		analysisRepo: analysisRepo,
		profileRepo:  profileRepo,
		searcher:     searcher,
		cfg:          cfg,
	}
}

// GetHistory 返回调用方最近的分析记录，按创建时间倒序。
// 没有任何记录时返回空列表而不是错误。
func (s *userService) GetHistory(ctx context.Context, userID string) ([]model.HistoryItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: missing authenticated user", ErrUnauthenticated)
	}

	records, err := s.analysisRepo.FindRecentByUser(ctx, userID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("查询分析历史失败: %w", err)
	}

	items := make([]model.HistoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, model.HistoryItem{
			ID:               rec.ID,
			UserID:           rec.UserID,
			ArticleExcerpt:   rec.ArticleExcerpt,
			Claims:           rec.Claims,
			Summary:          rec.Summary,
			ReliabilityScore: rec.ReliabilityScore,
			SourceURL:        rec.SourceURL,
			Timestamp:        model.LocalTime(rec.CreatedAt),
		})
	}
	return items, nil
}

// GetProfile 返回调用方的用户档案，档案不存在时返回 ErrNotFound。
func (s *userService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: missing authenticated user", ErrUnauthenticated)
	}

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user profile", ErrNotFound)
		}
		return nil, fmt.Errorf("查询用户档案失败: %w", err)
	}
	return profile, nil
}

// SearchHistory 通过全文索引检索调用方的历史分析记录。
func (s *userService) SearchHistory(ctx context.Context, userID, query string) ([]model.AnalysisDocument, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: missing authenticated user", ErrUnauthenticated)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}
	if s.searcher == nil {
		return nil, errors.New("全文检索未启用")
	}

	docs, err := s.searcher(ctx, userID, query, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("检索分析历史失败: %w", err)
	}
	return docs, nil
}
