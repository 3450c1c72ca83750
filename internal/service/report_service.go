// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"truelens-go/internal/config"
	"truelens-go/internal/model"
	"truelens-go/internal/repository"
	"truelens-go/pkg/log"

	"github.com/google/uuid"
)

// ReportService 定义了不实报告相关的操作。
type ReportService interface {
	SubmitReport(ctx context.Context, userID, articleText, report string, reliabilityScore *int) error
}

type reportService struct {
	reportRepo repository.ReportRepository
	cfg        config.AnalysisConfig
}

// NewReportService 创建一个新的 ReportService 实例。
func NewReportService(reportRepo repository.ReportRepository, cfg config.AnalysisConfig) ReportService {
	return &reportService{reportRepo: reportRepo, cfg: cfg}
}

// SubmitReport 持久化一条不实报告，初始状态为 pending。
// 文章文本可以缺失，摘录统一截断；报告正文为必填。
func (s *reportService) SubmitReport(ctx context.Context, userID, articleText, report string, reliabilityScore *int) error {
	if strings.TrimSpace(report) == "" {
		return fmt.Errorf("%w: report text is required", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: missing authenticated user", ErrInvalidInput)
	}

	rec := &model.InaccuracyReport{
		ID:               uuid.NewString(),
		UserID:           userID,
		ArticleExcerpt:   truncateRunes(articleText, s.cfg.ExcerptMaxChars),
		Report:           report,
		ReliabilityScore: reliabilityScore,
		Status:           model.ReportStatusPending,
	}

	if err := s.reportRepo.Create(ctx, rec); err != nil {
		return fmt.Errorf("保存不实报告失败: %w", err)
	}

	log.Infof("[ReportService] 收到不实报告, user: %s, reportID: %s", userID, rec.ID)
	return nil
}
