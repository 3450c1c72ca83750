package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"truelens-go/internal/model"

	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	mu      sync.Mutex
	created []*model.InaccuracyReport
	err     error
}

func (f *fakeReportRepo) Create(ctx context.Context, report *model.InaccuracyReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, report)
	return nil
}

func TestSubmitReport(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewReportService(repo, testAnalysisConfig())
	score := 85

	err := svc.SubmitReport(context.Background(), "user-1", "article body", "the claim is false", &score)
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	rec := repo.created[0]
	require.Equal(t, "user-1", rec.UserID)
	require.Equal(t, "the claim is false", rec.Report)
	require.Equal(t, model.ReportStatusPending, rec.Status)
	require.NotNil(t, rec.ReliabilityScore)
	require.Equal(t, 85, *rec.ReliabilityScore)
	require.NotEmpty(t, rec.ID)
}

func TestSubmitReportRejectsEmptyReport(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{}, testAnalysisConfig())

	err := svc.SubmitReport(context.Background(), "user-1", "article body", "  ", nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitReportTruncatesExcerpt(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewReportService(repo, testAnalysisConfig())

	err := svc.SubmitReport(context.Background(), "user-1", strings.Repeat("x", 900), "wrong", nil)
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Equal(t, 500, len(repo.created[0].ArticleExcerpt))
}

func TestSubmitReportAllowsMissingArticleText(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewReportService(repo, testAnalysisConfig())

	err := svc.SubmitReport(context.Background(), "user-1", "", "score seems off", nil)
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Equal(t, "", repo.created[0].ArticleExcerpt)
}
