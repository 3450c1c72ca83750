package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"truelens-go/internal/config"
	"truelens-go/internal/model"
	"truelens-go/pkg/llm"
	"truelens-go/pkg/search"
	"truelens-go/pkg/tasks"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeLLM 按调用顺序返回预设的回复。
type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	calls     int
	err       error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", errors.New("unexpected extra call")
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeLLM) StreamChatMessages(ctx context.Context, messages []llm.Message, writer llm.MessageWriter) error {
	return errors.New("not implemented")
}

// fakeSearch 对每条查询返回固定的结果或错误。
type fakeSearch struct {
	enabled bool
	results map[string][]search.OrganicResult
	err     error
	mu      sync.Mutex
	queries []string
}

func (f *fakeSearch) Enabled() bool { return f.enabled }

func (f *fakeSearch) Search(ctx context.Context, query string) ([]search.OrganicResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fakeAnalysisRepo struct {
	mu      sync.Mutex
	created []*model.AnalysisRecord
	err     error
}

func (f *fakeAnalysisRepo) Create(ctx context.Context, record *model.AnalysisRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, record)
	return nil
}

func (f *fakeAnalysisRepo) FindByID(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeAnalysisRepo) FindRecentByUser(ctx context.Context, userID string, limit int) ([]model.AnalysisRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AnalysisRecord
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		if f.created[i].UserID == userID {
			out = append(out, *f.created[i])
		}
	}
	return out, nil
}

type appendCall struct {
	userID     string
	analysisID string
	score      int
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	appends  []appendCall
	profiles map[string]*model.UserProfile
	err      error
}

func (f *fakeProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfileRepo) AppendHistory(ctx context.Context, userID, analysisID string, score int, timestamp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.appends = append(f.appends, appendCall{userID: userID, analysisID: analysisID, score: score})
	return nil
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		PromptMaxChars:    2000,
		ExcerptMaxChars:   500,
		ExtractMaxChars:   5000,
		BaseScore:         70,
		MaxVerifiedClaims: 3,
		HistoryLimit:      50,
	}
}

func TestAnalyzeScoreWithSearchDisabled(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{`["claim one"]`, `["a", "b", "c"]`}}
	repo := &fakeAnalysisRepo{}
	profiles := &fakeProfileRepo{}
	svc := NewAnalysisService(llmClient, &fakeSearch{enabled: false}, repo, profiles, testAnalysisConfig(), nil, nil)

	result, err := svc.Analyze(context.Background(), "some article text", "user-1", "")
	require.NoError(t, err)
	require.Equal(t, 70, result.ReliabilityScore)
	require.Equal(t, []string{"a", "b", "c"}, result.Summary)
	require.Len(t, repo.created, 1)
	require.Len(t, profiles.appends, 1)
	require.Equal(t, repo.created[0].ID, profiles.appends[0].analysisID)
}

func TestAnalyzeScoreAllClaimsVerified(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{`["c1", "c2"]`, `["s1", "s2", "s3"]`}}
	searchClient := &fakeSearch{
		enabled: true,
		results: map[string][]search.OrganicResult{
			"c1": {{Title: "hit"}},
			"c2": {{Title: "hit"}},
		},
	}
	svc := NewAnalysisService(llmClient, searchClient, &fakeAnalysisRepo{}, &fakeProfileRepo{}, testAnalysisConfig(), nil, nil)

	result, err := svc.Analyze(context.Background(), "some article text", "user-1", "")
	require.NoError(t, err)
	require.Equal(t, 100, result.ReliabilityScore)
}

func TestAnalyzeScorePartialVerification(t *testing.T) {
	// 三条声明中只有一条能搜到结果: 70 + (1/3)*30 = 80
	llmClient := &fakeLLM{responses: []string{`["c1", "c2", "c3"]`, `["s1", "s2", "s3"]`}}
	searchClient := &fakeSearch{
		enabled: true,
		results: map[string][]search.OrganicResult{
			"c1": {{Title: "hit"}},
		},
	}
	svc := NewAnalysisService(llmClient, searchClient, &fakeAnalysisRepo{}, &fakeProfileRepo{}, testAnalysisConfig(), nil, nil)

	result, err := svc.Analyze(context.Background(), "some article text", "user-1", "")
	require.NoError(t, err)
	require.Equal(t, 80, result.ReliabilityScore)
}

func TestAnalyzeScoreSearchFailuresCountAsUnverified(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{`["c1", "c2"]`, `["s1", "s2", "s3"]`}}
	searchClient := &fakeSearch{enabled: true, err: errors.New("search down")}
	svc := NewAnalysisService(llmClient, searchClient, &fakeAnalysisRepo{}, &fakeProfileRepo{}, testAnalysisConfig(), nil, nil)

	result, err := svc.Analyze(context.Background(), "some article text", "user-1", "")
	require.NoError(t, err)
	require.Equal(t, 70, result.ReliabilityScore)
}

func TestAnalyzeVerifiesAtMostThreeClaims(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{`["c1", "c2", "c3", "c4", "c5"]`, `["s1", "s2", "s3"]`}}
	searchClient := &fakeSearch{enabled: true, results: map[string][]search.OrganicResult{}}
	svc := NewAnalysisService(llmClient, searchClient, &fakeAnalysisRepo{}, &fakeProfileRepo{}, testAnalysisConfig(), nil, nil)

	_, err := svc.Analyze(context.Background(), "some article text", "user-1", "")
	require.NoError(t, err)
	require.Len(t, searchClient.queries, 3)
}

func TestAnalyzeDegradesOnUnparsableModelOutput(t *testing.T) {
	raw := "I could not produce JSON, sorry."
	llmClient := &fakeLLM{responses: []string{raw, raw}}
	svc := NewAnalysisService(llmClient, &fakeSearch{}, &fakeAnalysisRepo{}, &fakeProfileRepo{}, testAnalysisConfig(), nil, nil)

	result, err := svc.Analyze(context.Background(), "some article text", "user-1", "")
	require.NoError(t, err)
	require.Equal(t, []string{raw}, result.Claims)
	require.Equal(t, []string{raw}, result.Summary)
}

func TestAnalyzeRejectsEmptyText(t *testing.T) {
	svc := NewAnalysisService(&fakeLLM{}, &fakeSearch{}, &fakeAnalysisRepo{}, &fakeProfileRepo{}, testAnalysisConfig(), nil, nil)

	_, err := svc.Analyze(context.Background(), "   ", "user-1", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeRejectsMissingUser(t *testing.T) {
	svc := NewAnalysisService(&fakeLLM{}, &fakeSearch{}, &fakeAnalysisRepo{}, &fakeProfileRepo{}, testAnalysisConfig(), nil, nil)

	_, err := svc.Analyze(context.Background(), "some article text", "", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeTruncatesExcerpt(t *testing.T) {
	long := make([]rune, 1200)
	for i := range long {
		long[i] = '字'
	}
	llmClient := &fakeLLM{responses: []string{`["c1"]`, `["s1", "s2", "s3"]`}}
	repo := &fakeAnalysisRepo{}
	svc := NewAnalysisService(llmClient, &fakeSearch{}, repo, &fakeProfileRepo{}, testAnalysisConfig(), nil, nil)

	_, err := svc.Analyze(context.Background(), string(long), "user-1", "")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Equal(t, 500, len([]rune(repo.created[0].ArticleExcerpt)))
}

func TestAnalyzeBestEffortSidecarsDoNotFailRequest(t *testing.T) {
	llmClient := &fakeLLM{responses: []string{`["c1"]`, `["s1", "s2", "s3"]`}}
	archive := func(ctx context.Context, analysisID, text string) error {
		return errors.New("minio down")
	}
	notify := func(task tasks.AnalysisIndexTask) error {
		return errors.New("kafka down")
	}
	svc := NewAnalysisService(llmClient, &fakeSearch{}, &fakeAnalysisRepo{}, &fakeProfileRepo{}, testAnalysisConfig(), archive, notify)

	result, err := svc.Analyze(context.Background(), "some article text", "user-1", "https://example.com/a")
	require.NoError(t, err)
	require.Equal(t, 70, result.ReliabilityScore)
}

func TestParseJSONArrayOrRaw(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, parseJSONArrayOrRaw(` ["a", "b"] `))
	require.Equal(t, []string{"not json"}, parseJSONArrayOrRaw("not json"))
}
