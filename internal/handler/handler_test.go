package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"truelens-go/internal/middleware"
	"truelens-go/internal/model"
	"truelens-go/internal/service"
	"truelens-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// withUser 模拟认证中间件，直接注入用户 ID。
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	}
}

type fakeAnalysisService struct {
	result *service.AnalysisResult
	err    error
	gotURL string
}

func (f *fakeAnalysisService) Analyze(ctx context.Context, text, userID, sourceURL string) (*service.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, service.ErrInvalidInput
	}
	f.gotURL = sourceURL
	return f.result, f.err
}

type fakeChatService struct {
	response string
	err      error
}

func (f *fakeChatService) Chat(ctx context.Context, message, userID, articleContext string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", service.ErrInvalidInput
	}
	return f.response, f.err
}

func (f *fakeChatService) StreamResponse(ctx context.Context, message, userID, articleContext string, ws *websocket.Conn, shouldStop func() bool) error {
	return errors.New("not used")
}

type fakeReportService struct {
	err  error
	got  string
	user string
}

func (f *fakeReportService) SubmitReport(ctx context.Context, userID, articleText, report string, reliabilityScore *int) error {
	if strings.TrimSpace(report) == "" {
		return service.ErrInvalidInput
	}
	f.got = report
	f.user = userID
	return f.err
}

type fakeUserService struct {
	history []model.HistoryItem
	profile *model.UserProfile
	docs    []model.AnalysisDocument
	err     error
}

func (f *fakeUserService) GetHistory(ctx context.Context, userID string) ([]model.HistoryItem, error) {
	return f.history, f.err
}

func (f *fakeUserService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeUserService) SearchHistory(ctx context.Context, userID, query string) ([]model.AnalysisDocument, error) {
	if strings.TrimSpace(query) == "" {
		return nil, service.ErrInvalidInput
	}
	return f.docs, f.err
}

func TestAnalyzeEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakeAnalysisService{result: &service.AnalysisResult{
			ReliabilityScore: 85,
			Summary:          []string{"s1", "s2", "s3"},
			Claims:           []string{"c1"},
		}}
		r := gin.New()
		r.POST("/api/analyze", withUser("user-1"), NewAnalyzeHandler(svc).Analyze)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/analyze",
			strings.NewReader(`{"text":"some article","url":"https://example.com/a"}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		require.Equal(t, float64(85), payload["reliabilityScore"])
		require.Equal(t, true, payload["success"])
		require.Equal(t, []interface{}{}, payload["sourceAnalysis"])
		require.Equal(t, "https://example.com/a", svc.gotURL)
	})

	t.Run("empty text", func(t *testing.T) {
		r := gin.New()
		r.POST("/api/analyze", withUser("user-1"), NewAnalyzeHandler(&fakeAnalysisService{}).Analyze)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":""}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"error":"Article text is required"}`, w.Body.String())
	})

	t.Run("service failure", func(t *testing.T) {
		svc := &fakeAnalysisService{err: errors.New("llm down")}
		r := gin.New()
		r.POST("/api/analyze", withUser("user-1"), NewAnalyzeHandler(svc).Analyze)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":"some article"}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.JSONEq(t, `{"error":"Failed to analyze article"}`, w.Body.String())
	})
}

func TestChatEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier := token.NewVerifier("secret", "", "")

	t.Run("success", func(t *testing.T) {
		svc := &fakeChatService{response: "here is what I found"}
		r := gin.New()
		r.POST("/api/chat", withUser("user-1"), NewChatHandler(svc, verifier).Chat)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chat",
			strings.NewReader(`{"message":"is this true?","articleContext":"article body"}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"response":"here is what I found","success":true}`, w.Body.String())
	})

	t.Run("empty message", func(t *testing.T) {
		r := gin.New()
		r.POST("/api/chat", withUser("user-1"), NewChatHandler(&fakeChatService{}, verifier).Chat)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":""}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"error":"Message is required"}`, w.Body.String())
	})

	t.Run("service failure", func(t *testing.T) {
		svc := &fakeChatService{err: errors.New("provider down")}
		r := gin.New()
		r.POST("/api/chat", withUser("user-1"), NewChatHandler(svc, verifier).Chat)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.JSONEq(t, `{"error":"Failed to process chat message"}`, w.Body.String())
	})
}

func TestReportEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakeReportService{}
		r := gin.New()
		r.POST("/api/report-inaccuracy", withUser("user-7"), NewReportHandler(svc).SubmitReport)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/report-inaccuracy",
			strings.NewReader(`{"text":"body","report":"the score is wrong","reliabilityScore":90}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"success":true,"message":"Report submitted successfully"}`, w.Body.String())
		require.Equal(t, "the score is wrong", svc.got)
		require.Equal(t, "user-7", svc.user)
	})

	t.Run("missing report text", func(t *testing.T) {
		r := gin.New()
		r.POST("/api/report-inaccuracy", withUser("user-7"), NewReportHandler(&fakeReportService{}).SubmitReport)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/report-inaccuracy", strings.NewReader(`{"report":""}`))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"error":"Report text is required"}`, w.Body.String())
	})
}

func TestUserHistoryEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeUserService{history: []model.HistoryItem{
		{
			ID:               "a-1",
			UserID:           "user-1",
			ReliabilityScore: 92,
			Timestamp:        model.LocalTime(time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)),
		},
	}}
	r := gin.New()
	r.GET("/api/user/history", withUser("user-1"), NewUserHandler(svc).GetHistory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/history", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		History []map[string]interface{} `json:"history"`
		Success bool                     `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Len(t, payload.History, 1)
	require.Equal(t, "2026-03-01 10:00:00", payload.History[0]["timestamp"])
}

func TestUserProfileEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("found", func(t *testing.T) {
		svc := &fakeUserService{profile: &model.UserProfile{UserID: "user-1", History: model.HistoryMap{}}}
		r := gin.New()
		r.GET("/api/user/profile", withUser("user-1"), NewUserHandler(svc).GetProfile)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeUserService{err: service.ErrNotFound}
		r := gin.New()
		r.GET("/api/user/profile", withUser("user-1"), NewUserHandler(svc).GetProfile)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
	})

	t.Run("missing identity", func(t *testing.T) {
		svc := &fakeUserService{err: service.ErrUnauthenticated}
		r := gin.New()
		r.GET("/api/user/profile", withUser(""), NewUserHandler(svc).GetProfile)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"error":"Invalid authorization token"}`, w.Body.String())
	})
}

func TestHistorySearchEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing query", func(t *testing.T) {
		r := gin.New()
		r.GET("/api/user/history/search", withUser("user-1"), NewUserHandler(&fakeUserService{}).SearchHistory)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/user/history/search", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeUserService{docs: []model.AnalysisDocument{{AnalysisID: "a-1", UserID: "user-1"}}}
		r := gin.New()
		r.GET("/api/user/history/search", withUser("user-1"), NewUserHandler(svc).SearchHistory)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/user/history/search?q=election", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var payload struct {
			Results []model.AnalysisDocument `json:"results"`
			Success bool                     `json:"success"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		require.True(t, payload.Success)
		require.Len(t, payload.Results, 1)
	})
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/health", NewHealthHandler().Health)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "ok", payload["status"])
}
