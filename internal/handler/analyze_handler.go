// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"truelens-go/internal/middleware"
	"truelens-go/internal/service"
	"truelens-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AnalyzeHandler 负责处理文章分析请求。
type AnalyzeHandler struct {
	analysisService service.AnalysisService
}

// NewAnalyzeHandler 创建一个新的 AnalyzeHandler 实例。
func NewAnalyzeHandler(analysisService service.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{analysisService: analysisService}
}

// AnalyzeRequest 定义了文章分析 API 的请求体结构。
// 请求体中可能携带 userId 字段，但服务端只信任认证网关解析出的身份。
type AnalyzeRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Analyze 处理 POST /api/analyze 请求。
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Article text is required"})
		return
	}

	userID := middleware.UserIDFromContext(c)
	result, err := h.analysisService.Analyze(c.Request.Context(), req.Text, userID, req.URL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Article text is required"})
			return
		}
		log.Errorf("Analyze: analysis failed for user '%s', error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reliabilityScore": result.ReliabilityScore,
		"summary":          result.Summary,
		"claims":           result.Claims,
		"sourceAnalysis":   []gin.H{},
		"success":          true,
	})
}
