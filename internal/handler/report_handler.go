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

// ReportHandler 负责处理不实报告的提交。
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler 创建一个新的 ReportHandler 实例。
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportRequest 定义了不实报告 API 的请求体结构。
// 请求体中的 userId 字段被忽略，身份取自认证网关。
type ReportRequest struct {
	Text             string `json:"text"`
	Report           string `json:"report"`
	ReliabilityScore *int   `json:"reliabilityScore"`
}

// SubmitReport 处理 POST /api/report-inaccuracy 请求。
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Report text is required"})
		return
	}

	userID := middleware.UserIDFromContext(c)
	err := h.reportService.SubmitReport(c.Request.Context(), userID, req.Text, req.Report, req.ReliabilityScore)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Report text is required"})
			return
		}
		log.Errorf("SubmitReport: failed for user '%s', error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report submitted successfully",
	})
}
