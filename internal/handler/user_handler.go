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

// UserHandler 负责处理用户历史与档案相关的 API 请求。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetHistory 处理 GET /api/user/history 请求，返回最近的分析记录。
func (h *UserHandler) GetHistory(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	items, err := h.userService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("GetHistory: failed for user '%s', error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": items,
		"success": true,
	})
}

// GetProfile 处理 GET /api/user/profile 请求。
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Errorf("GetProfile: failed for user '%s', error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"success": true,
	})
}

// SearchHistory 处理 GET /api/user/history/search?q=... 请求。
// 检索由索引管道异步写入的全文索引，新记录可能有秒级延迟。
func (h *UserHandler) SearchHistory(c *gin.Context) {
	query := c.Query("q")
	userID := middleware.UserIDFromContext(c)

	docs, err := h.userService.SearchHistory(c.Request.Context(), userID, query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
			return
		}
		log.Errorf("SearchHistory: failed for user '%s', error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": docs,
		"success": true,
	})
}
