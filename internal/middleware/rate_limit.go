// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"fmt"
	"net/http"
	"time"
	"truelens-go/internal/config"
	"truelens-go/pkg/database"
	"truelens-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RateLimiter 创建一个基于 Redis 固定窗口的限流中间件，按客户端 IP 计数。
// 窗口内第一个请求通过 INCR 创建计数键并设置过期时间，超出上限返回 429。
// Redis 不可用时放行请求，限流是保护手段而不是可用性依赖。
func RateLimiter(cfg config.RateLimitConfig) gin.HandlerFunc {
	window := time.Duration(cfg.WindowMinutes) * time.Minute
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())

		count, err := database.RDB.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warnf("限流计数失败, 放行请求: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := database.RDB.Expire(c.Request.Context(), key, window).Err(); err != nil {
				log.Warnf("设置限流窗口过期失败: %v", err)
			}
		}

		if count > int64(cfg.MaxRequests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later.",
			})
			return
		}

		c.Next()
	}
}
