// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"
	"truelens-go/pkg/log"
	"truelens-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey 是认证中间件写入 Gin 上下文的用户 ID 键。
const ContextUserIDKey = "userId"

// AuthMiddleware 创建一个 Gin 中间件，用于校验 Bearer 身份令牌。
// 它从请求头中提取 token，验证签名与颁发方，并将解析出的用户 ID 存入上下文。
// 所有受保护接口只信任这里写入的身份，不信任请求体里的任何 userId 字段。
func AuthMiddleware(verifier *token.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		const bearerPrefix = "Bearer "
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		userID, err := verifier.VerifyIDToken(tokenString)
		if err != nil {
			log.Warnf("身份令牌校验失败: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext 读取认证中间件写入的用户 ID。
// 只应在 AuthMiddleware 之后的处理函数中调用。
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
