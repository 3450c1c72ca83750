// Package token 提供了对身份提供方签发的身份令牌的校验功能。
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier 负责校验身份令牌并解析出令牌归属的用户。
// 令牌由外部身份提供方签发，后端只做验签，不做任何签发或续期。
type Verifier struct {
	secretKey []byte // secretKey 用于验证 token 签名的共享密钥
	issuer    string // issuer 期望的签发方，为空则不校验
	audience  string // audience 期望的受众，为空则不校验
}

// IdentityClaims 定义了身份令牌中我们关心的声明。
// Subject 即身份提供方分配的用户 ID。
type IdentityClaims struct {
	jwt.RegisteredClaims
}

// NewVerifier 创建一个新的 Verifier 实例。
func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{
		secretKey: []byte(secret),
		issuer:    issuer,
		audience:  audience,
	}
}

// VerifyIDToken 校验给定的身份令牌字符串。
// 校验通过时返回令牌归属的用户 ID（subject）。
// 签名不匹配、已过期、签发方或受众不符时返回错误。
func (v *Verifier) VerifyIDToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 检查签名方法是否为 HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secretKey, nil
	}, opts...)

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}

	return claims.Subject, nil
}

// SignForTest 使用给定密钥签发一个测试用身份令牌。
// 只应在测试中使用：生产环境的令牌由身份提供方签发。
func SignForTest(secret, subject, issuer, audience string, ttl time.Duration) (string, error) {
	claims := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// GenerateRandomString 生成一个指定字节长度的十六进制随机串。
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a less random string on error
		return fmt.Sprintf("fallback%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
