package security

import (
	"Mediahub/internal/api/config"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const JWTExpirationTime = time.Hour * 24

var (
	jwtSecret = []byte("mediahub-dev-secret")
	jwtIssuer = "Mediahub"
)

// Init 设置签名密钥，token 由上游认证服务签发，两边需使用同一密钥
func Init(cfg config.JWTConfig) {
	if cfg.Secret != "" {
		jwtSecret = []byte(cfg.Secret)
	}
	if cfg.Issuer != "" {
		jwtIssuer = cfg.Issuer
	}
}

// UserClaims Token 中携带的用户身份
type UserClaims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}
