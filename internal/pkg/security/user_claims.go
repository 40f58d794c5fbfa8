package security

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const JWTExpirationTime = 24 * time.Hour

// UserClaims 账号服务签发的载荷
type UserClaims struct {
	UserID uint64   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c *UserClaims) HasRole(roles ...string) bool {
	return HasAnyRole(c.Roles, roles...)
}

// HasAnyRole have 中包含 want 的任一角色
func HasAnyRole(have []string, want ...string) bool {
	return slices.ContainsFunc(want, func(r string) bool { return slices.Contains(have, r) })
}
