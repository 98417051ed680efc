package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the role claim required by operator-only routes.
const AdminRole = "admin"

// GenerateAdminJWT signs an HS256 operator token valid for ttl.
func GenerateAdminJWT(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": AdminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})

	return token.SignedString([]byte(secret))
}
