// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTClaims identifies a console operator and the ledger party they act for.
type JWTClaims struct {
	Party   string   `json:"party"`
	Roles   []string `json:"roles,omitempty"`
	IsAdmin bool     `json:"is_admin"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte("your-secret-key-change-in-production")

var adminRole = "admin"

const issuer = "license-console"

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func SetAdminRole(role string) {
	if role != "" {
		adminRole = role
	}
}

func GenerateJWT(subject, party string, roles []string, isAdmin bool, ttlHours int) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Party:   party,
		Roles:   roles,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// HasRole reports whether role is among the token roles.
func (c *JWTClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Admin reports whether the token grants provider admin actions, either by
// flag or by carrying the admin role.
func (c *JWTClaims) Admin() bool {
	return c.IsAdmin || c.HasRole(adminRole)
}

// IsExpiredError reports whether err came from an expired token.
func IsExpiredError(err error) bool {
	var validationErr *jwt.ValidationError
	return errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0
}
