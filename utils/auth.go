package utils

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Roles carried in the access token
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Context keys set by the auth middleware
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// Claims is the caller identity extracted from an access token
type Claims struct {
	UserID uint
	Role   string
}

// GenerateToken creates a JWT token for a user. Tokens are issued by the
// accounts service; this exists for tooling and tests.
func GenerateToken(userID uint, role, secret string, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = userID
	claims["role"] = role
	claims["exp"] = time.Now().Add(ttl).Unix()

	return token.SignedString([]byte(secret))
}

// ParseToken validates a JWT token and returns the caller identity
func ParseToken(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	rawID, ok := mapClaims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, errors.New("user_id claim missing")
	}
	role, _ := mapClaims["role"].(string)
	if role == "" {
		role = RoleUser
	}

	return &Claims{UserID: uint(rawID), Role: role}, nil
}

// CurrentUserID returns the authenticated caller set by the auth middleware
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
