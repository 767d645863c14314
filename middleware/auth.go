package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"contracthub/config"
	"contracthub/model"
	"contracthub/pkg/apperr"
	"contracthub/pkg/logger"
)

const userContextKey = "current_user"

// Claims represents the JWT claims carried by a bearer token
type Claims struct {
	Username string `json:"username"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserFinder resolves a user id to a live account. Tokens referencing
// deleted users must stop working immediately.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// GenerateToken generates a signed, time-limited JWT for a user
func GenerateToken(user *model.User, cfg *config.AuthConfig) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(cfg.TokenExpireMinutes) * time.Minute)

	claims := Claims{
		Username: user.Username,
		UserID:   user.ID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// AuthMiddleware validates the bearer token and loads the referenced user
func AuthMiddleware(cfg *config.AuthConfig, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "authorization header required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "invalid or expired token")
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userContextKey, user)
		c.Set("username", user.Username)
		c.Set("role", user.Role)

		// Add identity to request context for logger
		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, logger.UsernameKey, user.Username)
		ctx = context.WithValue(ctx, logger.RoleKey, user.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentUser returns the authenticated user loaded by AuthMiddleware
func CurrentUser(c *gin.Context) *model.User {
	if v, exists := c.Get(userContextKey); exists {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"statusCode": http.StatusUnauthorized,
		"message":    message,
		"error":      apperr.CodeUnauthorized,
	})
}
