package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role claim required on catalog maintenance routes.
const RoleAdmin = "admin"

// AdminClaims are the claims carried by an admin token.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*AdminClaims, error)
}

// AdminTokens signs and validates HS256 admin tokens.
type AdminTokens struct {
	secret []byte
}

// NewAdminTokens creates a new AdminTokens instance
func NewAdminTokens(secret string) *AdminTokens {
	return &AdminTokens{secret: []byte(secret)}
}

// Generate signs an admin token for subject that expires after ttl.
func (a *AdminTokens) Generate(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: RoleAdmin,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ValidateToken parses tokenString and checks its signature and expiry.
func (a *AdminTokens) ValidateToken(tokenString string) (*AdminClaims, error) {
	if len(a.secret) == 0 {
		return nil, errors.New("admin authentication is not configured")
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthMiddleware creates a middleware that only lets admin tokens through
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if claims.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}

		c.Set("admin_subject", claims.Subject)
		c.Next()
	}
}
