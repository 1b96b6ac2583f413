package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	tokens := NewAdminTokens("test-secret")

	router := gin.New()
	router.POST("/admin", AuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin_subject"))
	})

	valid, err := tokens.Generate("ops", time.Hour)
	require.NoError(t, err)
	expired, err := tokens.Generate("ops", -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewAdminTokens("other-secret").Generate("ops", time.Hour)
	require.NoError(t, err)
	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: "viewer"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + otherKey, http.StatusUnauthorized},
		{"not admin", "Bearer " + notAdmin, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "ops", rr.Body.String())
			}
		})
	}
}

func TestAdminTokens_Unconfigured(t *testing.T) {
	_, err := NewAdminTokens("").ValidateToken("anything")
	assert.Error(t, err)
}
