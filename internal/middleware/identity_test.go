package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripcart/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID int64, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func identityRouter() (*gin.Engine, *domain.Owner) {
	gin.SetMode(gin.TestMode)
	var captured domain.Owner
	r := gin.New()
	r.Use(Identity(testSecret))
	r.GET("/probe", func(c *gin.Context) {
		o, ok := OwnerFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		captured = o
		c.Status(http.StatusOK)
	})
	return r, &captured
}

func TestIdentity_ValidJWTYieldsUser(t *testing.T) {
	r, owner := identityRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, testSecret))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, owner.IsUser())
	assert.Equal(t, int64(42), owner.UserID())
	assert.Empty(t, w.Header().Get("X-Guest-Token"))
}

func TestIdentity_BadSignatureFallsBackToGuest(t *testing.T) {
	r, owner := identityRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "other-secret"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, owner.IsGuest())
	assert.NotEmpty(t, w.Header().Get("X-Guest-Token"))
}

func TestIdentity_GuestTokenHeaderReused(t *testing.T) {
	r, owner := identityRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Guest-Token", "g-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, owner.IsGuest())
	assert.Equal(t, "g-123", owner.GuestID())
	// an existing token is not re-echoed
	assert.Empty(t, w.Header().Get("X-Guest-Token"))
}

func TestIdentity_MintsGuestTokenWhenAnonymous(t *testing.T) {
	r, owner := identityRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, owner.IsGuest())
	assert.Equal(t, w.Header().Get("X-Guest-Token"), owner.GuestID())
	assert.NotEmpty(t, owner.GuestID())
}

func TestOwnerFrom_MissingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := OwnerFrom(c)

	assert.False(t, ok)
}
