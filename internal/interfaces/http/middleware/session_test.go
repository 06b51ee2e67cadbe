package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: time.Hour,
		Issuer:     "test-issuer",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role string) (*auth.SessionToken, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := svc.GenerateToken(auth.GenerateTokenInput{UserID: userID, Email: "a@b.io", Role: role})
	require.NoError(t, err)
	return token, userID
}

func sessionRouter(cfg SessionConfig, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(Session(cfg))
	handlers := append(extra, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetSessionUserID(c).String(),
			"role":    GetSessionRole(c),
		})
	})
	router.GET("/test", handlers...)
	router.GET("/public", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestSession_Cookie(t *testing.T) {
	svc := newTestJWTService()
	token, userID := issueToken(t, svc, "CUSTOMER")
	router := sessionRouter(SessionConfig{JWTService: svc})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: token.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, "CUSTOMER", body["role"])
}

func TestSession_BearerFallback(t *testing.T) {
	svc := newTestJWTService()
	token, _ := issueToken(t, svc, "CUSTOMER")
	router := sessionRouter(SessionConfig{JWTService: svc})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_Rejections(t *testing.T) {
	svc := newTestJWTService()
	other := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", Expiration: time.Hour})
	foreign, _ := issueToken(t, other, "CUSTOMER")

	tests := []struct {
		name   string
		cookie string
		header string
	}{
		{"missing", "", ""},
		{"garbage cookie", "not-a-jwt", ""},
		{"wrong signature", foreign.Token, ""},
		{"malformed header", "", "Token abc"},
	}

	router := sessionRouter(SessionConfig{JWTService: svc})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, dto.ErrCodeUnauthorized, decodeError(t, rec).Code)
		})
	}
}

func TestSession_RevokedToken(t *testing.T) {
	svc := newTestJWTService()
	token, _ := issueToken(t, svc, "CUSTOMER")
	blacklist := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), token.JTI, time.Hour))

	router := sessionRouter(SessionConfig{JWTService: svc, Blacklist: blacklist})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: token.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, rec).Code)
}

type failingBlacklist struct{ auth.TokenBlacklist }

func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingBlacklist) IsUserTokenInvalidated(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("redis down")
}

func TestSession_BlacklistFailureFailsOpen(t *testing.T) {
	svc := newTestJWTService()
	token, _ := issueToken(t, svc, "CUSTOMER")

	router := sessionRouter(SessionConfig{JWTService: svc, Blacklist: failingBlacklist{}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: token.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_CustomCookieAndSkipPaths(t *testing.T) {
	svc := newTestJWTService()
	token, _ := issueToken(t, svc, "CUSTOMER")
	router := sessionRouter(SessionConfig{JWTService: svc, CookieName: "sid", SkipPaths: []string{"/public"}})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalSession(t *testing.T) {
	svc := newTestJWTService()
	token, userID := issueToken(t, svc, "CUSTOMER")

	router := gin.New()
	router.Use(OptionalSession(SessionConfig{JWTService: svc}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionUserID(c).String())
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "garbage"})
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uuid.Nil.String(), rec.Body.String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: token.Token})
	router.ServeHTTP(rec, req)
	assert.Equal(t, userID.String(), rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService()
	adminToken, _ := issueToken(t, svc, "ADMIN")
	customerToken, _ := issueToken(t, svc, "CUSTOMER")
	router := sessionRouter(SessionConfig{JWTService: svc}, RequireRole("ADMIN"))

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: adminToken.Token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: customerToken.Token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, rec).Code)
	})

	t.Run("no session is unauthorized", func(t *testing.T) {
		r := gin.New()
		r.GET("/test", RequireRole("ADMIN"), func(c *gin.Context) { c.Status(http.StatusOK) })
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
