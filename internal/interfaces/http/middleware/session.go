package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionClaimsKey = "session_claims"
	SessionUserIDKey = "session_user_id"
	SessionRoleKey   = "session_role"
	SessionJTIKey    = "session_jti"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// DefaultSessionCookie is the cookie the session token travels in
const DefaultSessionCookie = "auth-token"

// SessionConfig holds configuration for the session middleware
type SessionConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Blacklist is optional; when set, revoked tokens are rejected
	Blacklist auth.TokenBlacklist
	// CookieName defaults to DefaultSessionCookie
	CookieName string
	// SkipPaths are exact paths that do not require a session
	SkipPaths []string
	Logger    *zap.Logger
}

// Session resolves the caller from the session cookie, or an Authorization
// Bearer header, and aborts with 401 when no valid session is present.
func Session(cfg SessionConfig) gin.HandlerFunc {
	return sessionHandler(cfg, true)
}

// OptionalSession resolves the session when one is present and never aborts
func OptionalSession(cfg SessionConfig) gin.HandlerFunc {
	return sessionHandler(cfg, false)
}

func sessionHandler(cfg SessionConfig, required bool) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookie
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		tokenString := ExtractSessionToken(c, cfg.CookieName)
		if tokenString == "" {
			if required {
				abortUnauthenticated(c, cfg, auth.ErrInvalidToken)
				return
			}
			c.Next()
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err == nil {
			err = checkRevocation(c, cfg, claims)
		}
		if err != nil {
			if required {
				abortUnauthenticated(c, cfg, err)
				return
			}
			c.Next()
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Set(SessionUserIDKey, claims.UserID)
		c.Set(SessionRoleKey, claims.Role)
		c.Set(SessionJTIKey, claims.ID)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ExtractSessionToken returns the token from the session cookie or the
// Authorization header, in that order
func ExtractSessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader(AuthHeaderKey)
	if strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	}
	return ""
}

// checkRevocation fails open when the blacklist store is unreachable
func checkRevocation(c *gin.Context, cfg SessionConfig, claims *auth.Claims) error {
	if cfg.Blacklist == nil {
		return nil
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := cfg.Blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			cfg.Logger.Error("Failed to check token blacklist",
				zap.String("jti", claims.ID),
				zap.Error(err))
		} else if revoked {
			return auth.ErrTokenBlacklisted
		}
	}

	invalidated, err := cfg.Blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		cfg.Logger.Error("Failed to check user token invalidation",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		return nil
	}
	if invalidated {
		return auth.ErrTokenBlacklisted
	}
	return nil
}

func abortUnauthenticated(c *gin.Context, cfg SessionConfig, err error) {
	cfg.Logger.Debug("Session rejected",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Session has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code = dto.ErrCodeTokenInvalid
		message = "Session has been revoked"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}

// GetSessionClaims retrieves the session claims from gin.Context
func GetSessionClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(SessionClaimsKey); exists {
		if sc, ok := claims.(*auth.Claims); ok {
			return sc
		}
	}
	return nil
}

// GetSessionUserID returns the authenticated user id, or uuid.Nil
func GetSessionUserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(SessionUserIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// GetSessionRole returns the authenticated user's role, or ""
func GetSessionRole(c *gin.Context) string {
	return c.GetString(SessionRoleKey)
}

// RequireRole rejects sessions whose role is not one of roles.
// It must run after Session.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSessionClaims(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}
		role := GetSessionRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "You do not have permission to access this resource", c.GetString(RequestIDKey)))
	}
}
