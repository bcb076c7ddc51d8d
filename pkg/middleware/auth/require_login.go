package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/Skotchmaster/marketplace/pkg/tokens"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"

	AccessCookie = "accessToken"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type JWTMiddleware struct {
	JWTSecret []byte
}

func NewJWTMiddleware(secret []byte) *JWTMiddleware {
	return &JWTMiddleware{JWTSecret: secret}
}

func (m *JWTMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := accessToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "token has no valid subject")
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxRole, claims.Role)
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get(CtxUserID).(uint)
	if !ok || id == 0 {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

func accessToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}
