package middleware

import (
	"context"
	"net/http"

	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	UserSessionCookie = "session_id"
	ContextKeyUser    = "user"
)

type sessionResolver interface {
	GetUserFromSessionID(ctx context.Context, sessionID string) (*entity.User, error)
}

// SessionMiddleware guards user-service routes with the session_id cookie.
type SessionMiddleware struct {
	userAuthService sessionResolver
}

func NewSessionMiddleware(userAuthService sessionResolver) *SessionMiddleware {
	return &SessionMiddleware{userAuthService: userAuthService}
}

func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(UserSessionCookie)
		if err != nil || cookie.Value == "" {
			logrus.Debug("Missing session cookie")
			return c.NoContent(http.StatusForbidden)
		}

		user, err := m.userAuthService.GetUserFromSessionID(c.Request().Context(), cookie.Value)
		if err != nil {
			logrus.WithError(err).Error("Session lookup failed")
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "internal server error",
			})
		}
		if user == nil {
			logrus.Debug("Unknown session cookie")
			return c.NoContent(http.StatusForbidden)
		}

		c.Set(ContextKeyUser, user)
		return next(c)
	}
}
