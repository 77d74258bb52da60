package middleware

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-sessionauth/app/auth"
	"github.com/vibast-solutions/ms-go-sessionauth/app/dto"
	"github.com/vibast-solutions/ms-go-sessionauth/app/metrics"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const ContextKeyCurrentUser = "current_user"

// AuthMiddleware guards the /api/v1 routes with the configured Authenticator.
type AuthMiddleware struct {
	authenticator auth.Authenticator
	excludedPaths []string
}

func NewAuthMiddleware(authenticator auth.Authenticator, excludedPaths []string) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		excludedPaths: excludedPaths,
	}
}

// Authenticate answers 401 when the request carries no credential at all and
// 403 when the credential does not resolve to a user.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.authenticator == nil {
			return next(c)
		}

		r := c.Request()
		if !m.authenticator.RequireAuth(r.URL.Path, m.excludedPaths) {
			metrics.AuthDecisionsTotal.WithLabelValues(metrics.DecisionSkipped).Inc()
			return next(c)
		}

		if m.authenticator.AuthorizationHeader(r) == "" && m.authenticator.SessionCookie(r) == "" {
			logrus.WithField("path", r.URL.Path).Debug("Missing credentials")
			metrics.AuthDecisionsTotal.WithLabelValues(metrics.DecisionUnauthorized).Inc()
			return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		}

		user := m.authenticator.CurrentUser(r)
		if user == nil {
			logrus.WithField("path", r.URL.Path).Debug("Credentials did not resolve to a user")
			metrics.AuthDecisionsTotal.WithLabelValues(metrics.DecisionForbidden).Inc()
			return c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
		}

		metrics.AuthDecisionsTotal.WithLabelValues(metrics.DecisionAllowed).Inc()
		c.Set(ContextKeyCurrentUser, user)
		return next(c)
	}
}
