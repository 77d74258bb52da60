package controller

import (
	"context"
	"net/http"

	"github.com/vibast-solutions/ms-go-sessionauth/app/auth"
	"github.com/vibast-solutions/ms-go-sessionauth/app/dto"
	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/metrics"
	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type usersFinder interface {
	FindUsersBy(ctx context.Context, criteria repository.Criteria) ([]*entity.User, error)
}

// SessionAuthController serves the /api/v1/auth_session views.
type SessionAuthController struct {
	sessionAuth *auth.SessionAuth
	users       usersFinder
	hasher      password.Hasher
}

func NewSessionAuthController(sessionAuth *auth.SessionAuth, users usersFinder, hasher password.Hasher) *SessionAuthController {
	return &SessionAuthController{
		sessionAuth: sessionAuth,
		users:       users,
		hasher:      hasher,
	}
}

func (c *SessionAuthController) Login(ctx echo.Context) error {
	email := ctx.FormValue("email")
	pwd := ctx.FormValue("password")

	if email == "" {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantSession, metrics.ResultMissingInput).Inc()
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email missing"})
	}
	if pwd == "" {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantSession, metrics.ResultMissingInput).Inc()
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "password missing"})
	}

	reqCtx := ctx.Request().Context()
	users, err := c.users.FindUsersBy(reqCtx, repository.Criteria{"email": email})
	if err != nil {
		logrus.WithError(err).WithField("email", email).Error("Session login lookup failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
	if len(users) == 0 {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantSession, metrics.ResultUnknownUser).Inc()
		return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no user found for this email"})
	}

	var user *entity.User
	for _, candidate := range users {
		if c.hasher.Verify(candidate.HashedPassword, pwd) {
			user = candidate
			break
		}
	}
	if user == nil {
		logrus.WithField("email", email).Warn("Session login failed: wrong password")
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantSession, metrics.ResultWrongPassword).Inc()
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "wrong password"})
	}

	token, err := c.sessionAuth.CreateSession(reqCtx, user.ID)
	if err != nil || token == "" {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Session login failed: session not created")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantSession, metrics.ResultSuccess).Inc()
	metrics.SessionsCreatedTotal.WithLabelValues(metrics.VariantSession).Inc()

	ctx.SetCookie(&http.Cookie{
		Name:     c.sessionAuth.CookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	logrus.WithField("user_id", user.ID).Info("Session login successful")
	return ctx.JSON(http.StatusOK, dto.UserResponse{ID: user.ID, Email: user.Email})
}

func (c *SessionAuthController) Logout(ctx echo.Context) error {
	if !c.sessionAuth.DestroySession(ctx.Request()) {
		return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
	}
	metrics.SessionsDestroyedTotal.WithLabelValues(metrics.VariantSession).Inc()

	ctx.SetCookie(&http.Cookie{
		Name:   c.sessionAuth.CookieName(),
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return ctx.JSON(http.StatusOK, map[string]string{})
}
