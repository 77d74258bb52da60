package controller

import (
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-sessionauth/app/dto"
	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/middleware"
	"github.com/vibast-solutions/ms-go-sessionauth/app/service"
	"github.com/vibast-solutions/ms-go-sessionauth/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UserAuthController struct {
	userAuthService service.UserAuthService
}

func NewUserAuthController(userAuthService service.UserAuthService) *UserAuthController {
	return &UserAuthController{userAuthService: userAuthService}
}

func (c *UserAuthController) Index(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Bienvenue"})
}

func (c *UserAuthController) RegisterUser(ctx echo.Context) error {
	req, err := types.NewCredentialsRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Register validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	user, err := c.userAuthService.RegisterUser(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("email", req.Email).Warn("Register failed: email already registered")
			return ctx.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "email already registered"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Register failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return ctx.JSON(http.StatusOK, dto.EmailMessageResponse{Email: user.Email, Message: "user created"})
}

func (c *UserAuthController) Login(ctx echo.Context) error {
	req, err := types.NewCredentialsRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials"})
	}

	reqCtx := ctx.Request().Context()
	if !c.userAuthService.ValidLogin(reqCtx, req.Email, req.Password) {
		logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials"})
	}

	sessionID, err := c.userAuthService.CreateSession(reqCtx, req.Email)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed: session not created")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
	if sessionID == "" {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials"})
	}

	ctx.SetCookie(&http.Cookie{
		Name:     middleware.UserSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
	})

	logrus.WithField("email", req.Email).Info("Login successful")
	return ctx.JSON(http.StatusOK, dto.EmailMessageResponse{Email: req.Email, Message: "logged in"})
}

// Logout runs behind SessionMiddleware.RequireSession.
func (c *UserAuthController) Logout(ctx echo.Context) error {
	user, ok := ctx.Get(middleware.ContextKeyUser).(*entity.User)
	if !ok {
		return ctx.NoContent(http.StatusForbidden)
	}

	if err := c.userAuthService.DestroySession(ctx.Request().Context(), user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	ctx.SetCookie(&http.Cookie{
		Name:   middleware.UserSessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	logrus.WithField("user_id", user.ID).Info("Logout successful")
	return ctx.Redirect(http.StatusFound, "/")
}

// Profile runs behind SessionMiddleware.RequireSession.
func (c *UserAuthController) Profile(ctx echo.Context) error {
	user, ok := ctx.Get(middleware.ContextKeyUser).(*entity.User)
	if !ok {
		return ctx.NoContent(http.StatusForbidden)
	}

	return ctx.JSON(http.StatusOK, dto.ProfileResponse{Email: user.Email})
}

func (c *UserAuthController) GetResetPasswordToken(ctx echo.Context) error {
	req, err := types.NewResetPasswordTokenRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind reset token request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	}

	token, err := c.userAuthService.GetResetPasswordToken(ctx.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("email", req.Email).Warn("Reset token refused: unknown email")
			return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "forbidden"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Reset token failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("email", req.Email).Info("Reset token issued")
	return ctx.JSON(http.StatusOK, dto.ResetTokenResponse{Email: req.Email, ResetToken: token})
}

func (c *UserAuthController) UpdatePassword(ctx echo.Context) error {
	req, err := types.NewUpdatePasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind update password request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	}

	err = c.userAuthService.ResetPassword(ctx.Request().Context(), req.Email, req.ResetToken, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			logrus.WithField("email", req.Email).Warn("Password update refused: invalid reset token")
			return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "forbidden"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Password update failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("email", req.Email).Info("Password updated")
	return ctx.JSON(http.StatusOK, dto.EmailMessageResponse{Email: req.Email, Message: "Password updated"})
}
