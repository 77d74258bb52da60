package cmd

import (
	"context"

	"github.com/vibast-solutions/ms-go-sessionauth/app/auth"
	"github.com/vibast-solutions/ms-go-sessionauth/app/controller"
	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/middleware"
	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
	"github.com/vibast-solutions/ms-go-sessionauth/app/service"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type userDirectory interface {
	FindUserBy(ctx context.Context, criteria repository.Criteria) (*entity.User, error)
	FindUsersBy(ctx context.Context, criteria repository.Criteria) ([]*entity.User, error)
}

type httpDeps struct {
	userAuthService service.UserAuthService
	users           userDirectory
	hasher          password.Hasher
	authenticator   auth.Authenticator
	// sessionAuth is nil unless AUTH_TYPE is session_auth.
	sessionAuth   *auth.SessionAuth
	excludedPaths []string
	registerer    prometheus.Registerer
	gatherer      prometheus.Gatherer
}

func newHTTPServer(deps httpDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "sessionauth",
		Registerer: deps.registerer,
	}))
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.gatherer,
	}))

	userAuthController := controller.NewUserAuthController(deps.userAuthService)
	sessionMiddleware := middleware.NewSessionMiddleware(deps.userAuthService)

	e.GET("/", userAuthController.Index)
	e.POST("/users", userAuthController.RegisterUser)
	e.POST("/sessions", userAuthController.Login)
	e.DELETE("/sessions", userAuthController.Logout, sessionMiddleware.RequireSession)
	e.GET("/profile", userAuthController.Profile, sessionMiddleware.RequireSession)
	e.POST("/reset_password", userAuthController.GetResetPasswordToken)
	e.PUT("/reset_password", userAuthController.UpdatePassword)

	apiController := controller.NewAPIController()
	authMiddleware := middleware.NewAuthMiddleware(deps.authenticator, deps.excludedPaths)

	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate)
	api.GET("/status", apiController.Status)
	api.GET("/unauthorized", apiController.Unauthorized)
	api.GET("/forbidden", apiController.Forbidden)
	api.GET("/users/me", apiController.Me)

	if deps.sessionAuth != nil {
		sessionAuthController := controller.NewSessionAuthController(deps.sessionAuth, deps.users, deps.hasher)
		api.POST("/auth_session/login", sessionAuthController.Login)
		api.DELETE("/auth_session/logout", sessionAuthController.Logout)
	}

	return e
}
