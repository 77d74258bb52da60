package controller

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-sessionauth/app/dto"
	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/middleware"

	"github.com/labstack/echo/v4"
)

type APIController struct{}

func NewAPIController() *APIController {
	return &APIController{}
}

func (c *APIController) Status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dto.StatusResponse{Status: "OK"})
}

func (c *APIController) Unauthorized(ctx echo.Context) error {
	return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
}

func (c *APIController) Forbidden(ctx echo.Context) error {
	return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
}

// Me runs behind AuthMiddleware.Authenticate.
func (c *APIController) Me(ctx echo.Context) error {
	user, ok := ctx.Get(middleware.ContextKeyCurrentUser).(*entity.User)
	if !ok {
		return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
	}
	return ctx.JSON(http.StatusOK, dto.UserResponse{ID: user.ID, Email: user.Email})
}
