package types

import (
	"github.com/labstack/echo/v4"
)

type CredentialsRequest struct {
	Email    string `json:"email" form:"email" validate:"required,max=250"`
	Password string `json:"password" form:"password" validate:"required"`
}

func NewCredentialsRequestFromContext(ctx echo.Context) (*CredentialsRequest, error) {
	var body CredentialsRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *CredentialsRequest) Validate() error {
	return validateStruct(r)
}

type ResetPasswordTokenRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
}

func NewResetPasswordTokenRequestFromContext(ctx echo.Context) (*ResetPasswordTokenRequest, error) {
	var body ResetPasswordTokenRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ResetPasswordTokenRequest) Validate() error {
	return validateStruct(r)
}

type UpdatePasswordRequest struct {
	Email       string `json:"email" form:"email" validate:"required"`
	ResetToken  string `json:"reset_token" form:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required"`
}

func NewUpdatePasswordRequestFromContext(ctx echo.Context) (*UpdatePasswordRequest, error) {
	var body UpdatePasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *UpdatePasswordRequest) Validate() error {
	return validateStruct(r)
}
