package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AlexVocao/login/internal/auth"
	"github.com/AlexVocao/login/internal/errors"
	"github.com/AlexVocao/login/internal/model"
	"github.com/AlexVocao/login/internal/service"
)

// ProfileHandler serves the authenticated user's own data.
type ProfileHandler struct {
	svc service.ProfileService
}

// NewProfileHandler creates a handler layer.
func NewProfileHandler(svc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// ProfileResponse wraps the caller's profile.
type ProfileResponse struct {
	User model.Profile `json:"user"`
}

// Me godoc
// @Summary Get the caller's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return respondError(errors.ErrMissingToken)
	}

	profile, err := h.svc.GetProfile(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, ProfileResponse{User: *profile})
}
