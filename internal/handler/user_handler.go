package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"contesthub/internal/service"
)

// UserHandler bundles user administration and package endpoints.
type UserHandler struct {
	svc service.UserService
	log *logrus.Entry
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, log *logrus.Entry) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// SetRoleRequest represents a role change.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// BuyPackageRequest represents a package purchase.
type BuyPackageRequest struct {
	PackageID string `json:"packageId" validate:"required"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, nonNil(users))
}

// SetRole godoc
// @Summary Overwrite a user's role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body SetRoleRequest true "New role"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/role [put]
func (h *UserHandler) SetRole(c echo.Context) error {
	var req SetRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.svc.SetRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Packages godoc
// @Summary List contest packages
// @Tags packages
// @Produce json
// @Success 200 {array} model.Package
// @Router /packages [get]
func (h *UserHandler) Packages(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Packages())
}

// BuyPackage godoc
// @Summary Grant the caller a package's contest quota
// @Tags packages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BuyPackageRequest true "Package"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/buy-package [post]
func (h *UserHandler) BuyPackage(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req BuyPackageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.svc.BuyPackage(c.Request().Context(), who.Email, req.PackageID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, user)
}

// nonNil keeps empty listings as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
