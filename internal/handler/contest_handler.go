package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"contesthub/internal/model"
	"contesthub/internal/service"
)

// ContestHandler exposes the contest lifecycle.
type ContestHandler struct {
	svc service.ContestService
	log *logrus.Entry
}

// NewContestHandler creates a new contest handler.
func NewContestHandler(svc service.ContestService, log *logrus.Entry) *ContestHandler {
	return &ContestHandler{svc: svc, log: log}
}

// SetStatusRequest represents an admin decision on a pending contest.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SubmitTaskRequest represents a participant's entry.
type SubmitTaskRequest struct {
	Submission string `json:"submission"`
}

// DeclareWinnerRequest names the winning participant.
type DeclareWinnerRequest struct {
	Email string `json:"email"`
}

// List godoc
// @Summary List contests
// @Tags contests
// @Produce json
// @Param email query string false "Creator email"
// @Param category query string false "Category, All for any"
// @Param search query string false "Case-insensitive text in title, category or description"
// @Success 200 {array} model.Contest
// @Router /contests [get]
func (h *ContestHandler) List(c echo.Context) error {
	contests, err := h.svc.List(c.Request().Context(), model.ContestFilter{
		CreatorEmail: c.QueryParam("email"),
		Category:     c.QueryParam("category"),
		Search:       c.QueryParam("search"),
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, nonNil(contests))
}

// Participated godoc
// @Summary Contests the caller registered for
// @Tags contests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Contest
// @Failure 401 {object} errors.ErrorResponse
// @Router /contests/participated [get]
func (h *ContestHandler) Participated(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}

	contests, err := h.svc.Participated(c.Request().Context(), who)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, nonNil(contests))
}

// Won godoc
// @Summary Contests the caller won
// @Tags contests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Contest
// @Failure 401 {object} errors.ErrorResponse
// @Router /contests/won [get]
func (h *ContestHandler) Won(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}

	contests, err := h.svc.Won(c.Request().Context(), who)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, nonNil(contests))
}

// Get godoc
// @Summary Get contest by id
// @Tags contests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Success 200 {object} model.Contest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /contests/{id} [get]
func (h *ContestHandler) Get(c echo.Context) error {
	contest, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, contest)
}

// Create godoc
// @Summary Create a contest
// @Description The contest starts pending and counts against the creator's package quota.
// @Tags contests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ContestContent true "Contest"
// @Success 201 {object} model.Contest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /contests [post]
func (h *ContestHandler) Create(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req model.ContestContent
	if err := bind(c, &req); err != nil {
		return err
	}

	contest, err := h.svc.Create(c.Request().Context(), who, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, contest)
}

// Edit godoc
// @Summary Replace a pending contest's content
// @Tags contests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Param request body model.ContestContent true "Contest"
// @Success 200 {object} model.Contest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /contests/edit/{id} [put]
func (h *ContestHandler) Edit(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req model.ContestContent
	if err := bind(c, &req); err != nil {
		return err
	}

	contest, err := h.svc.Edit(c.Request().Context(), who, c.Param("id"), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, contest)
}

// UpdateFields godoc
// @Summary Update selected contest fields
// @Description Allowed at any status for the owner.
// @Tags contests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Param request body model.ContestPatch true "Fields"
// @Success 200 {object} model.Contest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /contests/{id} [put]
func (h *ContestHandler) UpdateFields(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var patch model.ContestPatch
	if err := bind(c, &patch); err != nil {
		return err
	}

	contest, err := h.svc.UpdateFields(c.Request().Context(), who, c.Param("id"), patch)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, contest)
}

// Delete godoc
// @Summary Delete a contest
// @Tags contests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /contests/{id} [delete]
func (h *ContestHandler) Delete(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), who, c.Param("id")); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "contest deleted"})
}

// SetStatus godoc
// @Summary Confirm or reject a pending contest
// @Tags contests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Param request body SetStatusRequest true "confirmed or rejected"
// @Success 200 {object} model.Contest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /contests/status/{id} [put]
func (h *ContestHandler) SetStatus(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req SetStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contest, err := h.svc.SetStatus(c.Request().Context(), who, c.Param("id"), req.Status)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, contest)
}

// Register godoc
// @Summary Register for a contest
// @Tags contests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Success 200 {object} model.Contest
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /contests/{id}/register [post]
func (h *ContestHandler) Register(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}

	contest, err := h.svc.Register(c.Request().Context(), who, c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, contest)
}

// SubmitTask godoc
// @Summary Submit an entry
// @Tags contests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Param request body SubmitTaskRequest true "Entry"
// @Success 200 {object} model.Contest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /contests/{id}/submit-task [post]
func (h *ContestHandler) SubmitTask(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req SubmitTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contest, err := h.svc.SubmitTask(c.Request().Context(), who, c.Param("id"), req.Submission)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, contest)
}

// DeclareWinner godoc
// @Summary Declare the contest winner
// @Tags contests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Param request body DeclareWinnerRequest true "Winner"
// @Success 200 {object} model.Contest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /contests/{id}/declare-winner [put]
func (h *ContestHandler) DeclareWinner(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	var req DeclareWinnerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contest, err := h.svc.DeclareWinner(c.Request().Context(), who, c.Param("id"), req.Email)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, contest)
}

// Submissions godoc
// @Summary List a contest's submissions
// @Tags contests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contest ID"
// @Success 200 {array} model.SubmissionView
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /contests/{id}/submissions [get]
func (h *ContestHandler) Submissions(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}

	views, err := h.svc.Submissions(c.Request().Context(), who, c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, views)
}
