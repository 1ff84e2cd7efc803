package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"contesthub/internal/errors"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	store Pinger
	log   *logrus.Entry
}

// NewHealthHandler creates a health handler over the primary store.
func NewHealthHandler(store Pinger, log *logrus.Entry) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

// Live always answers ok while the process serves requests.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready answers ok only when the store answers a ping.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("readiness check failed")
		return fail(c, nil, errors.ErrStoreUnavailable)
	}
	return c.String(http.StatusOK, "ready")
}
