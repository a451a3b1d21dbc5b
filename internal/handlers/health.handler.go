package handlers

import (
	"github.com/fasthttp/router"
	xhttp "github.com/grrdistribution/barrel-ledger/pkg/http"
)

type HealthService interface {
	Ping() error
}

type HealthHandler struct {
	store HealthService
}

func RegisterHealthRoutes(e *router.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(store HealthService) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	if err := h.store.Ping(); err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "store unreachable")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "ok"})
}
