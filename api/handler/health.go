package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/internal/infrastructure/monitor"
	"github.com/fastygo/todo/pkg/httpcontext"
)

// StatusReporter exposes the latest storage probe.
type StatusReporter interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusReporter
}

func NewHealthHandler(mon StatusReporter, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Liveness probe; never touches storage
// @Tags health
// @Router /api/health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, transport.StatusResponse{Status: "healthy"})
}

// @Summary Readiness probe based on the last storage check
// @Tags health
// @Router /api/ready [get]
func (h *HealthHandler) Ready(ctx *fasthttp.RequestCtx) {
	if h.monitor == nil {
		h.respondJSON(ctx, http.StatusServiceUnavailable, transport.ReadinessResponse{Status: "unavailable"})
		return
	}

	status := h.monitor.GetStatus()
	resp := transport.ReadinessResponse{
		Status:  "ready",
		Driver:  status.Driver,
		Storage: status.Storage,
	}
	if !status.LastCheck.IsZero() {
		resp.LastCheck = transport.FormatTime(status.LastCheck)
	}

	if status.Storage {
		h.respondJSON(ctx, http.StatusOK, resp)
		return
	}
	resp.Status = "unavailable"
	h.respondJSON(ctx, http.StatusServiceUnavailable, resp)
}
