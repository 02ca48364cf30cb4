package fulfillment

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// Handler exposes the pending-order API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers fulfillment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pending-orders", h.list)
	r.Get("/pending-orders/{orderNumber}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.PendingOrders(r.Context())
	if err != nil {
		h.logger.Error("list pending orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")
	if number == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing order number")
		return
	}
	po, err := h.service.PendingOrder(r.Context(), number)
	if err != nil {
		h.logger.Error("pending order", slog.String("order", number), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}
