package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/khatadesk/khatadesk/internal/invoices"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// Handler exposes the ledger read API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/partners/{id}/ledger", h.partyStatement)
	r.Get("/invoices/{kind}/{id}/ledger", h.invoiceStatement)
}

func (h *Handler) partyStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid party id")
		return
	}
	st, err := h.service.PartyStatement(r.Context(), id)
	if err != nil {
		h.logger.Error("party statement", slog.Int64("party_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) invoiceStatement(w http.ResponseWriter, r *http.Request) {
	kind, err := invoices.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	st, err := h.service.InvoiceStatement(r.Context(), kind, id)
	if err != nil {
		h.logger.Error("invoice statement", slog.Int64("invoice_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}
