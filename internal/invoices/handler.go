package invoices

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/khatadesk/khatadesk/internal/observability"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// Handler exposes the invoice JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/next-invoice-number", h.nextNumber)
	r.Post("/invoices/{kind}", h.create)
	r.Get("/invoices/{kind}", h.list)
	r.Get("/invoices/{kind}/{id}", h.get)
	r.Put("/invoices/{kind}/{id}", h.update)
	r.Patch("/invoices/{kind}/{id}/status", h.overrideStatus)
	r.Delete("/invoices/{kind}/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FieldProblem(w, "invalid invoice payload", fieldErrors(err))
		return
	}

	inv, err := h.service.Create(r.Context(), kind, req, 0)
	if err != nil {
		h.logger.Error("create invoice", slog.String("kind", string(kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.InvoiceCreated(string(kind))
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	req := ListInvoicesRequest{Limit: 100}
	q := r.URL.Query()
	if v := q.Get("party_id"); v != "" {
		req.PartyID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("payment_status"); v != "" {
		req.PaymentStatus = PaymentStatus(v)
	}
	if v := q.Get("from"); v != "" {
		req.FromDate, _ = time.Parse("2006-01-02", v)
	}
	if v := q.Get("to"); v != "" {
		req.ToDate, _ = time.Parse("2006-01-02", v)
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			req.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}

	out, err := h.service.List(r.Context(), kind, req)
	if err != nil {
		h.logger.Error("list invoices", slog.String("kind", string(kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.kindID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), kind, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.kindID(w, r)
	if !ok {
		return
	}
	var req UpdateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	inv, err := h.service.Update(r.Context(), kind, id, req)
	if err != nil {
		h.logger.Error("update invoice", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) overrideStatus(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.kindID(w, r)
	if !ok {
		return
	}
	var req StatusOverrideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FieldProblem(w, "invalid status payload", fieldErrors(err))
		return
	}
	inv, err := h.service.OverrideStatus(r.Context(), kind, id, req.PaymentStatus)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.kindID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), kind, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) nextNumber(w http.ResponseWriter, r *http.Request) {
	kindParam := r.URL.Query().Get("type")
	if kindParam == "" {
		kindParam = r.URL.Query().Get("kind")
	}
	if kindParam == "" {
		kindParam = string(KindSales)
	}
	kind, err := ParseKind(kindParam)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	resp, err := h.service.NextNumber(r.Context(), kind, r.URL.Query().Get("fy"))
	if err != nil {
		h.logger.Error("next invoice number", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) kind(w http.ResponseWriter, r *http.Request) (DocKind, bool) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return "", false
	}
	return kind, true
}

func (h *Handler) kindID(w http.ResponseWriter, r *http.Request) (DocKind, int64, bool) {
	kind, ok := h.kind(w, r)
	if !ok {
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return "", 0, false
	}
	return kind, id, true
}

func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
