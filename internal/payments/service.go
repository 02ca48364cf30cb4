package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khatadesk/khatadesk/internal/invoices"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// RecordPaymentRequest is the record-payment payload. Kind and invoice id
// identify the document; everything else describes the settlement.
type RecordPaymentRequest struct {
	Kind        string          `json:"kind" validate:"required"`
	InvoiceID   int64           `json:"invoice_id" validate:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Mode        string          `json:"mode,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// Service validates and records payments.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record validates the request, stamps a receipt number and writes the
// payment with its header recompute.
func (s *Service) Record(ctx context.Context, req RecordPaymentRequest, userID int64) (*Receipt, error) {
	kind, err := invoices.ParseKind(req.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}

	date := time.Now()
	if req.PaymentDate != nil {
		date = *req.PaymentDate
	}

	p := Payment{
		InvoiceID:     req.InvoiceID,
		Kind:          kind,
		ReceiptNumber: newReceiptNumber(),
		Amount:        req.Amount,
		PaymentDate:   date,
		Mode:          ParseMode(req.Mode),
		Reference:     strings.TrimSpace(req.Reference),
		Notes:         strings.TrimSpace(req.Notes),
		CreatedBy:     userID,
	}

	receipt, err := s.repo.Record(ctx, p)
	if errors.Is(err, ErrInvoiceNotFound) {
		return nil, fmt.Errorf("%w: %s", httpx.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "payment recorded",
		"kind", kind, "invoice", receipt.InvoiceNumber, "amount", p.Amount,
		"status", receipt.PaymentStatus)
	return receipt, nil
}

// ListByInvoice returns the payments against one invoice in ledger order.
func (s *Service) ListByInvoice(ctx context.Context, kind invoices.DocKind, invoiceID int64) ([]Payment, error) {
	return s.repo.ListByInvoice(ctx, kind, invoiceID)
}

func newReceiptNumber() string {
	id := uuid.New().String()
	return "RCPT-" + strings.ToUpper(id[:8])
}
