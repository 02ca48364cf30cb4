// Package invoices implements the invoice lifecycle: document numbering,
// header and line-item creation, totals computation and status transitions.
package invoices

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khatadesk/khatadesk/internal/snapshot"
)

// DocKind distinguishes sales from purchase documents. The two kinds live in
// separate table families but share all lifecycle logic.
type DocKind string

const (
	KindSales    DocKind = "SALES"
	KindPurchase DocKind = "PURCHASE"
)

// ParseKind accepts the kind in any casing ("sales", "SALES").
func ParseKind(s string) (DocKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(KindSales):
		return KindSales, nil
	case string(KindPurchase):
		return KindPurchase, nil
	default:
		return "", fmt.Errorf("unknown document kind %q", s)
	}
}

// Prefix returns the document-number prefix for the kind.
func (k DocKind) Prefix() string {
	if k == KindPurchase {
		return "PINV"
	}
	return "INV"
}

// PartyType returns the snapshot party type invoices of this kind reference.
func (k DocKind) PartyType() snapshot.PartyType {
	if k == KindPurchase {
		return snapshot.PartySupplier
	}
	return snapshot.PartyCustomer
}

// InvoiceStatus is the document workflow status.
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "DRAFT"
	StatusSubmitted InvoiceStatus = "SUBMITTED"
)

// PaymentStatus tracks settlement of the invoice balance.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
	// PaymentOverdue exists only as an administrative override; the derived
	// overdue flag on ledger statements is computed at read time instead.
	PaymentOverdue PaymentStatus = "OVERDUE"
)

// ValidPaymentStatus reports whether s is an accepted status value.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentOverdue:
		return true
	}
	return false
}

// PaymentStatusFor derives the payment status from the invoice amounts.
// This is the single source of truth for the status state machine; statuses
// are recomputed from amounts, never stored independently of them.
func PaymentStatusFor(total, paid decimal.Decimal) PaymentStatus {
	if paid.IsZero() {
		return PaymentPending
	}
	if total.Sub(paid).LessThanOrEqual(decimal.Zero) {
		return PaymentPaid
	}
	return PaymentPartial
}

// Invoice is a sales or purchase invoice header with its items.
type Invoice struct {
	ID               int64           `json:"id"`
	Kind             DocKind         `json:"kind"`
	Number           string          `json:"number"`
	FiscalYear       string          `json:"fiscal_year"`
	InvoiceDate      time.Time       `json:"invoice_date"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	PartyID          int64           `json:"party_id"`
	PartyName        string          `json:"party_name,omitempty"`
	SalesOrderID     *int64          `json:"sales_order_id,omitempty"`
	SalesOrderNumber *string         `json:"sales_order_number,omitempty"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	CGSTAmount       decimal.Decimal `json:"cgst_amount"`
	SGSTAmount       decimal.Decimal `json:"sgst_amount"`
	IGSTAmount       decimal.Decimal `json:"igst_amount"`
	OtherCharges     decimal.Decimal `json:"other_charges"`
	RoundOff         decimal.Decimal `json:"round_off"`
	Total            decimal.Decimal `json:"total"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	BalanceDue       decimal.Decimal `json:"balance_due"`
	Status           InvoiceStatus   `json:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedBy        int64           `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Items            []LineItem      `json:"items,omitempty"`
}

// LineItem is one ordered invoice line.
type LineItem struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	ProductID   *int64          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        snapshot.UOM    `json:"unit"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	LineOrder   int             `json:"line_order"`
}
