// Package ledger derives partner statements from invoices and payments. The
// statement is a pure read model: it is recomputed from source rows on every
// request (modulo a short cache) and never stored.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/khatadesk/khatadesk/internal/invoices"
)

// SourceType tags where a ledger entry came from.
type SourceType string

const (
	SourceInvoice SourceType = "INVOICE"
	SourcePayment SourceType = "PAYMENT"
)

// Event is a raw ledger-relevant row pulled from storage before ordering and
// balance folding. Invoices post credit, payments post debit; the same
// convention applies to sales and purchase documents so statement arithmetic
// is identical for customers and suppliers.
type Event struct {
	SourceType    SourceType
	SourceID      int64
	InvoiceRef    int64 // for payments, the invoice they settle
	Kind          invoices.DocKind
	Date          time.Time
	CreatedAt     time.Time
	Number        string
	Amount        decimal.Decimal
	DueDate       *time.Time
	PaymentStatus invoices.PaymentStatus
	BalanceDue    decimal.Decimal
}

// Entry is one statement line with its running balance.
type Entry struct {
	Date        time.Time        `json:"date"`
	SourceType  SourceType       `json:"source_type"`
	SourceID    int64            `json:"source_id"`
	Kind        invoices.DocKind `json:"kind"`
	Number      string           `json:"number"`
	Description string           `json:"description"`
	Credit      decimal.Decimal  `json:"credit"`
	Debit       decimal.Decimal  `json:"debit"`
	Balance     decimal.Decimal  `json:"balance"`
}

// Statement is a partner's full ledger view.
type Statement struct {
	PartyID       int64           `json:"party_id"`
	PartyName     string          `json:"party_name"`
	Entries       []Entry         `json:"entries"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Balance       decimal.Decimal `json:"balance"`
	OverdueCount  int             `json:"overdue_count"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	GeneratedAt   time.Time       `json:"generated_at"`
}
