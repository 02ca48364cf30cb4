// Package payments records money against invoices and keeps each invoice's
// paid amount, balance due and payment status consistent with the sum of its
// payments. The recompute always runs against the full payment set inside the
// recording transaction, never by incrementing the previous header values.
package payments

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khatadesk/khatadesk/internal/invoices"
)

// PaymentMode is the settlement channel.
type PaymentMode string

const (
	ModeCash         PaymentMode = "CASH"
	ModeUPI          PaymentMode = "UPI"
	ModeNEFT         PaymentMode = "NEFT"
	ModeRTGS         PaymentMode = "RTGS"
	ModeBankTransfer PaymentMode = "BANK_TRANSFER"
	ModeCheque       PaymentMode = "CHEQUE"
	ModeCard         PaymentMode = "CARD"
	ModeOther        PaymentMode = "OTHER"
)

// ParseMode accepts any casing and falls back to OTHER rather than failing;
// the mode is descriptive, not load-bearing.
func ParseMode(s string) PaymentMode {
	mode := PaymentMode(strings.ToUpper(strings.TrimSpace(s)))
	switch mode {
	case ModeCash, ModeUPI, ModeNEFT, ModeRTGS, ModeBankTransfer, ModeCheque, ModeCard:
		return mode
	default:
		return ModeOther
	}
}

// Payment is one settlement row against an invoice.
type Payment struct {
	ID            int64            `json:"id"`
	InvoiceID     int64            `json:"invoice_id"`
	Kind          invoices.DocKind `json:"kind"`
	ReceiptNumber string           `json:"receipt_number"`
	Amount        decimal.Decimal  `json:"amount"`
	PaymentDate   time.Time        `json:"payment_date"`
	Mode          PaymentMode      `json:"mode"`
	Reference     string           `json:"reference,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedBy     int64            `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Receipt is the response to a recorded payment: the payment plus the
// invoice header state it produced.
type Receipt struct {
	Payment       Payment                `json:"payment"`
	InvoiceNumber string                 `json:"invoice_number"`
	PaidAmount    decimal.Decimal        `json:"paid_amount"`
	BalanceDue    decimal.Decimal        `json:"balance_due"`
	PaymentStatus invoices.PaymentStatus `json:"payment_status"`
}

// Recompute derives the header state from the invoice total and the sum of
// all recorded payments. Overpayment drives the balance negative and the
// status stays PAID.
func Recompute(total, totalPaid decimal.Decimal) (balance decimal.Decimal, status invoices.PaymentStatus) {
	return total.Sub(totalPaid), invoices.PaymentStatusFor(total, totalPaid)
}
