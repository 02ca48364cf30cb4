package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest is the POST /invoices/{kind} payload. A party is
// referenced either by an existing snapshot id or by a master id; master
// references trigger a snapshot sync before the insert.
type CreateInvoiceRequest struct {
	Number           string            `json:"number,omitempty"`
	InvoiceDate      time.Time         `json:"invoice_date" validate:"required"`
	DueDate          *time.Time        `json:"due_date,omitempty"`
	FiscalYear       string            `json:"fiscal_year,omitempty"`
	PartySnapshotID  *int64            `json:"party_snapshot_id,omitempty"`
	PartyMasterID    *int64            `json:"party_master_id,omitempty"`
	SalesOrderNumber *string           `json:"sales_order_number,omitempty"`
	CGSTRate         decimal.Decimal   `json:"cgst_rate"`
	SGSTRate         decimal.Decimal   `json:"sgst_rate"`
	IGSTRate         decimal.Decimal   `json:"igst_rate"`
	OtherCharges     decimal.Decimal   `json:"other_charges"`
	RoundOff         decimal.Decimal   `json:"round_off"`
	Submit           bool              `json:"submit"`
	Notes            *string           `json:"notes,omitempty"`
	Items            []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// LineItemRequest is one requested invoice line. Product references are
// optional; free-text lines carry a description instead.
type LineItemRequest struct {
	ProductMasterID   *int64          `json:"product_master_id,omitempty"`
	ProductSnapshotID *int64          `json:"product_snapshot_id,omitempty"`
	Description       string          `json:"description,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	Unit              string          `json:"unit,omitempty"`
	Rate              decimal.Decimal `json:"rate"`
	LineOrder         int             `json:"line_order,omitempty" validate:"gte=0"`
}

// UpdateInvoiceRequest is a partial header update. A present PaidAmount
// triggers a balance and payment-status recompute from amounts.
type UpdateInvoiceRequest struct {
	InvoiceDate  *time.Time       `json:"invoice_date,omitempty"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
	OtherCharges *decimal.Decimal `json:"other_charges,omitempty"`
	RoundOff     *decimal.Decimal `json:"round_off,omitempty"`
	PaidAmount   *decimal.Decimal `json:"paid_amount,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	Submit       *bool            `json:"submit,omitempty"`
}

// StatusOverrideRequest is the administrative payment-status override.
type StatusOverrideRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required"`
}

// ListInvoicesRequest filters the invoice list.
type ListInvoicesRequest struct {
	PartyID       int64
	PaymentStatus PaymentStatus
	FromDate      time.Time
	ToDate        time.Time
	Limit         int
	Offset        int
}

// NextNumberResponse is the allocation preview payload.
type NextNumberResponse struct {
	InvoiceNumber string `json:"invoice_number"`
	FinancialYear string `json:"financial_year"`
}
