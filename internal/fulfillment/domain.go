// Package fulfillment reconciles sales orders against the invoices raised
// from them. Pending quantity is never stored; it is derived per request from
// ordered minus invoiced, floored at zero so over-invoicing a line does not
// produce negative pending figures.
package fulfillment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/khatadesk/khatadesk/internal/snapshot"
)

// OrderStatus is the lifecycle state of a sales order.
type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderClosed    OrderStatus = "CLOSED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a sales order header with its lines.
type Order struct {
	ID           int64           `json:"id"`
	OrderNumber  string          `json:"order_number"`
	CustomerName string          `json:"customer_name"`
	OrderDate    time.Time       `json:"order_date"`
	Status       OrderStatus     `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Lines        []OrderLine     `json:"lines"`
}

// OrderLine is one ordered product line.
type OrderLine struct {
	ID          int64           `json:"id"`
	ProductID   *int64          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        snapshot.UOM    `json:"unit"`
	Rate        decimal.Decimal `json:"rate"`
}

// InvoicedLine is an aggregated invoiced quantity for one product key within
// an order.
type InvoicedLine struct {
	ProductID   *int64
	Description string
	Quantity    decimal.Decimal
}

// OrderInvoiced aggregates everything invoiced against one order.
type OrderInvoiced struct {
	Amount         decimal.Decimal
	InvoiceNumbers []string
	Lines          []InvoicedLine
}

// PendingLine is an order line with its reconciliation figures.
type PendingLine struct {
	ProductID   *int64          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Unit        snapshot.UOM    `json:"unit"`
	OrderedQty  decimal.Decimal `json:"ordered_qty"`
	InvoicedQty decimal.Decimal `json:"invoiced_qty"`
	PendingQty  decimal.Decimal `json:"pending_qty"`
}

// PendingOrder is the reconciliation view of one order. The order-level
// quantities aggregate every invoice line referencing the order, whether or
// not it pairs with an order line; the per-line breakdown only covers what
// pairs up.
type PendingOrder struct {
	OrderID        int64           `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	CustomerName   string          `json:"customer_name"`
	OrderDate      time.Time       `json:"order_date"`
	Status         OrderStatus     `json:"status"`
	OrderedAmount  decimal.Decimal `json:"ordered_amount"`
	InvoicedAmount decimal.Decimal `json:"invoiced_amount"`
	OrderedQty     decimal.Decimal `json:"ordered_qty"`
	InvoicedQty    decimal.Decimal `json:"invoiced_qty"`
	PendingQty     decimal.Decimal `json:"pending_qty"`
	InvoiceNumbers []string        `json:"invoice_numbers"`
	Lines          []PendingLine   `json:"lines"`
	FullyInvoiced  bool            `json:"fully_invoiced"`
}
