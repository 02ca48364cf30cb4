package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// Service computes order reconciliation views.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// PendingOrders returns every open order that still has uninvoiced quantity.
// Fully invoiced orders drop out of the list; they remain reachable through
// PendingOrder by number.
func (s *Service) PendingOrders(ctx context.Context) ([]PendingOrder, error) {
	orders, err := s.repo.OpenOrders(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	invoiced, err := s.repo.InvoicedByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := []PendingOrder{}
	for _, o := range orders {
		po := reconcile(o, invoiced[o.ID])
		if po.FullyInvoiced {
			continue
		}
		out = append(out, po)
	}
	return out, nil
}

// PendingOrder returns the reconciliation view of one order by number,
// whether or not anything is still pending.
func (s *Service) PendingOrder(ctx context.Context, number string) (*PendingOrder, error) {
	o, err := s.repo.OrderByNumber(ctx, number)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: %s", httpx.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	invoiced, err := s.repo.InvoicedByOrder(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	po := reconcile(*o, invoiced[o.ID])
	return &po, nil
}

// reconcile matches invoiced quantities against order lines. Lines pair by
// product id when both sides carry one, otherwise by case-folded description.
// The order-level invoiced quantity sums every invoice line regardless of
// pairing, so a renamed line still counts against the order total.
func reconcile(o Order, inv OrderInvoiced) PendingOrder {
	invoicedByKey := map[string]decimal.Decimal{}
	totalInvoicedQty := decimal.Zero
	for _, line := range inv.Lines {
		key := lineKey(line.ProductID, line.Description)
		invoicedByKey[key] = invoicedByKey[key].Add(line.Quantity)
		totalInvoicedQty = totalInvoicedQty.Add(line.Quantity)
	}

	po := PendingOrder{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerName:   o.CustomerName,
		OrderDate:      o.OrderDate,
		Status:         o.Status,
		OrderedAmount:  o.TotalAmount,
		InvoicedAmount: inv.Amount,
		OrderedQty:     decimal.Zero,
		InvoicedQty:    totalInvoicedQty,
		InvoiceNumbers: inv.InvoiceNumbers,
	}
	if po.InvoiceNumbers == nil {
		po.InvoiceNumbers = []string{}
	}

	for _, line := range o.Lines {
		po.OrderedQty = po.OrderedQty.Add(line.Quantity)
		invoicedQty := invoicedByKey[lineKey(line.ProductID, line.Description)]
		pending := line.Quantity.Sub(invoicedQty)
		if pending.IsNegative() {
			pending = decimal.Zero
		}
		po.Lines = append(po.Lines, PendingLine{
			ProductID:   line.ProductID,
			Description: line.Description,
			Unit:        line.Unit,
			OrderedQty:  line.Quantity,
			InvoicedQty: invoicedQty,
			PendingQty:  pending,
		})
	}

	po.PendingQty = po.OrderedQty.Sub(po.InvoicedQty)
	if po.PendingQty.IsNegative() {
		po.PendingQty = decimal.Zero
	}
	po.FullyInvoiced = !po.PendingQty.IsPositive()
	return po
}

func lineKey(productID *int64, description string) string {
	if productID != nil {
		return fmt.Sprintf("p:%d", *productID)
	}
	return "d:" + strings.ToLower(strings.TrimSpace(description))
}
