package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/khatadesk/khatadesk/internal/platform/httpx"
	"github.com/khatadesk/khatadesk/internal/snapshot"
)

type memoryRepo struct {
	orders   []Order
	invoiced map[int64]OrderInvoiced
}

func (m *memoryRepo) OpenOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.Status == OrderOpen {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memoryRepo) OrderByNumber(ctx context.Context, number string) (*Order, error) {
	for _, o := range m.orders {
		if o.OrderNumber == number {
			out := o
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, number)
}

func (m *memoryRepo) InvoicedByOrder(ctx context.Context, orderIDs []int64) (map[int64]OrderInvoiced, error) {
	out := map[int64]OrderInvoiced{}
	for _, id := range orderIDs {
		if agg, ok := m.invoiced[id]; ok {
			out[id] = agg
		}
	}
	return out, nil
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func int64Ptr(v int64) *int64 { return &v }

func steelOrder() Order {
	return Order{
		ID:           1,
		OrderNumber:  "SO-2025-014",
		CustomerName: "Sharma Traders",
		OrderDate:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:       OrderOpen,
		TotalAmount:  decimal.NewFromInt(15000),
		Lines: []OrderLine{
			{ID: 1, ProductID: int64Ptr(5), Description: "Steel Rod 8mm", Quantity: qty(100), Unit: snapshot.UOMTon, Rate: decimal.NewFromInt(150)},
		},
	}
}

func TestPendingQuantityDerived(t *testing.T) {
	repo := &memoryRepo{
		orders: []Order{steelOrder()},
		invoiced: map[int64]OrderInvoiced{
			1: {
				Amount:         decimal.NewFromInt(11250),
				InvoiceNumbers: []string{"INV/01/25-26", "INV/02/25-26"},
				Lines: []InvoicedLine{
					{ProductID: int64Ptr(5), Quantity: qty(40)},
					{ProductID: int64Ptr(5), Quantity: qty(35)},
				},
			},
		},
	}
	svc := NewService(repo, slog.New(slog.DiscardHandler))

	out, err := svc.PendingOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	po := out[0]
	require.Equal(t, "SO-2025-014", po.OrderNumber)
	require.Equal(t, []string{"INV/01/25-26", "INV/02/25-26"}, po.InvoiceNumbers)
	require.True(t, po.InvoicedAmount.Equal(decimal.NewFromInt(11250)))
	require.Len(t, po.Lines, 1)
	require.True(t, po.Lines[0].InvoicedQty.Equal(qty(75)))
	require.True(t, po.Lines[0].PendingQty.Equal(qty(25)), po.Lines[0].PendingQty.String())
	require.True(t, po.OrderedQty.Equal(qty(100)))
	require.True(t, po.InvoicedQty.Equal(qty(75)))
	require.True(t, po.PendingQty.Equal(qty(25)), po.PendingQty.String())
	require.False(t, po.FullyInvoiced)
}

func TestUnpairedInvoiceLinesCountInOrderTotals(t *testing.T) {
	order := steelOrder()
	order.Lines = []OrderLine{
		{ID: 1, Description: "steel rods", Quantity: qty(100), Unit: snapshot.UOMTon},
	}
	repo := &memoryRepo{
		orders: []Order{order},
		invoiced: map[int64]OrderInvoiced{
			1: {
				InvoiceNumbers: []string{"INV/01/25-26", "INV/02/25-26"},
				Lines: []InvoicedLine{
					{Description: "steel rods", Quantity: qty(40)},
					// Renamed on the invoice; pairs with no order line.
					{Description: "rods (steel)", Quantity: qty(35)},
				},
			},
		},
	}
	svc := NewService(repo, slog.New(slog.DiscardHandler))

	po, err := svc.PendingOrder(context.Background(), "SO-2025-014")
	require.NoError(t, err)
	// The breakdown only sees the paired line, the order totals see both.
	require.True(t, po.Lines[0].InvoicedQty.Equal(qty(40)))
	require.True(t, po.InvoicedQty.Equal(qty(75)), po.InvoicedQty.String())
	require.True(t, po.PendingQty.Equal(qty(25)), po.PendingQty.String())
	require.False(t, po.FullyInvoiced)
}

func TestOverInvoicedLineFloorsAtZero(t *testing.T) {
	repo := &memoryRepo{
		orders: []Order{steelOrder()},
		invoiced: map[int64]OrderInvoiced{
			1: {
				Amount:         decimal.NewFromInt(18000),
				InvoiceNumbers: []string{"INV/01/25-26"},
				Lines:          []InvoicedLine{{ProductID: int64Ptr(5), Quantity: qty(120)}},
			},
		},
	}
	svc := NewService(repo, slog.New(slog.DiscardHandler))

	// Fully invoiced orders drop out of the pending list.
	out, err := svc.PendingOrders(context.Background())
	require.NoError(t, err)
	require.Empty(t, out)

	po, err := svc.PendingOrder(context.Background(), "SO-2025-014")
	require.NoError(t, err)
	require.True(t, po.Lines[0].PendingQty.IsZero())
	require.True(t, po.PendingQty.IsZero())
	require.True(t, po.FullyInvoiced)
}

func TestUninvoicedOrderFullyPending(t *testing.T) {
	repo := &memoryRepo{orders: []Order{steelOrder()}, invoiced: map[int64]OrderInvoiced{}}
	svc := NewService(repo, slog.New(slog.DiscardHandler))

	out, err := svc.PendingOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.True(t, out[0].Lines[0].PendingQty.Equal(qty(100)))
	require.True(t, out[0].PendingQty.Equal(qty(100)))
	require.True(t, out[0].InvoicedQty.IsZero())
	require.Empty(t, out[0].InvoiceNumbers)
	require.True(t, out[0].InvoicedAmount.IsZero())
}

func TestLinesMatchByDescriptionWhenNoProduct(t *testing.T) {
	order := steelOrder()
	order.Lines = []OrderLine{
		{ID: 1, Description: "Binding Wire", Quantity: qty(50), Unit: snapshot.UOMKg},
	}
	repo := &memoryRepo{
		orders: []Order{order},
		invoiced: map[int64]OrderInvoiced{
			1: {Lines: []InvoicedLine{{Description: "binding wire", Quantity: qty(20)}}},
		},
	}
	svc := NewService(repo, slog.New(slog.DiscardHandler))

	po, err := svc.PendingOrder(context.Background(), "SO-2025-014")
	require.NoError(t, err)
	require.True(t, po.Lines[0].PendingQty.Equal(qty(30)), po.Lines[0].PendingQty.String())
}

func TestPendingOrderNotFound(t *testing.T) {
	svc := NewService(&memoryRepo{}, slog.New(slog.DiscardHandler))
	_, err := svc.PendingOrder(context.Background(), "SO-2025-099")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
