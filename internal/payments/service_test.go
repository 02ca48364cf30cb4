package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/khatadesk/khatadesk/internal/invoices"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// memoryRepo mirrors the SQL repository's recompute: lock the header, append
// the payment, derive the new state from the full payment sum.
type memoryRepo struct {
	nextID   int64
	totals   map[int64]decimal.Decimal
	numbers  map[int64]string
	payments map[int64][]Payment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		totals:   map[int64]decimal.Decimal{},
		numbers:  map[int64]string{},
		payments: map[int64][]Payment{},
	}
}

func (m *memoryRepo) addInvoice(id int64, number string, total decimal.Decimal) {
	m.totals[id] = total
	m.numbers[id] = number
}

func (m *memoryRepo) Record(ctx context.Context, p Payment) (*Receipt, error) {
	total, ok := m.totals[p.InvoiceID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrInvoiceNotFound, p.InvoiceID)
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	m.payments[p.InvoiceID] = append(m.payments[p.InvoiceID], p)

	sum := decimal.Zero
	for _, recorded := range m.payments[p.InvoiceID] {
		sum = sum.Add(recorded.Amount)
	}
	balance, status := Recompute(total, sum)
	return &Receipt{
		Payment:       p,
		InvoiceNumber: m.numbers[p.InvoiceID],
		PaidAmount:    sum,
		BalanceDue:    balance,
		PaymentStatus: status,
	}, nil
}

func (m *memoryRepo) ListByInvoice(ctx context.Context, kind invoices.DocKind, invoiceID int64) ([]Payment, error) {
	return m.payments[invoiceID], nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	repo.addInvoice(1, "INV/01/25-26", decimal.NewFromInt(1475))
	return NewService(repo, slog.New(slog.DiscardHandler)), repo
}

func TestRecordPartialThenFull(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Record(ctx, RecordPaymentRequest{
		Kind: "sales", InvoiceID: 1, Amount: decimal.NewFromInt(1000), Mode: "upi",
	}, 0)
	require.NoError(t, err)
	require.Equal(t, invoices.PaymentPartial, first.PaymentStatus)
	require.True(t, first.PaidAmount.Equal(decimal.NewFromInt(1000)))
	require.True(t, first.BalanceDue.Equal(decimal.NewFromInt(475)), first.BalanceDue.String())
	require.Equal(t, ModeUPI, first.Payment.Mode)
	require.True(t, strings.HasPrefix(first.Payment.ReceiptNumber, "RCPT-"))

	second, err := svc.Record(ctx, RecordPaymentRequest{
		Kind: "sales", InvoiceID: 1, Amount: decimal.NewFromInt(475),
	}, 0)
	require.NoError(t, err)
	require.Equal(t, invoices.PaymentPaid, second.PaymentStatus)
	require.True(t, second.BalanceDue.IsZero())
}

func TestRecordOverpaymentGoesNegative(t *testing.T) {
	svc, _ := newTestService()

	receipt, err := svc.Record(context.Background(), RecordPaymentRequest{
		Kind: "sales", InvoiceID: 1, Amount: decimal.NewFromInt(1600),
	}, 0)
	require.NoError(t, err)
	require.Equal(t, invoices.PaymentPaid, receipt.PaymentStatus)
	require.True(t, receipt.BalanceDue.Equal(decimal.NewFromInt(-125)), receipt.BalanceDue.String())
}

func TestRecordValidations(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordPaymentRequest{Kind: "sales", InvoiceID: 1, Amount: decimal.Zero}, 0)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Record(ctx, RecordPaymentRequest{Kind: "sales", InvoiceID: 1, Amount: decimal.NewFromInt(-5)}, 0)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Record(ctx, RecordPaymentRequest{Kind: "journal", InvoiceID: 1, Amount: decimal.NewFromInt(10)}, 0)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Record(ctx, RecordPaymentRequest{Kind: "sales", InvoiceID: 99, Amount: decimal.NewFromInt(10)}, 0)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestParseMode(t *testing.T) {
	require.Equal(t, ModeNEFT, ParseMode("neft"))
	require.Equal(t, ModeBankTransfer, ParseMode("bank_transfer"))
	require.Equal(t, ModeCheque, ParseMode(" CHEQUE "))
	require.Equal(t, ModeOther, ParseMode(""))
	require.Equal(t, ModeOther, ParseMode("barter"))
}
