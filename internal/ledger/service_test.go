package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/khatadesk/khatadesk/internal/invoices"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

type memoryRepo struct {
	names  map[int64]string
	events map[int64][]Event
}

func (m *memoryRepo) PartyName(ctx context.Context, partyID int64) (string, error) {
	name, ok := m.names[partyID]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrPartyNotFound, partyID)
	}
	return name, nil
}

func (m *memoryRepo) PartyEvents(ctx context.Context, partyID int64) ([]Event, error) {
	return m.events[partyID], nil
}

func (m *memoryRepo) InvoiceParty(ctx context.Context, kind invoices.DocKind, invoiceID int64) (int64, error) {
	for partyID, events := range m.events {
		for _, e := range events {
			if e.Kind == kind && e.SourceType == SourceInvoice && e.SourceID == invoiceID {
				return partyID, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: invoice %d", ErrPartyNotFound, invoiceID)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, nil, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return date(2026, 2, 1) }
	return svc
}

func TestPartyStatementRunningBalance(t *testing.T) {
	repo := &memoryRepo{
		names: map[int64]string{7: "Sharma Traders"},
		events: map[int64][]Event{
			7: {
				{
					SourceType: SourceInvoice, SourceID: 1, Kind: invoices.KindSales,
					Date: date(2026, 1, 1), CreatedAt: date(2026, 1, 1),
					Number: "INV/01/25-26", Amount: decimal.NewFromInt(1000),
					PaymentStatus: invoices.PaymentPartial, BalanceDue: decimal.NewFromInt(700),
				},
				{
					SourceType: SourcePayment, SourceID: 11, InvoiceRef: 1, Kind: invoices.KindSales,
					Date: date(2026, 1, 10), CreatedAt: date(2026, 1, 10),
					Number: "RCPT-AB12CD34", Amount: decimal.NewFromInt(300),
				},
			},
		},
	}
	svc := newTestService(repo)

	st, err := svc.PartyStatement(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Sharma Traders", st.PartyName)
	require.Len(t, st.Entries, 2)
	require.True(t, st.Entries[0].Balance.Equal(decimal.NewFromInt(1000)), st.Entries[0].Balance.String())
	require.True(t, st.Entries[1].Balance.Equal(decimal.NewFromInt(700)), st.Entries[1].Balance.String())
	require.True(t, st.TotalInvoiced.Equal(decimal.NewFromInt(1000)))
	require.True(t, st.TotalPaid.Equal(decimal.NewFromInt(300)))
	require.True(t, st.Balance.Equal(decimal.NewFromInt(700)))
}

func TestPartyStatementUnknownParty(t *testing.T) {
	svc := newTestService(&memoryRepo{names: map[int64]string{}})
	_, err := svc.PartyStatement(context.Background(), 99)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestStatementOrderingTiebreak(t *testing.T) {
	sameDay := date(2026, 1, 5)
	repo := &memoryRepo{
		names: map[int64]string{7: "Sharma Traders"},
		events: map[int64][]Event{
			7: {
				// Same date and creation time; source id decides.
				{SourceType: SourcePayment, SourceID: 9, InvoiceRef: 2, Kind: invoices.KindSales,
					Date: sameDay, CreatedAt: sameDay, Number: "RCPT-X", Amount: decimal.NewFromInt(50)},
				{SourceType: SourceInvoice, SourceID: 2, Kind: invoices.KindSales,
					Date: sameDay, CreatedAt: sameDay, Number: "INV/02/25-26", Amount: decimal.NewFromInt(200),
					PaymentStatus: invoices.PaymentPartial, BalanceDue: decimal.NewFromInt(150)},
			},
		},
	}
	svc := newTestService(repo)

	st, err := svc.PartyStatement(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, SourceInvoice, st.Entries[0].SourceType)
	require.Equal(t, SourcePayment, st.Entries[1].SourceType)
	require.True(t, st.Balance.Equal(decimal.NewFromInt(150)))
}

func TestStatementOverdueComputedAtReadTime(t *testing.T) {
	due := date(2026, 1, 15)
	paidDue := date(2026, 1, 20)
	repo := &memoryRepo{
		names: map[int64]string{7: "Sharma Traders"},
		events: map[int64][]Event{
			7: {
				{SourceType: SourceInvoice, SourceID: 1, Kind: invoices.KindSales,
					Date: date(2026, 1, 1), CreatedAt: date(2026, 1, 1), Number: "INV/01/25-26",
					Amount: decimal.NewFromInt(1000), DueDate: &due,
					PaymentStatus: invoices.PaymentPartial, BalanceDue: decimal.NewFromInt(700)},
				// Past due but settled; never counts as overdue.
				{SourceType: SourceInvoice, SourceID: 2, Kind: invoices.KindSales,
					Date: date(2026, 1, 2), CreatedAt: date(2026, 1, 2), Number: "INV/02/25-26",
					Amount: decimal.NewFromInt(500), DueDate: &paidDue,
					PaymentStatus: invoices.PaymentPaid, BalanceDue: decimal.Zero},
			},
		},
	}
	svc := newTestService(repo)

	st, err := svc.PartyStatement(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 1, st.OverdueCount)
	require.True(t, st.OverdueAmount.Equal(decimal.NewFromInt(700)), st.OverdueAmount.String())
}

func TestInvoiceStatementCoversWholeParty(t *testing.T) {
	repo := &memoryRepo{
		names: map[int64]string{7: "Sharma Traders"},
		events: map[int64][]Event{
			7: {
				{SourceType: SourceInvoice, SourceID: 1, Kind: invoices.KindSales,
					Date: date(2026, 1, 1), CreatedAt: date(2026, 1, 1), Number: "INV/01/25-26",
					Amount: decimal.NewFromInt(1000), PaymentStatus: invoices.PaymentPartial,
					BalanceDue: decimal.NewFromInt(700)},
				{SourceType: SourceInvoice, SourceID: 2, Kind: invoices.KindSales,
					Date: date(2026, 1, 3), CreatedAt: date(2026, 1, 3), Number: "INV/02/25-26",
					Amount: decimal.NewFromInt(500), PaymentStatus: invoices.PaymentPending,
					BalanceDue: decimal.NewFromInt(500)},
				{SourceType: SourcePayment, SourceID: 31, InvoiceRef: 1, Kind: invoices.KindSales,
					Date: date(2026, 1, 8), CreatedAt: date(2026, 1, 8), Number: "RCPT-Y",
					Amount: decimal.NewFromInt(300)},
			},
		},
	}
	svc := newTestService(repo)

	// Entering through one invoice still yields the partner's full ledger,
	// including the sibling invoice.
	st, err := svc.InvoiceStatement(context.Background(), invoices.KindSales, 1)
	require.NoError(t, err)
	require.Equal(t, int64(7), st.PartyID)
	require.Equal(t, "Sharma Traders", st.PartyName)
	require.Len(t, st.Entries, 3)
	require.True(t, st.TotalInvoiced.Equal(decimal.NewFromInt(1500)), st.TotalInvoiced.String())
	require.True(t, st.TotalPaid.Equal(decimal.NewFromInt(300)))
	require.True(t, st.Balance.Equal(decimal.NewFromInt(1200)))

	_, err = svc.InvoiceStatement(context.Background(), invoices.KindSales, 999)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
