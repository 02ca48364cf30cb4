package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khatadesk/khatadesk/internal/invoices"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// Service assembles statements from raw events.
type Service struct {
	repo  Repository
	cache *Cache
	log   *slog.Logger
	now   func() time.Time
}

func NewService(repo Repository, cache *Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log, now: time.Now}
}

// PartyStatement builds the partner ledger. Results are cached briefly; the
// cache is a freshness trade, not a correctness one, since the statement is
// always derivable from source rows.
func (s *Service) PartyStatement(ctx context.Context, partyID int64) (*Statement, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetStatement(ctx, partyID); ok {
			return cached, nil
		}
	}

	name, err := s.repo.PartyName(ctx, partyID)
	if errors.Is(err, ErrPartyNotFound) {
		return nil, fmt.Errorf("%w: %s", httpx.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	events, err := s.repo.PartyEvents(ctx, partyID)
	if err != nil {
		return nil, err
	}

	st := s.fold(events)
	st.PartyID = partyID
	st.PartyName = name

	if s.cache != nil {
		s.cache.PutStatement(ctx, partyID, st)
	}
	return st, nil
}

// InvoiceStatement resolves the invoice's party and returns that partner's
// full statement. The invoice is an entry point, not a filter; the caller
// sees every posting for the party the invoice belongs to.
func (s *Service) InvoiceStatement(ctx context.Context, kind invoices.DocKind, invoiceID int64) (*Statement, error) {
	partyID, err := s.repo.InvoiceParty(ctx, kind, invoiceID)
	if errors.Is(err, ErrPartyNotFound) {
		return nil, fmt.Errorf("%w: %s", httpx.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return s.PartyStatement(ctx, partyID)
}

// fold orders events chronologically and accumulates the running balance.
// Ties on date break by creation time, then source id, so replays are stable.
func (s *Service) fold(events []Event) *Statement {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.SourceID < b.SourceID
	})

	now := s.now()
	st := &Statement{
		Entries:       []Entry{},
		TotalInvoiced: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Balance:       decimal.Zero,
		OverdueAmount: decimal.Zero,
		GeneratedAt:   now,
	}
	for _, e := range events {
		entry := Entry{
			Date:       e.Date,
			SourceType: e.SourceType,
			SourceID:   e.SourceID,
			Kind:       e.Kind,
			Number:     e.Number,
			Credit:     decimal.Zero,
			Debit:      decimal.Zero,
		}
		switch e.SourceType {
		case SourceInvoice:
			entry.Credit = e.Amount
			entry.Description = "Invoice " + e.Number
			st.TotalInvoiced = st.TotalInvoiced.Add(e.Amount)
			if e.DueDate != nil && e.DueDate.Before(now) && e.PaymentStatus != invoices.PaymentPaid {
				st.OverdueCount++
				st.OverdueAmount = st.OverdueAmount.Add(e.BalanceDue)
			}
		case SourcePayment:
			entry.Debit = e.Amount
			entry.Description = "Payment " + e.Number
			st.TotalPaid = st.TotalPaid.Add(e.Amount)
		}
		st.Balance = st.Balance.Add(entry.Credit).Sub(entry.Debit)
		entry.Balance = st.Balance
		st.Entries = append(st.Entries, entry)
	}
	return st
}
