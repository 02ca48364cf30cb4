package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/khatadesk/khatadesk/internal/invoices"
	"github.com/khatadesk/khatadesk/internal/platform/db"
)

// ErrPartyNotFound reports a statement request for an unknown party snapshot.
var ErrPartyNotFound = errors.New("ledger: party not found")

// Repository reads ledger events from the invoice and payment tables.
type Repository interface {
	PartyName(ctx context.Context, partyID int64) (string, error)
	PartyEvents(ctx context.Context, partyID int64) ([]Event, error)
	InvoiceParty(ctx context.Context, kind invoices.DocKind, invoiceID int64) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) PartyName(ctx context.Context, partyID int64) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM invoice_parties WHERE id = $1`, partyID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: id %d", ErrPartyNotFound, partyID)
	}
	return name, err
}

type family struct {
	kind     invoices.DocKind
	invoices string
	payments string
}

var families = []family{
	{invoices.KindSales, "sales_invoices", "sales_invoice_payments"},
	{invoices.KindPurchase, "purchase_invoices", "purchase_invoice_payments"},
}

// PartyEvents returns every invoice and payment touching the party across
// both document families. A party snapshot is typed, so in practice only one
// family yields rows; querying both keeps the read model free of that
// assumption. The two families load concurrently.
func (r *repository) PartyEvents(ctx context.Context, partyID int64) ([]Event, error) {
	results := make([][]Event, len(families))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range families {
		g.Go(func() error {
			invoiceEvents, err := r.invoiceEventsWhere(gctx, f, `i.party_id = $1`, partyID)
			if err != nil {
				return err
			}
			paymentEvents, err := r.paymentEventsWhere(gctx, f,
				fmt.Sprintf(`p.invoice_id IN (SELECT id FROM %s WHERE party_id = $1)`, f.invoices), partyID)
			if err != nil {
				return err
			}
			results[i] = append(invoiceEvents, paymentEvents...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Event
	for _, events := range results {
		out = append(out, events...)
	}
	return out, nil
}

// InvoiceParty resolves the party an invoice belongs to.
func (r *repository) InvoiceParty(ctx context.Context, kind invoices.DocKind, invoiceID int64) (int64, error) {
	var f family
	for _, candidate := range families {
		if candidate.kind == kind {
			f = candidate
		}
	}

	var partyID int64
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT party_id FROM %s WHERE id = $1`, f.invoices), invoiceID,
	).Scan(&partyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: invoice %d", ErrPartyNotFound, invoiceID)
	}
	return partyID, err
}

func (r *repository) invoiceEventsWhere(ctx context.Context, f family, where string, arg any) ([]Event, error) {
	query := fmt.Sprintf(`
		SELECT i.id, i.number, i.invoice_date, i.created_at, i.total, i.balance_due, i.due_date, i.payment_status
		FROM %s i
		WHERE %s`, f.invoices, where)
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e := Event{SourceType: SourceInvoice, Kind: f.kind}
		var total, balanceDue pgtype.Numeric
		var dueDate pgtype.Date
		err := rows.Scan(&e.SourceID, &e.Number, &e.Date, &e.CreatedAt, &total, &balanceDue, &dueDate, &e.PaymentStatus)
		if err != nil {
			return nil, err
		}
		e.Amount = db.Decimal(total)
		e.BalanceDue = db.Decimal(balanceDue)
		if dueDate.Valid {
			d := dueDate.Time
			e.DueDate = &d
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) paymentEventsWhere(ctx context.Context, f family, where string, arg any) ([]Event, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.invoice_id, p.receipt_number, p.payment_date, p.created_at, p.amount
		FROM %s p
		WHERE %s`, f.payments, where)
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e := Event{SourceType: SourcePayment, Kind: f.kind}
		var amount pgtype.Numeric
		var date time.Time
		if err := rows.Scan(&e.SourceID, &e.InvoiceRef, &e.Number, &date, &e.CreatedAt, &amount); err != nil {
			return nil, err
		}
		e.Date = date
		e.Amount = db.Decimal(amount)
		out = append(out, e)
	}
	return out, rows.Err()
}
