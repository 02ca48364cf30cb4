package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatadesk/khatadesk/internal/invoices"
	"github.com/khatadesk/khatadesk/internal/platform/db"
)

// ErrInvoiceNotFound reports a payment against a missing invoice.
var ErrInvoiceNotFound = errors.New("payments: invoice not found")

// Repository persists payments and the invoice header recompute they entail.
type Repository interface {
	Record(ctx context.Context, p Payment) (*Receipt, error)
	ListByInvoice(ctx context.Context, kind invoices.DocKind, invoiceID int64) ([]Payment, error)
}

type tableSet struct {
	invoices string
	payments string
}

func tablesFor(kind invoices.DocKind) tableSet {
	if kind == invoices.KindPurchase {
		return tableSet{invoices: "purchase_invoices", payments: "purchase_invoice_payments"}
	}
	return tableSet{invoices: "sales_invoices", payments: "sales_invoice_payments"}
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Record inserts the payment and recomputes the invoice header in one
// serializable transaction. The header row is locked first, so concurrent
// payments against the same invoice serialise and each recompute sees every
// committed payment. The loser of a lock race wakes into a serialization
// failure; one fresh attempt then sees the winner's committed state.
func (r *repository) Record(ctx context.Context, p Payment) (*Receipt, error) {
	return recordWithRetry(func() (*Receipt, error) {
		return r.record(ctx, p)
	})
}

func (r *repository) record(ctx context.Context, p Payment) (*Receipt, error) {
	t := tablesFor(p.Kind)
	var receipt Receipt

	err := db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		var total pgtype.Numeric
		err := tx.QueryRow(ctx,
			fmt.Sprintf(`SELECT number, total FROM %s WHERE id = $1 FOR UPDATE`, t.invoices),
			p.InvoiceID,
		).Scan(&receipt.InvoiceNumber, &total)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: id %d", ErrInvoiceNotFound, p.InvoiceID)
		}
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO %s (invoice_id, receipt_number, amount, payment_date, mode, reference, notes, created_by, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
			RETURNING id, created_at`, t.payments),
			p.InvoiceID, p.ReceiptNumber, db.Numeric(p.Amount), p.PaymentDate,
			p.Mode, p.Reference, p.Notes, p.CreatedBy,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return err
		}

		var paidSum pgtype.Numeric
		err = tx.QueryRow(ctx,
			fmt.Sprintf(`SELECT COALESCE(SUM(amount), 0) FROM %s WHERE invoice_id = $1`, t.payments),
			p.InvoiceID,
		).Scan(&paidSum)
		if err != nil {
			return err
		}

		receipt.PaidAmount = db.Decimal(paidSum)
		receipt.BalanceDue, receipt.PaymentStatus = Recompute(db.Decimal(total), receipt.PaidAmount)

		_, err = tx.Exec(ctx, fmt.Sprintf(`
			UPDATE %s
			SET paid_amount = $1, balance_due = $2, payment_status = $3, updated_at = NOW()
			WHERE id = $4`, t.invoices),
			db.Numeric(receipt.PaidAmount), db.Numeric(receipt.BalanceDue), receipt.PaymentStatus, p.InvoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	receipt.Payment = p
	return &receipt, nil
}

// recordWithRetry reruns the recording transaction once when it lost a
// serialization race. Every other error passes straight through.
func recordWithRetry(attempt func() (*Receipt, error)) (*Receipt, error) {
	receipt, err := attempt()
	if isSerializationFailure(err) {
		receipt, err = attempt()
	}
	return receipt, err
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func (r *repository) ListByInvoice(ctx context.Context, kind invoices.DocKind, invoiceID int64) ([]Payment, error) {
	t := tablesFor(kind)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, invoice_id, receipt_number, amount, payment_date, mode, reference, notes, created_by, created_at
		FROM %s
		WHERE invoice_id = $1
		ORDER BY payment_date, created_at, id`, t.payments),
		invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		var amount pgtype.Numeric
		err := rows.Scan(
			&p.ID, &p.InvoiceID, &p.ReceiptNumber, &amount, &p.PaymentDate,
			&p.Mode, &p.Reference, &p.Notes, &p.CreatedBy, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.Kind = kind
		p.Amount = db.Decimal(amount)
		out = append(out, p)
	}
	return out, rows.Err()
}
