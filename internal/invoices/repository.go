package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatadesk/khatadesk/internal/fiscal"
	"github.com/khatadesk/khatadesk/internal/platform/db"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// Sentinel repository errors.
var (
	ErrNotFound        = errors.New("invoices: not found")
	ErrOrderNotFound   = errors.New("invoices: sales order not found")
	ErrDuplicateNumber = errors.New("invoices: duplicate invoice number")
)

// Repository persists invoice headers and line items. The sales and purchase
// families share one implementation parameterised by table set.
type Repository interface {
	Create(ctx context.Context, inv Invoice, items []LineItem) (*Invoice, error)
	Get(ctx context.Context, kind DocKind, id int64) (*Invoice, error)
	List(ctx context.Context, kind DocKind, req ListInvoicesRequest) ([]Invoice, error)
	UpdateHeader(ctx context.Context, kind DocKind, id int64, updates map[string]any) error
	Delete(ctx context.Context, kind DocKind, id int64) error
	PeekSerial(ctx context.Context, kind DocKind, shortFY string) (int, error)
	FindSalesOrder(ctx context.Context, number string) (int64, error)
}

type tableSet struct {
	invoices string
	items    string
	payments string
}

func tablesFor(kind DocKind) tableSet {
	if kind == KindPurchase {
		return tableSet{
			invoices: "purchase_invoices",
			items:    "purchase_invoice_items",
			payments: "purchase_invoice_payments",
		}
	}
	return tableSet{
		invoices: "sales_invoices",
		items:    "sales_invoice_items",
		payments: "sales_invoice_payments",
	}
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const headerColumns = `
	id, number, fiscal_year, invoice_date, due_date, party_id,
	sales_order_id, sales_order_number,
	subtotal, cgst_amount, sgst_amount, igst_amount, other_charges, round_off,
	total, paid_amount, balance_due, status, payment_status, notes,
	created_by, created_at, updated_at`

// Create inserts the header, its items and the consumed sequence increment in
// one transaction. When the number was allocator-assigned and collides with a
// pre-existing manually numbered document, the whole transaction is retried
// once with a freshly advanced serial; manual collisions surface as
// ErrDuplicateNumber.
func (r *repository) Create(ctx context.Context, inv Invoice, items []LineItem) (*Invoice, error) {
	manual := inv.Number != ""
	t := tablesFor(inv.Kind)

	attempt := func() (*Invoice, error) {
		created := inv
		err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
			if !manual {
				serial, err := nextSerial(ctx, tx, t, inv.Kind, inv.FiscalYear)
				if err != nil {
					return err
				}
				created.Number = FormatNumber(inv.Kind, serial, inv.FiscalYear)
			}
			if err := insertHeader(ctx, tx, t, &created); err != nil {
				return err
			}
			created.Items = nil
			for i, item := range items {
				item.InvoiceID = created.ID
				if item.LineOrder == 0 {
					item.LineOrder = i + 1
				}
				if err := insertItem(ctx, tx, t, &item); err != nil {
					return err
				}
				created.Items = append(created.Items, item)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &created, nil
	}

	created, err := attempt()
	if isUniqueViolation(err) && manual {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNumber, inv.Number)
	}
	if isUniqueViolation(err) || isSerializationFailure(err) {
		// Either a legacy manual number sat above the counter, or a
		// concurrent allocation touched the sequence row first. One fresh
		// attempt advances past both.
		created, err = attempt()
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: allocation collided twice", ErrDuplicateNumber)
		}
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertHeader(ctx context.Context, tx pgx.Tx, t tableSet, inv *Invoice) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			number, fiscal_year, invoice_date, due_date, party_id,
			sales_order_id, sales_order_number,
			subtotal, cgst_amount, sgst_amount, igst_amount, other_charges, round_off,
			total, paid_amount, balance_due, status, payment_status, notes,
			created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,NOW(),NOW())
		RETURNING id, created_at, updated_at`, t.invoices)

	var dueDate pgtype.Date
	if inv.DueDate != nil {
		dueDate = pgtype.Date{Time: *inv.DueDate, Valid: true}
	}
	var soID pgtype.Int8
	if inv.SalesOrderID != nil {
		soID = pgtype.Int8{Int64: *inv.SalesOrderID, Valid: true}
	}

	return tx.QueryRow(ctx, query,
		inv.Number, inv.FiscalYear, inv.InvoiceDate, dueDate, inv.PartyID,
		soID, textOrNull(inv.SalesOrderNumber),
		db.Numeric(inv.Subtotal), db.Numeric(inv.CGSTAmount), db.Numeric(inv.SGSTAmount),
		db.Numeric(inv.IGSTAmount), db.Numeric(inv.OtherCharges), db.Numeric(inv.RoundOff),
		db.Numeric(inv.Total), db.Numeric(inv.PaidAmount), db.Numeric(inv.BalanceDue),
		inv.Status, inv.PaymentStatus, textOrNull(inv.Notes),
		inv.CreatedBy,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

func insertItem(ctx context.Context, tx pgx.Tx, t tableSet, item *LineItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			invoice_id, product_id, description, quantity, unit, rate, amount, line_order
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`, t.items)

	var productID pgtype.Int8
	if item.ProductID != nil {
		productID = pgtype.Int8{Int64: *item.ProductID, Valid: true}
	}
	return tx.QueryRow(ctx, query,
		item.InvoiceID, productID, item.Description,
		db.Numeric(item.Quantity), item.Unit, db.Numeric(item.Rate), db.Numeric(item.Amount),
		item.LineOrder,
	).Scan(&item.ID)
}

// nextSerial seeds the sequence row from existing documents when absent, then
// atomically increments it. The allocating transaction holds the row lock
// acquired by the UPDATE until commit, which serialises concurrent creates in
// the same (kind, fiscal year) scope.
func nextSerial(ctx context.Context, tx pgx.Tx, t tableSet, kind DocKind, shortFY string) (int, error) {
	seed, err := maxSerial(ctx, tx, t, kind, shortFY)
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO invoice_sequences (doc_kind, fiscal_year, counter, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (doc_kind, fiscal_year) DO NOTHING`,
		kind, shortFY, seed)
	if err != nil {
		return 0, err
	}

	var serial int
	err = tx.QueryRow(ctx, `
		UPDATE invoice_sequences
		SET counter = counter + 1, updated_at = NOW()
		WHERE doc_kind = $1 AND fiscal_year = $2
		RETURNING counter`,
		kind, shortFY,
	).Scan(&serial)
	if err != nil {
		return 0, err
	}
	return serial, nil
}

// maxSerial scans existing document numbers in the fiscal year (stored in
// either long or short form by legacy rows) and returns the highest serial.
func maxSerial(ctx context.Context, q db.DBTX, t tableSet, kind DocKind, shortFY string) (int, error) {
	longFY, err := fiscal.Long(shortFY)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`SELECT number FROM %s WHERE fiscal_year IN ($1, $2)`, t.invoices)
	rows, err := q.Query(ctx, query, shortFY, longFY)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	maxFound := 0
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, err
		}
		if serial, ok := SerialIn(number, kind, shortFY); ok && serial > maxFound {
			maxFound = serial
		}
	}
	return maxFound, rows.Err()
}

// PeekSerial previews the next serial without consuming it.
func (r *repository) PeekSerial(ctx context.Context, kind DocKind, shortFY string) (int, error) {
	var counter int
	err := r.pool.QueryRow(ctx, `
		SELECT counter FROM invoice_sequences WHERE doc_kind = $1 AND fiscal_year = $2`,
		kind, shortFY,
	).Scan(&counter)
	if errors.Is(err, pgx.ErrNoRows) {
		counter, err = maxSerial(ctx, r.pool, tablesFor(kind), kind, shortFY)
	}
	if err != nil {
		return 0, err
	}
	return counter + 1, nil
}

func (r *repository) Get(ctx context.Context, kind DocKind, id int64) (*Invoice, error) {
	t := tablesFor(kind)
	query := fmt.Sprintf(`
		SELECT %s, (SELECT name FROM invoice_parties p WHERE p.id = i.party_id) AS party_name
		FROM %s i
		WHERE i.id = $1`, prefixColumns("i", headerColumns), t.invoices)

	inv, err := scanHeader(r.pool.QueryRow(ctx, query, id), kind)
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, t, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *repository) listItems(ctx context.Context, t tableSet, invoiceID int64) ([]LineItem, error) {
	query := fmt.Sprintf(`
		SELECT id, invoice_id, product_id, description, quantity, unit, rate, amount, line_order
		FROM %s
		WHERE invoice_id = $1
		ORDER BY line_order, id`, t.items)

	rows, err := r.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var item LineItem
		var productID pgtype.Int8
		var quantity, rate, amount pgtype.Numeric
		err := rows.Scan(
			&item.ID, &item.InvoiceID, &productID, &item.Description,
			&quantity, &item.Unit, &rate, &amount, &item.LineOrder,
		)
		if err != nil {
			return nil, err
		}
		if productID.Valid {
			item.ProductID = &productID.Int64
		}
		item.Quantity = db.Decimal(quantity)
		item.Rate = db.Decimal(rate)
		item.Amount = db.Decimal(amount)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) List(ctx context.Context, kind DocKind, req ListInvoicesRequest) ([]Invoice, error) {
	t := tablesFor(kind)
	query := fmt.Sprintf(`
		SELECT %s, (SELECT name FROM invoice_parties p WHERE p.id = i.party_id) AS party_name
		FROM %s i
		WHERE 1=1`, prefixColumns("i", headerColumns), t.invoices)

	args := []any{}
	argNum := 1
	if req.PartyID > 0 {
		query += fmt.Sprintf(" AND i.party_id = $%d", argNum)
		args = append(args, req.PartyID)
		argNum++
	}
	if req.PaymentStatus != "" {
		query += fmt.Sprintf(" AND i.payment_status = $%d", argNum)
		args = append(args, req.PaymentStatus)
		argNum++
	}
	if !req.FromDate.IsZero() {
		query += fmt.Sprintf(" AND i.invoice_date >= $%d", argNum)
		args = append(args, req.FromDate)
		argNum++
	}
	if !req.ToDate.IsZero() {
		query += fmt.Sprintf(" AND i.invoice_date <= $%d", argNum)
		args = append(args, req.ToDate)
		argNum++
	}
	query += " ORDER BY i.invoice_date DESC, i.id DESC"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanHeader(rows, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// UpdateHeader applies a partial column update. Callers own recomputing any
// derived fields they touch; the repository only persists what it is given.
func (r *repository) UpdateHeader(ctx context.Context, kind DocKind, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	t := tablesFor(kind)

	// Fixed column order keeps the statement deterministic.
	columns := []string{
		"invoice_date", "due_date", "other_charges", "round_off", "total",
		"paid_amount", "balance_due", "status", "payment_status", "notes",
	}
	query := fmt.Sprintf("UPDATE %s SET updated_at = NOW()", t.invoices)
	var args []any
	argNum := 1
	for _, col := range columns {
		v, ok := updates[col]
		if !ok {
			continue
		}
		query += fmt.Sprintf(", %s = $%d", col, argNum)
		args = append(args, v)
		argNum++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the invoice with its items and payments in one transaction.
func (r *repository) Delete(ctx context.Context, kind DocKind, id int64) error {
	t := tablesFor(kind)
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE invoice_id = $1", t.payments), id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE invoice_id = $1", t.items), id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.invoices), id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repository) FindSalesOrder(ctx context.Context, number string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM sales_orders WHERE order_number = $1`, number).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrOrderNotFound, number)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// --- scanning helpers ---

func scanHeader(row pgx.Row, kind DocKind) (*Invoice, error) {
	var inv Invoice
	var dueDate pgtype.Date
	var soID pgtype.Int8
	var soNumber, notes, partyName pgtype.Text
	var subtotal, cgst, sgst, igst, other, roundOff, total, paid, balance pgtype.Numeric

	err := row.Scan(
		&inv.ID, &inv.Number, &inv.FiscalYear, &inv.InvoiceDate, &dueDate, &inv.PartyID,
		&soID, &soNumber,
		&subtotal, &cgst, &sgst, &igst, &other, &roundOff,
		&total, &paid, &balance, &inv.Status, &inv.PaymentStatus, &notes,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
		&partyName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	inv.Kind = kind
	if dueDate.Valid {
		d := dueDate.Time
		inv.DueDate = &d
	}
	if soID.Valid {
		inv.SalesOrderID = &soID.Int64
	}
	if soNumber.Valid {
		inv.SalesOrderNumber = &soNumber.String
	}
	if notes.Valid {
		inv.Notes = &notes.String
	}
	inv.PartyName = partyName.String
	inv.Subtotal = db.Decimal(subtotal)
	inv.CGSTAmount = db.Decimal(cgst)
	inv.SGSTAmount = db.Decimal(sgst)
	inv.IGSTAmount = db.Decimal(igst)
	inv.OtherCharges = db.Decimal(other)
	inv.RoundOff = db.Decimal(roundOff)
	inv.Total = db.Decimal(total)
	inv.PaidAmount = db.Decimal(paid)
	inv.BalanceDue = db.Decimal(balance)
	return &inv, nil
}

func prefixColumns(alias, cols string) string {
	out := ""
	for i, c := range splitColumns(cols) {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + c
	}
	return out
}

func splitColumns(cols string) []string {
	var out []string
	field := ""
	for _, r := range cols {
		switch r {
		case ',':
			out = append(out, field)
			field = ""
		case ' ', '\n', '\t':
		default:
			field += string(r)
		}
	}
	if field != "" {
		out = append(out, field)
	}
	return out
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

// MapError translates repository sentinels onto the HTTP error taxonomy.
func MapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrOrderNotFound):
		return fmt.Errorf("%w: %s", httpx.ErrNotFound, err)
	case errors.Is(err, ErrDuplicateNumber):
		return fmt.Errorf("%w: %s", httpx.ErrDuplicateNumber, err)
	default:
		return err
	}
}
