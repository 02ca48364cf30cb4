package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatadesk/khatadesk/internal/platform/db"
)

// ErrNotFound indicates a missing master record.
var ErrNotFound = errors.New("masterdata: not found")

// Repository reads master tables.
type Repository interface {
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	GetSupplier(ctx context.Context, id int64) (*Supplier, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a read-only masterdata repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	const query = `
		SELECT id, name, gstin, address, state, pincode, phone, email, created_at, updated_at
		FROM customers
		WHERE id = $1`

	var c Customer
	var gstin, address, state, pincode, phone, email pgtype.Text
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &gstin, &address, &state, &pincode, &phone, &email,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.GSTIN = gstin.String
	c.Address = address.String
	c.State = state.String
	c.Pincode = pincode.String
	c.Phone = phone.String
	c.Email = email.String
	return &c, nil
}

func (r *repository) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	const query = `
		SELECT id, name, gstin, address, state, pincode, phone, email, created_at, updated_at
		FROM suppliers
		WHERE id = $1`

	var s Supplier
	var gstin, address, state, pincode, phone, email pgtype.Text
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &gstin, &address, &state, &pincode, &phone, &email,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.GSTIN = gstin.String
	s.Address = address.String
	s.State = state.String
	s.Pincode = pincode.String
	s.Phone = phone.String
	s.Email = email.String
	return &s, nil
}

func (r *repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	const query = `
		SELECT id, name, hsn_code, unit, rate, tax_rate, created_at, updated_at
		FROM products
		WHERE id = $1`

	var p Product
	var hsn, unit pgtype.Text
	var rate, taxRate pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &hsn, &unit, &rate, &taxRate, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.HSNCode = hsn.String
	p.Unit = unit.String
	p.Rate = db.Decimal(rate)
	p.TaxRate = db.Decimal(taxRate)
	return &p, nil
}
