package snapshot

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/khatadesk/khatadesk/internal/platform/db"
)

// ErrNotFound indicates a missing snapshot row.
var ErrNotFound = errors.New("snapshot: not found")

// Repository persists snapshot rows.
type Repository interface {
	UpsertParty(ctx context.Context, p PartySnapshot) (*PartySnapshot, error)
	UpsertProduct(ctx context.Context, p ProductSnapshot) (*ProductSnapshot, error)
	GetParty(ctx context.Context, id int64) (*PartySnapshot, error)
	GetProduct(ctx context.Context, id int64) (*ProductSnapshot, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(q db.DBTX) Repository {
	return &repository{db: q}
}

// UpsertParty inserts or updates the snapshot for (type, master_id).
// The unique key is the master identity, never the display name, so master
// renames update the same row instead of forking a duplicate.
func (r *repository) UpsertParty(ctx context.Context, p PartySnapshot) (*PartySnapshot, error) {
	const query = `
		INSERT INTO invoice_parties (
			party_type, master_id, name, gstin, address, state, state_code, pincode,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (party_type, master_id) DO UPDATE SET
			name = EXCLUDED.name,
			gstin = EXCLUDED.gstin,
			address = EXCLUDED.address,
			state = EXCLUDED.state,
			state_code = EXCLUDED.state_code,
			pincode = EXCLUDED.pincode,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.Type, p.MasterID, p.Name, p.GSTIN, p.Address, p.State, p.StateCode, p.Pincode,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProduct inserts or updates the snapshot for a product master id.
func (r *repository) UpsertProduct(ctx context.Context, p ProductSnapshot) (*ProductSnapshot, error) {
	const query = `
		INSERT INTO invoice_products (
			master_id, name, hsn_code, unit, rate, tax_rate, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (master_id) DO UPDATE SET
			name = EXCLUDED.name,
			hsn_code = EXCLUDED.hsn_code,
			unit = EXCLUDED.unit,
			rate = EXCLUDED.rate,
			tax_rate = EXCLUDED.tax_rate,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.MasterID, p.Name, p.HSNCode, p.Unit, db.Numeric(p.Rate), db.Numeric(p.TaxRate),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetParty(ctx context.Context, id int64) (*PartySnapshot, error) {
	const query = `
		SELECT id, party_type, master_id, name, gstin, address, state, state_code, pincode,
			created_at, updated_at
		FROM invoice_parties
		WHERE id = $1`

	var p PartySnapshot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Type, &p.MasterID, &p.Name, &p.GSTIN, &p.Address, &p.State,
		&p.StateCode, &p.Pincode, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetProduct(ctx context.Context, id int64) (*ProductSnapshot, error) {
	const query = `
		SELECT id, master_id, name, hsn_code, unit, rate, tax_rate, created_at, updated_at
		FROM invoice_products
		WHERE id = $1`

	var p ProductSnapshot
	var rate, taxRate pgtype.Numeric
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.MasterID, &p.Name, &p.HSNCode, &p.Unit, &rate, &taxRate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Rate = db.Decimal(rate)
	p.TaxRate = db.Decimal(taxRate)
	return &p, nil
}
