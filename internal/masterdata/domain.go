// Package masterdata exposes read-only access to the master tables. The
// invoice core never mutates masters; it only reads them when snapshotting.
package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer master record.
type Customer struct {
	ID        int64
	Name      string
	GSTIN     string
	Address   string
	State     string
	Pincode   string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Supplier master record.
type Supplier struct {
	ID        int64
	Name      string
	GSTIN     string
	Address   string
	State     string
	Pincode   string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product master record.
type Product struct {
	ID        int64
	Name      string
	HSNCode   string
	Unit      string
	Rate      decimal.Decimal
	TaxRate   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
