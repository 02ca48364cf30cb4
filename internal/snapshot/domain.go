// Package snapshot copies mutable master records into immutable
// transaction-time records referenced by invoices. Once an invoice points at a
// snapshot, later master edits never alter it; re-syncing the same master
// updates the snapshot row in place so only future invoices see the change.
package snapshot

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyType distinguishes the two party snapshot flavours.
type PartyType string

const (
	PartyCustomer PartyType = "CUSTOMER"
	PartySupplier PartyType = "SUPPLIER"
)

// Defaults applied when a master record omits address fields, so invoice
// rendering never encounters an empty required field.
const (
	DefaultAddress = "N/A"
	DefaultState   = "N/A"
	DefaultPincode = "000000"
)

// MasterRecord is the canonical shape every master table is mapped into at
// the service boundary before it reaches sync logic.
type MasterRecord struct {
	MasterID int64
	Name     string
	GSTIN    string
	Address  string
	State    string
	Pincode  string
	// Product-only fields.
	HSNCode string
	Unit    string
	Rate    decimal.Decimal
	TaxRate decimal.Decimal
}

// PartySnapshot is an invoice-party row.
type PartySnapshot struct {
	ID        int64     `json:"id"`
	Type      PartyType `json:"type"`
	MasterID  int64     `json:"master_id"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin"`
	Address   string    `json:"address"`
	State     string    `json:"state"`
	StateCode string    `json:"state_code"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductSnapshot is an invoice-product row.
type ProductSnapshot struct {
	ID        int64           `json:"id"`
	MasterID  int64           `json:"master_id"`
	Name      string          `json:"name"`
	HSNCode   string          `json:"hsn_code"`
	Unit      UOM             `json:"unit"`
	Rate      decimal.Decimal `json:"rate"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
