package snapshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/khatadesk/khatadesk/internal/masterdata"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

// Service implements the snapshot sync contracts on top of the master tables.
type Service struct {
	repo    Repository
	masters masterdata.Repository
}

// NewService builds a Service instance.
func NewService(repo Repository, masters masterdata.Repository) *Service {
	return &Service{repo: repo, masters: masters}
}

// SyncParty upserts the party snapshot for a normalised master record.
// A master without a usable name fails fast instead of producing an
// "Unknown" snapshot that would corrupt later invoice display.
func (s *Service) SyncParty(ctx context.Context, ptype PartyType, rec MasterRecord) (*PartySnapshot, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("%w: party master %d has no name", httpx.ErrInvalidMaster, rec.MasterID)
	}
	if rec.MasterID <= 0 {
		return nil, fmt.Errorf("%w: party master id required", httpx.ErrInvalidMaster)
	}

	p := PartySnapshot{
		Type:      ptype,
		MasterID:  rec.MasterID,
		Name:      strings.TrimSpace(rec.Name),
		GSTIN:     strings.ToUpper(strings.TrimSpace(rec.GSTIN)),
		Address:   orDefault(rec.Address, DefaultAddress),
		State:     orDefault(rec.State, DefaultState),
		Pincode:   orDefault(rec.Pincode, DefaultPincode),
		StateCode: GSTStateCode(rec.State),
	}
	return s.repo.UpsertParty(ctx, p)
}

// SyncProduct upserts the product snapshot for a normalised master record.
func (s *Service) SyncProduct(ctx context.Context, rec MasterRecord) (*ProductSnapshot, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("%w: product master %d has no name", httpx.ErrInvalidMaster, rec.MasterID)
	}
	if rec.MasterID <= 0 {
		return nil, fmt.Errorf("%w: product master id required", httpx.ErrInvalidMaster)
	}

	p := ProductSnapshot{
		MasterID: rec.MasterID,
		Name:     strings.TrimSpace(rec.Name),
		HSNCode:  strings.TrimSpace(rec.HSNCode),
		Unit:     NormalizeUOM(rec.Unit),
		Rate:     rec.Rate,
		TaxRate:  rec.TaxRate,
	}
	return s.repo.UpsertProduct(ctx, p)
}

// SyncCustomerByID loads a customer master and syncs its snapshot.
func (s *Service) SyncCustomerByID(ctx context.Context, masterID int64) (*PartySnapshot, error) {
	c, err := s.masters.GetCustomer(ctx, masterID)
	if err != nil {
		return nil, fmt.Errorf("load customer %d: %w", masterID, err)
	}
	return s.SyncParty(ctx, PartyCustomer, MasterRecord{
		MasterID: c.ID,
		Name:     c.Name,
		GSTIN:    c.GSTIN,
		Address:  c.Address,
		State:    c.State,
		Pincode:  c.Pincode,
	})
}

// SyncSupplierByID loads a supplier master and syncs its snapshot.
func (s *Service) SyncSupplierByID(ctx context.Context, masterID int64) (*PartySnapshot, error) {
	sup, err := s.masters.GetSupplier(ctx, masterID)
	if err != nil {
		return nil, fmt.Errorf("load supplier %d: %w", masterID, err)
	}
	return s.SyncParty(ctx, PartySupplier, MasterRecord{
		MasterID: sup.ID,
		Name:     sup.Name,
		GSTIN:    sup.GSTIN,
		Address:  sup.Address,
		State:    sup.State,
		Pincode:  sup.Pincode,
	})
}

// SyncProductByID loads a product master and syncs its snapshot.
func (s *Service) SyncProductByID(ctx context.Context, masterID int64) (*ProductSnapshot, error) {
	p, err := s.masters.GetProduct(ctx, masterID)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", masterID, err)
	}
	return s.SyncProduct(ctx, MasterRecord{
		MasterID: p.ID,
		Name:     p.Name,
		HSNCode:  p.HSNCode,
		Unit:     p.Unit,
		Rate:     p.Rate,
		TaxRate:  p.TaxRate,
	})
}

// GetParty resolves an existing party snapshot by id.
func (s *Service) GetParty(ctx context.Context, id int64) (*PartySnapshot, error) {
	return s.repo.GetParty(ctx, id)
}

// GetProduct resolves an existing product snapshot by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*ProductSnapshot, error) {
	return s.repo.GetProduct(ctx, id)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
