package snapshot

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/khatadesk/khatadesk/internal/masterdata"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
)

type partyKey struct {
	ptype    PartyType
	masterID int64
}

type memoryRepo struct {
	parties      map[partyKey]*PartySnapshot
	products     map[int64]*ProductSnapshot
	nextID       int64
	partyByID    map[int64]*PartySnapshot
	productsByID map[int64]*ProductSnapshot
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		parties:      make(map[partyKey]*PartySnapshot),
		products:     make(map[int64]*ProductSnapshot),
		partyByID:    make(map[int64]*PartySnapshot),
		productsByID: make(map[int64]*ProductSnapshot),
	}
}

func (r *memoryRepo) UpsertParty(ctx context.Context, p PartySnapshot) (*PartySnapshot, error) {
	key := partyKey{ptype: p.Type, masterID: p.MasterID}
	if existing, ok := r.parties[key]; ok {
		p.ID = existing.ID
	} else {
		r.nextID++
		p.ID = r.nextID
	}
	stored := p
	r.parties[key] = &stored
	r.partyByID[p.ID] = &stored
	return &stored, nil
}

func (r *memoryRepo) UpsertProduct(ctx context.Context, p ProductSnapshot) (*ProductSnapshot, error) {
	if existing, ok := r.products[p.MasterID]; ok {
		p.ID = existing.ID
	} else {
		r.nextID++
		p.ID = r.nextID
	}
	stored := p
	r.products[p.MasterID] = &stored
	r.productsByID[p.ID] = &stored
	return &stored, nil
}

func (r *memoryRepo) GetParty(ctx context.Context, id int64) (*PartySnapshot, error) {
	p, ok := r.partyByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) GetProduct(ctx context.Context, id int64) (*ProductSnapshot, error) {
	p, ok := r.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

type memoryMasters struct {
	customers map[int64]*masterdata.Customer
	suppliers map[int64]*masterdata.Supplier
	products  map[int64]*masterdata.Product
}

func (m *memoryMasters) GetCustomer(ctx context.Context, id int64) (*masterdata.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, masterdata.ErrNotFound
	}
	return c, nil
}

func (m *memoryMasters) GetSupplier(ctx context.Context, id int64) (*masterdata.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, masterdata.ErrNotFound
	}
	return s, nil
}

func (m *memoryMasters) GetProduct(ctx context.Context, id int64) (*masterdata.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, masterdata.ErrNotFound
	}
	return p, nil
}

func TestSyncPartyAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryMasters{})

	p, err := svc.SyncParty(ctx, PartyCustomer, MasterRecord{
		MasterID: 7,
		Name:     "  Sharma Traders ",
	})
	require.NoError(t, err)
	require.Equal(t, "Sharma Traders", p.Name)
	require.Equal(t, DefaultAddress, p.Address)
	require.Equal(t, DefaultState, p.State)
	require.Equal(t, DefaultPincode, p.Pincode)
	require.Equal(t, UnknownStateCode, p.StateCode)
}

func TestSyncPartyStateCode(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryMasters{})

	p, err := svc.SyncParty(ctx, PartyCustomer, MasterRecord{
		MasterID: 7,
		Name:     "Sharma Traders",
		State:    "MAHARASHTRA",
		Pincode:  "400001",
	})
	require.NoError(t, err)
	require.Equal(t, "27", p.StateCode)
	require.Equal(t, "400001", p.Pincode)
}

func TestSyncPartyIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryMasters{})

	rec := MasterRecord{MasterID: 7, Name: "Sharma Traders", State: "Gujarat"}
	first, err := svc.SyncParty(ctx, PartyCustomer, rec)
	require.NoError(t, err)

	second, err := svc.SyncParty(ctx, PartyCustomer, rec)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.parties, 1)
}

func TestSyncPartyRenameUpdatesSameRow(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryMasters{})

	first, err := svc.SyncParty(ctx, PartyCustomer, MasterRecord{MasterID: 7, Name: "Sharma Traders"})
	require.NoError(t, err)

	renamed, err := svc.SyncParty(ctx, PartyCustomer, MasterRecord{MasterID: 7, Name: "Sharma Trading Co"})
	require.NoError(t, err)
	require.Equal(t, first.ID, renamed.ID)
	require.Equal(t, "Sharma Trading Co", renamed.Name)
	require.Len(t, repo.parties, 1)
}

func TestSyncPartySameNameDifferentTypes(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryMasters{})

	cust, err := svc.SyncParty(ctx, PartyCustomer, MasterRecord{MasterID: 7, Name: "Sharma Traders"})
	require.NoError(t, err)
	supp, err := svc.SyncParty(ctx, PartySupplier, MasterRecord{MasterID: 7, Name: "Sharma Traders"})
	require.NoError(t, err)
	require.NotEqual(t, cust.ID, supp.ID)
}

func TestSyncPartyRejectsMissingName(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryMasters{})

	_, err := svc.SyncParty(ctx, PartyCustomer, MasterRecord{MasterID: 7, Name: "   "})
	require.ErrorIs(t, err, httpx.ErrInvalidMaster)
	require.Empty(t, repo.parties)
}

func TestSyncProductNormalizesUnit(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, &memoryMasters{})

	p, err := svc.SyncProduct(ctx, MasterRecord{
		MasterID: 3,
		Name:     "TMT Bars 12mm",
		HSNCode:  "7214",
		Unit:     "METRIC TON",
		Rate:     decimal.NewFromInt(52000),
		TaxRate:  decimal.NewFromInt(18),
	})
	require.NoError(t, err)
	require.Equal(t, UOMTon, p.Unit)
	require.True(t, p.Rate.Equal(decimal.NewFromInt(52000)))
}

func TestSyncCustomerByID(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	masters := &memoryMasters{customers: map[int64]*masterdata.Customer{
		42: {ID: 42, Name: "Patel Steel", State: "Gujarat", Pincode: "380001"},
	}}
	svc := NewService(repo, masters)

	p, err := svc.SyncCustomerByID(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, PartyCustomer, p.Type)
	require.Equal(t, int64(42), p.MasterID)
	require.Equal(t, "24", p.StateCode)

	_, err = svc.SyncCustomerByID(ctx, 99)
	require.ErrorIs(t, err, masterdata.ErrNotFound)
}
