package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khatadesk/khatadesk/internal/fiscal"
	"github.com/khatadesk/khatadesk/internal/platform/db"
	"github.com/khatadesk/khatadesk/internal/platform/httpx"
	"github.com/khatadesk/khatadesk/internal/snapshot"
)

// Syncer resolves master references into transaction-time snapshots. Satisfied
// by snapshot.Service.
type Syncer interface {
	SyncCustomerByID(ctx context.Context, masterID int64) (*snapshot.PartySnapshot, error)
	SyncSupplierByID(ctx context.Context, masterID int64) (*snapshot.PartySnapshot, error)
	SyncProductByID(ctx context.Context, masterID int64) (*snapshot.ProductSnapshot, error)
	GetParty(ctx context.Context, id int64) (*snapshot.PartySnapshot, error)
	GetProduct(ctx context.Context, id int64) (*snapshot.ProductSnapshot, error)
}

// StatementInvalidator drops a party's cached ledger statement after a write
// that the cache TTL alone would surface too slowly. Satisfied by
// ledger.Cache; nil disables invalidation.
type StatementInvalidator interface {
	Invalidate(ctx context.Context, partyID int64)
}

// Service owns invoice lifecycle rules: snapshot resolution, totals, number
// allocation and the paid/balance recompute on edits.
type Service struct {
	repo       Repository
	snapshots  Syncer
	statements StatementInvalidator
	log        *slog.Logger
}

func NewService(repo Repository, snapshots Syncer, statements StatementInvalidator, log *slog.Logger) *Service {
	return &Service{repo: repo, snapshots: snapshots, statements: statements, log: log}
}

var hundred = decimal.NewFromInt(100)

// Create builds and persists an invoice. Snapshot syncs happen before the
// insert transaction; they are idempotent upserts, so a failed insert leaves
// only refreshed snapshots behind, never partial financial state.
func (s *Service) Create(ctx context.Context, kind DocKind, req CreateInvoiceRequest, userID int64) (*Invoice, error) {
	shortFY, err := s.fiscalYear(req)
	if err != nil {
		return nil, err
	}

	party, err := s.resolveParty(ctx, kind, req)
	if err != nil {
		return nil, err
	}

	inv := Invoice{
		Kind:         kind,
		Number:       req.Number,
		FiscalYear:   shortFY,
		InvoiceDate:  req.InvoiceDate,
		DueDate:      req.DueDate,
		PartyID:      party.ID,
		PartyName:    party.Name,
		OtherCharges: req.OtherCharges,
		RoundOff:     req.RoundOff,
		Notes:        req.Notes,
		Status:       StatusDraft,
		CreatedBy:    userID,
	}
	if req.Submit {
		inv.Status = StatusSubmitted
	}

	if kind == KindSales && req.SalesOrderNumber != nil && *req.SalesOrderNumber != "" {
		soID, err := s.repo.FindSalesOrder(ctx, *req.SalesOrderNumber)
		if err != nil {
			return nil, MapError(err)
		}
		inv.SalesOrderID = &soID
		inv.SalesOrderNumber = req.SalesOrderNumber
	}

	items, subtotal, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	inv.Subtotal = subtotal
	inv.CGSTAmount = taxOn(subtotal, req.CGSTRate)
	inv.SGSTAmount = taxOn(subtotal, req.SGSTRate)
	inv.IGSTAmount = taxOn(subtotal, req.IGSTRate)
	inv.Total = subtotal.
		Add(inv.CGSTAmount).Add(inv.SGSTAmount).Add(inv.IGSTAmount).
		Add(req.OtherCharges).Add(req.RoundOff)
	if !inv.Total.IsPositive() {
		return nil, fmt.Errorf("%w: invoice total must be positive, got %s", httpx.ErrValidation, inv.Total)
	}
	inv.PaidAmount = decimal.Zero
	inv.BalanceDue = inv.Total
	inv.PaymentStatus = PaymentPending

	created, err := s.repo.Create(ctx, inv, items)
	if err != nil {
		return nil, MapError(err)
	}
	s.log.InfoContext(ctx, "invoice created",
		"kind", kind, "number", created.Number, "party_id", created.PartyID, "total", created.Total)
	return created, nil
}

func (s *Service) fiscalYear(req CreateInvoiceRequest) (string, error) {
	if req.FiscalYear != "" {
		short, err := fiscal.Short(req.FiscalYear)
		if err != nil {
			return "", fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		return short, nil
	}
	return fiscal.ForDate(req.InvoiceDate), nil
}

func (s *Service) resolveParty(ctx context.Context, kind DocKind, req CreateInvoiceRequest) (*snapshot.PartySnapshot, error) {
	switch {
	case req.PartySnapshotID != nil:
		party, err := s.snapshots.GetParty(ctx, *req.PartySnapshotID)
		if err != nil {
			return nil, fmt.Errorf("%w: party snapshot %d", httpx.ErrNotFound, *req.PartySnapshotID)
		}
		if party.Type != kind.PartyType() {
			return nil, fmt.Errorf("%w: party snapshot %d is a %s", httpx.ErrValidation, party.ID, party.Type)
		}
		return party, nil
	case req.PartyMasterID != nil:
		if kind == KindPurchase {
			return s.snapshots.SyncSupplierByID(ctx, *req.PartyMasterID)
		}
		return s.snapshots.SyncCustomerByID(ctx, *req.PartyMasterID)
	default:
		return nil, fmt.Errorf("%w: either party_snapshot_id or party_master_id is required", httpx.ErrValidation)
	}
}

func (s *Service) buildItems(ctx context.Context, reqs []LineItemRequest) ([]LineItem, decimal.Decimal, error) {
	var items []LineItem
	subtotal := decimal.Zero
	for i, r := range reqs {
		item := LineItem{
			Description: r.Description,
			Quantity:    r.Quantity,
			Rate:        r.Rate,
			LineOrder:   r.LineOrder,
		}
		if r.Unit != "" {
			item.Unit = snapshot.NormalizeUOM(r.Unit)
		}

		var product *snapshot.ProductSnapshot
		var err error
		switch {
		case r.ProductSnapshotID != nil:
			product, err = s.snapshots.GetProduct(ctx, *r.ProductSnapshotID)
			if err != nil {
				return nil, decimal.Zero, fmt.Errorf("%w: product snapshot %d", httpx.ErrNotFound, *r.ProductSnapshotID)
			}
		case r.ProductMasterID != nil:
			product, err = s.snapshots.SyncProductByID(ctx, *r.ProductMasterID)
			if err != nil {
				return nil, decimal.Zero, err
			}
		case r.Description == "":
			return nil, decimal.Zero, fmt.Errorf("%w: item %d needs a product reference or a description", httpx.ErrValidation, i+1)
		}
		if product != nil {
			item.ProductID = &product.ID
			if item.Description == "" {
				item.Description = product.Name
			}
			if item.Unit == "" {
				item.Unit = product.Unit
			}
			if item.Rate.IsZero() {
				item.Rate = product.Rate
			}
		}
		if item.Unit == "" {
			item.Unit = snapshot.UOMOther
		}
		if !item.Quantity.IsPositive() {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d quantity must be positive", httpx.ErrValidation, i+1)
		}
		if item.Rate.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d rate must not be negative", httpx.ErrValidation, i+1)
		}

		item.Amount = item.Quantity.Mul(item.Rate).Round(2)
		subtotal = subtotal.Add(item.Amount)
		items = append(items, item)
	}
	return items, subtotal, nil
}

func taxOn(subtotal, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return subtotal.Mul(rate).Div(hundred).Round(2)
}

func (s *Service) Get(ctx context.Context, kind DocKind, id int64) (*Invoice, error) {
	inv, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, MapError(err)
	}
	return inv, nil
}

func (s *Service) List(ctx context.Context, kind DocKind, req ListInvoicesRequest) ([]Invoice, error) {
	out, err := s.repo.List(ctx, kind, req)
	if err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// Update applies header edits. Charge or paid-amount changes ripple through
// total, balance due and payment status in the same write.
func (s *Service) Update(ctx context.Context, kind DocKind, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	inv, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, MapError(err)
	}

	updates := map[string]any{}
	if req.InvoiceDate != nil {
		updates["invoice_date"] = *req.InvoiceDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Submit != nil && *req.Submit {
		updates["status"] = StatusSubmitted
	}

	total := inv.Total
	if req.OtherCharges != nil || req.RoundOff != nil {
		other := inv.OtherCharges
		if req.OtherCharges != nil {
			other = *req.OtherCharges
		}
		roundOff := inv.RoundOff
		if req.RoundOff != nil {
			roundOff = *req.RoundOff
		}
		total = inv.Subtotal.
			Add(inv.CGSTAmount).Add(inv.SGSTAmount).Add(inv.IGSTAmount).
			Add(other).Add(roundOff)
		if !total.IsPositive() {
			return nil, fmt.Errorf("%w: invoice total must be positive, got %s", httpx.ErrValidation, total)
		}
		updates["other_charges"] = db.Numeric(other)
		updates["round_off"] = db.Numeric(roundOff)
		updates["total"] = db.Numeric(total)
	}

	paid := inv.PaidAmount
	if req.PaidAmount != nil {
		if req.PaidAmount.IsNegative() {
			return nil, fmt.Errorf("%w: paid amount must not be negative", httpx.ErrValidation)
		}
		paid = *req.PaidAmount
		updates["paid_amount"] = db.Numeric(paid)
	}
	if req.PaidAmount != nil || req.OtherCharges != nil || req.RoundOff != nil {
		updates["balance_due"] = db.Numeric(total.Sub(paid))
		updates["payment_status"] = PaymentStatusFor(total, paid)
	}

	if err := s.repo.UpdateHeader(ctx, kind, id, updates); err != nil {
		return nil, MapError(err)
	}
	return s.Get(ctx, kind, id)
}

// OverrideStatus sets payment status directly, bypassing the derivation. Used
// for OVERDUE marks and manual corrections.
func (s *Service) OverrideStatus(ctx context.Context, kind DocKind, id int64, status PaymentStatus) (*Invoice, error) {
	if !ValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", httpx.ErrValidation, status)
	}
	err := s.repo.UpdateHeader(ctx, kind, id, map[string]any{"payment_status": status})
	if err != nil {
		return nil, MapError(err)
	}
	inv, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	// An override must show up in statements immediately, not after the
	// cache TTL runs out.
	if s.statements != nil {
		s.statements.Invalidate(ctx, inv.PartyID)
	}
	return inv, nil
}

func (s *Service) Delete(ctx context.Context, kind DocKind, id int64) error {
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return MapError(err)
	}
	s.log.InfoContext(ctx, "invoice deleted", "kind", kind, "id", id)
	return nil
}

// NextNumber previews the number the allocator would assign, without
// consuming a serial. Concurrent creates can still take the previewed value.
func (s *Service) NextNumber(ctx context.Context, kind DocKind, fy string) (*NextNumberResponse, error) {
	if fy == "" {
		fy = fiscal.ForDate(time.Now())
	}
	shortFY, err := fiscal.Short(fy)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	serial, err := s.repo.PeekSerial(ctx, kind, shortFY)
	if err != nil {
		return nil, err
	}
	return &NextNumberResponse{
		InvoiceNumber: FormatNumber(kind, serial, shortFY),
		FinancialYear: shortFY,
	}, nil
}
