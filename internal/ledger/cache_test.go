package ledger

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(rdb, slog.New(slog.DiscardHandler)), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.GetStatement(ctx, 7)
	require.False(t, ok)

	st := &Statement{
		PartyID:       7,
		PartyName:     "Sharma Traders",
		Entries:       []Entry{},
		TotalInvoiced: decimal.NewFromInt(1000),
		TotalPaid:     decimal.NewFromInt(300),
		Balance:       decimal.NewFromInt(700),
		OverdueAmount: decimal.Zero,
		GeneratedAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	cache.PutStatement(ctx, 7, st)

	got, ok := cache.GetStatement(ctx, 7)
	require.True(t, ok)
	require.Equal(t, st.PartyName, got.PartyName)
	require.True(t, got.Balance.Equal(st.Balance))
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.PutStatement(ctx, 7, &Statement{PartyID: 7})
	mr.FastForward(statementTTL + time.Second)

	_, ok := cache.GetStatement(ctx, 7)
	require.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.PutStatement(ctx, 7, &Statement{PartyID: 7})
	cache.Invalidate(ctx, 7)

	_, ok := cache.GetStatement(ctx, 7)
	require.False(t, ok)
}
