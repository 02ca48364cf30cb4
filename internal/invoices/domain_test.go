package invoices

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		total string
		paid  string
		want  PaymentStatus
	}{
		{"1475", "0", PaymentPending},
		{"1475", "1000", PaymentPartial},
		{"1475", "1475", PaymentPaid},
		{"1475", "1600", PaymentPaid},
		{"1475", "0.01", PaymentPartial},
	}
	for _, tt := range tests {
		total := decimal.RequireFromString(tt.total)
		paid := decimal.RequireFromString(tt.paid)
		require.Equal(t, tt.want, PaymentStatusFor(total, paid), "total %s paid %s", tt.total, tt.paid)
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("sales")
	require.NoError(t, err)
	require.Equal(t, KindSales, kind)

	kind, err = ParseKind(" PURCHASE ")
	require.NoError(t, err)
	require.Equal(t, KindPurchase, kind)

	_, err = ParseKind("credit-note")
	require.Error(t, err)
}
