package invoices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "INV/01/25-26", FormatNumber(KindSales, 1, "25-26"))
	require.Equal(t, "INV/12/25-26", FormatNumber(KindSales, 12, "25-26"))
	require.Equal(t, "PINV/07/24-25", FormatNumber(KindPurchase, 7, "24-25"))
	// Serials above two digits widen rather than truncate.
	require.Equal(t, "INV/123/25-26", FormatNumber(KindSales, 123, "25-26"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		prefix string
		serial int
		fy     string
		ok     bool
	}{
		{"INV/01/25-26", "INV", 1, "25-26", true},
		{"PINV/42/24-25", "PINV", 42, "24-25", true},
		{"INV/123/25-26", "INV", 123, "25-26", true},
		{"INV/XX/25-26", "", 0, "", false},
		{"INV-01-25-26", "", 0, "", false},
		{"", "", 0, "", false},
	}
	for _, tt := range tests {
		prefix, serial, fy, ok := ParseNumber(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			require.Equal(t, tt.prefix, prefix)
			require.Equal(t, tt.serial, serial)
			require.Equal(t, tt.fy, fy)
		}
	}
}

func TestSerialIn(t *testing.T) {
	serial, ok := SerialIn("INV/05/25-26", KindSales, "25-26")
	require.True(t, ok)
	require.Equal(t, 5, serial)

	// Wrong prefix for the kind.
	_, ok = SerialIn("PINV/05/25-26", KindSales, "25-26")
	require.False(t, ok)

	// Different fiscal year.
	_, ok = SerialIn("INV/05/24-25", KindSales, "25-26")
	require.False(t, ok)

	// Manual free-form numbers never contribute a serial.
	_, ok = SerialIn("CUSTOM-2025-001", KindSales, "25-26")
	require.False(t, ok)
}
