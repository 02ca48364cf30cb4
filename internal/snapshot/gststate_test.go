package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGSTStateCode(t *testing.T) {
	cases := []struct {
		state string
		want  string
	}{
		{"Maharashtra", "27"},
		{"MAHARASHTRA", "27"},
		{"maharashtra", "27"},
		{"Tamil nadu", "33"},
		{"  Uttar  Pradesh ", "09"},
		{"Jammu & Kashmir", "01"},
		{"Jammu and Kashmir", "01"},
		{"Delhi", "07"},
		{"Atlantis", "00"},
		{"", "00"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, GSTStateCode(tc.state), tc.state)
	}
}

func TestCanonicalState(t *testing.T) {
	require.Equal(t, "Andaman And Nicobar Islands", CanonicalState("ANDAMAN & NICOBAR ISLANDS"))
	require.Equal(t, "West Bengal", CanonicalState("west   bengal"))
}
