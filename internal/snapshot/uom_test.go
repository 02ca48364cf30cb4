package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeUOM(t *testing.T) {
	cases := []struct {
		in   string
		want UOM
	}{
		{"MT", UOMTon},
		{"metric ton", UOMTon},
		{"TONS", UOMTon},
		{"kgs", UOMKg},
		{"Nos", UOMPiece},
		{"pcs", UOMPiece},
		{"LTR", UOMLitre},
		{"bdl", UOMBundle},
		{"metric  ton", UOMTon},
		{"", UOMOther},
		{"furlong", UOMOther},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeUOM(tc.in), tc.in)
	}
}
