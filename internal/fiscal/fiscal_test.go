package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShort(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-2026", "25-26"},
		{"2025-26", "25-26"},
		{"25-26", "25-26"},
		{" 25-26 ", "25-26"},
		{"1999-2000", "99-00"},
	}
	for _, tc := range cases {
		got, err := Short(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestShortRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "2025", "2025/2026", "25-27", "abc-def"} {
		_, err := Short(in)
		require.Error(t, err, in)
	}
}

func TestLong(t *testing.T) {
	got, err := Long("25-26")
	require.NoError(t, err)
	require.Equal(t, "2025-2026", got)
}

func TestForDate(t *testing.T) {
	require.Equal(t, "25-26", ForDate(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "25-26", ForDate(time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "24-25", ForDate(time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)))
}

func TestMatches(t *testing.T) {
	require.True(t, Matches("2025-2026", "25-26"))
	require.True(t, Matches("25-26", "2025-2026"))
	require.False(t, Matches("24-25", "25-26"))
	require.False(t, Matches("garbage", "25-26"))
}
