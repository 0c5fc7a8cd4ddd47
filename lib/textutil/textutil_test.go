package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	testCases := []struct {
		in       string
		max      int
		expected string
	}{
		{in: "hello", max: 10, expected: "hello"},
		{in: "hello", max: 5, expected: "hello"},
		{in: "hello world", max: 8, expected: "hello..."},
		{in: "héllo wörld", max: 6, expected: "hél..."},
		{in: "hello", max: 2, expected: "he"},
		{in: "hello", max: 0, expected: "hello"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Truncate(test.in, test.max), test.in)
	}
}

func TestOneLine(t *testing.T) {
	require.Equal(t, "a b c", OneLine("  a\n\tb   c \n"))
}

func TestSplitPair(t *testing.T) {
	key, value, ok := SplitPair("X-Header: some value", ":")
	require.True(t, ok)
	require.Equal(t, "X-Header", key)
	require.Equal(t, "some value", value)

	key, value, ok = SplitPair("url=https://a.example/?q=1", "=")
	require.True(t, ok)
	require.Equal(t, "url", key)
	require.Equal(t, "https://a.example/?q=1", value)

	_, _, ok = SplitPair("novalue", ":")
	require.False(t, ok)
	_, _, ok = SplitPair(": empty key", ":")
	require.False(t, ok)
}
