package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)
	require.Len(t, a, tokenBytes*2)
	_, err = hex.DecodeString(a)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestLookupKey(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)
	require.Equal(t, LookupKey(token), LookupKey(token), "lookup key must be deterministic")
	require.Len(t, LookupKey(token), 64)
	require.NotEqual(t, LookupKey(token), token)

	other, err := NewToken()
	require.NoError(t, err)
	require.NotEqual(t, LookupKey(token), LookupKey(other))
}
