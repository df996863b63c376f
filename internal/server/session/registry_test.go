package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cryptowallet/internal/wallet"
)

func TestBindLookupUnbind(t *testing.T) {
	r := NewRegistry()
	u := wallet.NewUser("ivan", "pw")

	_, ok := r.Lookup(1)
	assert.False(t, ok)

	r.Bind(1, u)
	got, ok := r.Lookup(1)
	require.True(t, ok)
	assert.Same(t, u, got)
	assert.Equal(t, 1, r.Len())

	r.Unbind(1)
	_, ok = r.Lookup(1)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRebindReplacesUser(t *testing.T) {
	r := NewRegistry()
	first := wallet.NewUser("ivan", "pw")
	second := wallet.NewUser("maria", "pw")

	r.Bind(1, first)
	r.Bind(1, second)

	got, ok := r.Lookup(1)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Len())
}

func TestUserMayHaveTwoSessions(t *testing.T) {
	r := NewRegistry()
	u := wallet.NewUser("ivan", "pw")

	r.Bind(1, u)
	r.Bind(2, u)

	assert.Equal(t, 2, r.Len())

	r.Unbind(1)
	got, ok := r.Lookup(2)
	require.True(t, ok)
	assert.Same(t, u, got)
}

func TestUnbindUnknownConnection(t *testing.T) {
	r := NewRegistry()
	r.Unbind(42)
	assert.Equal(t, 0, r.Len())
}
