package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.Get(ctx, "roster:1")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("abc")
	require.NoError(t, s.Put(ctx, "roster:1", value))
	value[0] = 'x' // callers must not alias stored bytes

	got, ok, err := s.Get(ctx, "roster:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, s.Put(ctx, "ledger:1:2024-W10", []byte("{}")))
	keys, err := s.Keys(ctx, "roster:")
	require.NoError(t, err)
	assert.Equal(t, []string{"roster:1"}, keys)
}
