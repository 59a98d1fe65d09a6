// Copyright 2026 fanjia1024
// Tests for secret stores

package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "engage-platform/pkg/errors"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	require.NoError(t, store.Set(ctx, "API_KEY", "s3cret"))
	val, err := store.Get(ctx, "API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", val)

	require.NoError(t, store.Delete(ctx, "API_KEY"))
	_, err = store.Get(ctx, "API_KEY")
	assert.Error(t, err)
}

func TestEnvStore(t *testing.T) {
	ctx := context.Background()
	store := NewEnvStore()

	t.Setenv("ENGAGE_TEST_SECRET", "from-env")
	val, err := store.Get(ctx, "ENGAGE_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", val)

	_, err = store.Get(ctx, "ENGAGE_TEST_SECRET_MISSING")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(Config{Provider: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, store)

	store, err = NewStore(Config{Provider: "env"})
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = NewStore(Config{Provider: "bogus"})
	assert.Error(t, err)
}
