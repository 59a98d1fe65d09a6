// Copyright 2026 fanjia1024
// Tests for the in-memory agent store

package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "engage-platform/pkg/errors"
)

func TestMemoryStore_GetPut(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "c1", "a1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	require.NoError(t, s.Put(ctx, Agent{ID: "a1", CompanyID: "c1", AuthorizedToolIDs: []string{"t1"}}))
	a, err := s.Get(ctx, "c1", "a1")
	require.NoError(t, err)
	assert.True(t, a.HasAccess("t1"))
	assert.False(t, a.HasAccess("t2"))

	// company scoping
	_, err = s.Get(ctx, "c2", "a1")
	assert.Error(t, err)
}

func TestMemoryStore_GrantRevoke(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, Agent{ID: "a1", CompanyID: "c1"}))

	require.NoError(t, s.Grant(ctx, "c1", "a1", "t9"))
	// granting twice is idempotent
	require.NoError(t, s.Grant(ctx, "c1", "a1", "t9"))
	a, err := s.Get(ctx, "c1", "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t9"}, a.AuthorizedToolIDs)

	require.NoError(t, s.Revoke(ctx, "c1", "a1", "t9"))
	a, err = s.Get(ctx, "c1", "a1")
	require.NoError(t, err)
	assert.False(t, a.HasAccess("t9"))
}
