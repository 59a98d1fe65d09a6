// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package execstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage-platform/pkg/errors"
)

func newTestRecord(id string) *Record {
	return &Record{
		ID:        id,
		CompanyID: "acme",
		ToolID:    "tool-1",
		AgentID:   "agent-1",
		Input:     map[string]interface{}{"subject": "printer on fire"},
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, newTestRecord("e1")))

	got, err := store.Get(ctx, "acme", "e1")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)

	err = store.Finish(ctx, "e1", Outcome{
		Status:    StatusSuccess,
		Result:    map[string]interface{}{"ticket_id": "T-42"},
		ElapsedMS: 120,
	})
	require.NoError(t, err)

	got, err = store.Get(ctx, "acme", "e1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, "T-42", got.Result["ticket_id"])
	assert.EqualValues(t, 120, got.ElapsedMS)
}

func TestMemoryStoreFinishIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newTestRecord("e1")))
	require.NoError(t, store.Finish(ctx, "e1", Outcome{Status: StatusSuccess}))

	err := store.Finish(ctx, "e1", Outcome{
		Status: StatusFailed,
		Error:  &ExecError{Message: "late failure", Kind: "internal"},
	})
	assert.ErrorIs(t, err, errors.ErrConflict)

	got, err := store.Get(ctx, "acme", "e1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Nil(t, got.Error)
}

func TestMemoryStoreFinishUnknown(t *testing.T) {
	store := NewMemoryStore()
	err := store.Finish(context.Background(), "missing", Outcome{Status: StatusFailed})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestMemoryStoreGetScopedToCompany(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newTestRecord("e1")))

	_, err := store.Get(ctx, "globex", "e1")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestMemoryStoreListByTool(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 5; i++ {
		rec := newTestRecord(fmt.Sprintf("e%d", i))
		require.NoError(t, store.Create(ctx, rec))
		time.Sleep(time.Millisecond)
	}
	other := newTestRecord("other")
	other.ToolID = "tool-2"
	require.NoError(t, store.Create(ctx, other))

	recs, err := store.ListByTool(ctx, "acme", "tool-1", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "e4", recs[0].ID)
	assert.Equal(t, "e3", recs[1].ID)
}

func TestMemoryStoreCountSince(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newTestRecord("e1")))
	require.NoError(t, store.Create(ctx, newTestRecord("e2")))

	count, err := store.CountSince(ctx, "tool-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountSince(ctx, "tool-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStoreDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	old := newTestRecord("old")
	require.NoError(t, store.Create(ctx, old))
	store.mu.Lock()
	store.records["old"].CreatedAt = time.Now().Add(-48 * time.Hour)
	store.mu.Unlock()
	require.NoError(t, store.Create(ctx, newTestRecord("fresh")))

	removed, err := store.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, "acme", "old")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = store.Get(ctx, "acme", "fresh")
	assert.NoError(t, err)
}
