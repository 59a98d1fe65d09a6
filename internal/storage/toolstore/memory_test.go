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

package toolstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage-platform/internal/storage/cache"
	"engage-platform/internal/tool"
	"engage-platform/pkg/errors"
)

func newTestTool(id, companyID, slug string) *tool.Tool {
	return &tool.Tool{
		ID:        id,
		CompanyID: companyID,
		Name:      "Test " + slug,
		Slug:      slug,
		Type:      tool.TypeInternal,
		Schema: tool.SchemaDefinition{
			Inputs: []tool.SchemaField{{Name: "subject", Type: tool.FieldString, Required: true}},
		},
		Config: tool.Config{
			Internal: &tool.InternalConfig{Action: "create_ticket"},
		},
		Enabled: true,
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Create(ctx, newTestTool("t1", "acme", "create-ticket"))
	require.NoError(t, err)

	got, err := store.GetByID(ctx, "acme", "t1")
	require.NoError(t, err)
	assert.Equal(t, "create-ticket", got.Slug)
	assert.False(t, got.CreatedAt.IsZero())

	bySlug, err := store.GetBySlug(ctx, "acme", "create-ticket")
	require.NoError(t, err)
	assert.Equal(t, "t1", bySlug.ID)

	got.Name = "Renamed"
	require.NoError(t, store.Update(ctx, got))
	again, err := store.GetByID(ctx, "acme", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Name)

	require.NoError(t, store.Delete(ctx, "acme", "t1"))
	_, err = store.GetByID(ctx, "acme", "t1")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestMemoryStoreCompanyScoping(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, newTestTool("t1", "acme", "create-ticket")))

	// Another tenant cannot see or delete acme's tool.
	_, err := store.GetByID(ctx, "globex", "t1")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = store.GetBySlug(ctx, "globex", "create-ticket")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "globex", "t1"), errors.ErrNotFound)

	// Slugs are unique per company, not globally.
	exists, err := store.SlugExists(ctx, "acme", "create-ticket")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.SlugExists(ctx, "globex", "create-ticket")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Create(ctx, newTestTool("t2", "globex", "create-ticket")))
	tools, err := store.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "t1", tools[0].ID)
}

func TestMemoryStoreDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, newTestTool("t1", "acme", "create-ticket")))
	err := store.Create(ctx, newTestTool("t2", "acme", "create-ticket"))
	assert.ErrorIs(t, err, errors.ErrConflict)

	// Same slug under another company is fine.
	require.NoError(t, store.Create(ctx, newTestTool("t3", "globex", "create-ticket")))

	// Updating a tool onto an occupied slug conflicts too.
	require.NoError(t, store.Create(ctx, newTestTool("t4", "acme", "close-ticket")))
	moved, err := store.GetByID(ctx, "acme", "t4")
	require.NoError(t, err)
	moved.Slug = "create-ticket"
	assert.ErrorIs(t, store.Update(ctx, moved), errors.ErrConflict)

	// Updating without changing the slug does not conflict with itself.
	same, err := store.GetByID(ctx, "acme", "t1")
	require.NoError(t, err)
	same.Name = "Renamed"
	assert.NoError(t, store.Update(ctx, same))
}

func TestMemoryStoreTouchExecution(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newTestTool("t1", "acme", "create-ticket")))

	at := time.Now()
	require.NoError(t, store.TouchExecution(ctx, "t1", at, "boom"))

	got, err := store.GetByID(ctx, "acme", "t1")
	require.NoError(t, err)
	require.NotNil(t, got.LastExecutedAt)
	assert.WithinDuration(t, at, *got.LastExecutedAt, time.Second)
	assert.Equal(t, "boom", got.LastError)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newTestTool("t1", "acme", "create-ticket")))

	got, err := store.GetByID(ctx, "acme", "t1")
	require.NoError(t, err)
	got.Name = "mutated"
	got.Schema.Inputs[0].Name = "mutated"

	fresh, err := store.GetByID(ctx, "acme", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Test create-ticket", fresh.Name)
	assert.Equal(t, "subject", fresh.Schema.Inputs[0].Name)
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	cached := NewCachedStore(inner, cache.NewMemoryStore(), time.Minute)

	require.NoError(t, cached.Create(ctx, newTestTool("t1", "acme", "create-ticket")))

	got, err := cached.GetBySlug(ctx, "acme", "create-ticket")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	// Delete underneath the cache: the slug lookup still serves the
	// cached copy until invalidated through the decorator.
	require.NoError(t, inner.Delete(ctx, "acme", "t1"))
	got, err = cached.GetBySlug(ctx, "acme", "create-ticket")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
}

func TestCachedStoreInvalidatesOnUpdate(t *testing.T) {
	ctx := context.Background()
	cached := NewCachedStore(NewMemoryStore(), cache.NewMemoryStore(), time.Minute)

	require.NoError(t, cached.Create(ctx, newTestTool("t1", "acme", "create-ticket")))
	warm, err := cached.GetBySlug(ctx, "acme", "create-ticket")
	require.NoError(t, err)

	warm.Enabled = false
	require.NoError(t, cached.Update(ctx, warm))

	got, err := cached.GetBySlug(ctx, "acme", "create-ticket")
	require.NoError(t, err)
	assert.False(t, got.Enabled)
}

func TestCachedStoreInvalidatesOldSlugOnRename(t *testing.T) {
	ctx := context.Background()
	cached := NewCachedStore(NewMemoryStore(), cache.NewMemoryStore(), time.Minute)

	require.NoError(t, cached.Create(ctx, newTestTool("t1", "acme", "create-ticket")))
	warm, err := cached.GetBySlug(ctx, "acme", "create-ticket")
	require.NoError(t, err)

	warm.Slug = "open-ticket"
	require.NoError(t, cached.Update(ctx, warm))

	// The old slug must not keep serving the renamed tool.
	_, err = cached.GetBySlug(ctx, "acme", "create-ticket")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	got, err := cached.GetBySlug(ctx, "acme", "open-ticket")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
}

func TestCachedStoreInvalidatesOnDelete(t *testing.T) {
	ctx := context.Background()
	cached := NewCachedStore(NewMemoryStore(), cache.NewMemoryStore(), time.Minute)

	require.NoError(t, cached.Create(ctx, newTestTool("t1", "acme", "create-ticket")))
	_, err := cached.GetBySlug(ctx, "acme", "create-ticket")
	require.NoError(t, err)

	require.NoError(t, cached.Delete(ctx, "acme", "t1"))
	_, err = cached.GetBySlug(ctx, "acme", "create-ticket")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
