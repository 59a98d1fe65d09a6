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

package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage-platform/internal/storage/execstore"
	"engage-platform/internal/storage/toolstore"
	"engage-platform/internal/tool"
	"engage-platform/pkg/errors"
	"engage-platform/pkg/log"
)

func newToolService(t *testing.T) (*ToolService, *execstore.MemoryStore) {
	t.Helper()
	logger, err := log.NewLogger(&log.Config{Level: "error"})
	require.NoError(t, err)
	records := execstore.NewMemoryStore()
	return NewToolService(toolstore.NewMemoryStore(), records, 30, logger), records
}

func internalToolInput(name string) CreateToolInput {
	return CreateToolInput{
		Name: name,
		Type: tool.TypeInternal,
		Schema: tool.SchemaDefinition{
			Inputs: []tool.SchemaField{
				{Name: "subject", Type: tool.FieldString, Required: true},
			},
		},
		Config: json.RawMessage(`{"action":"create_ticket","priority":"high"}`),
	}
}

func TestToolServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newToolService(t)

	created, err := svc.Create(ctx, "acme", "admin-1", internalToolInput("Create Ticket"))
	require.NoError(t, err)
	assert.Equal(t, "create-ticket", created.Slug)
	assert.True(t, created.Enabled)
	assert.Equal(t, "admin-1", created.CreatedBy)
	require.NotNil(t, created.Config.Internal)
	assert.Equal(t, "high", created.Config.Internal.Priority)
}

func TestToolServiceCreateSlugDisambiguation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newToolService(t)

	first, err := svc.Create(ctx, "acme", "admin-1", internalToolInput("Create Ticket"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, "acme", "admin-1", internalToolInput("Create Ticket"))
	require.NoError(t, err)
	third, err := svc.Create(ctx, "acme", "admin-1", internalToolInput("Create Ticket"))
	require.NoError(t, err)

	assert.Equal(t, "create-ticket", first.Slug)
	assert.Equal(t, "create-ticket-2", second.Slug)
	assert.Equal(t, "create-ticket-3", third.Slug)
}

func TestToolServiceCreateRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newToolService(t)

	tests := []struct {
		name   string
		mutate func(*CreateToolInput)
	}{
		{"empty name", func(in *CreateToolInput) { in.Name = "" }},
		{"bad type", func(in *CreateToolInput) { in.Type = "cron" }},
		{"schema field without type", func(in *CreateToolInput) {
			in.Schema.Inputs = []tool.SchemaField{{Name: "x"}}
		}},
		{"config for wrong shape", func(in *CreateToolInput) {
			in.Config = json.RawMessage(`{"action":""}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := internalToolInput("Bad Tool")
			tt.mutate(&in)
			_, err := svc.Create(ctx, "acme", "admin-1", in)
			assert.ErrorIs(t, err, errors.ErrInvalidArg)
		})
	}
}

func TestToolServiceUpdateRegeneratesSlug(t *testing.T) {
	ctx := context.Background()
	svc, _ := newToolService(t)

	created, err := svc.Create(ctx, "acme", "admin-1", internalToolInput("Create Ticket"))
	require.NoError(t, err)
	// Occupy the slug the rename would produce.
	_, err = svc.Create(ctx, "acme", "admin-1", internalToolInput("Open Ticket"))
	require.NoError(t, err)

	newName := "Open Ticket"
	updated, err := svc.Update(ctx, "acme", "admin-2", created.ID, UpdateToolInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "open-ticket-2", updated.Slug, "regenerated slug must not collide")
	assert.Equal(t, "admin-2", updated.UpdatedBy)
}

func TestToolServiceUpdateDisable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newToolService(t)
	created, err := svc.Create(ctx, "acme", "admin-1", internalToolInput("Create Ticket"))
	require.NoError(t, err)

	disabled := false
	updated, err := svc.Update(ctx, "acme", "admin-1", created.ID, UpdateToolInput{Enabled: &disabled})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
}

func TestToolServiceDeleteRefusedWithRecentExecutions(t *testing.T) {
	ctx := context.Background()
	svc, records := newToolService(t)
	created, err := svc.Create(ctx, "acme", "admin-1", internalToolInput("Create Ticket"))
	require.NoError(t, err)

	require.NoError(t, records.Create(ctx, &execstore.Record{
		ID:        "e1",
		CompanyID: "acme",
		ToolID:    created.ID,
		AgentID:   "agent-1",
		Input:     map[string]interface{}{"subject": "x"},
	}))

	err = svc.Delete(ctx, "acme", created.ID)
	assert.ErrorIs(t, err, errors.ErrConflict)

	// Still present.
	_, err = svc.Get(ctx, "acme", created.ID)
	assert.NoError(t, err)
}

func TestToolServiceDeleteWithoutHistory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newToolService(t)
	created, err := svc.Create(ctx, "acme", "admin-1", internalToolInput("Create Ticket"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "acme", created.ID))
	_, err = svc.Get(ctx, "acme", created.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
