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
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"engage-platform/internal/tool"
	"engage-platform/pkg/errors"
)

// PgStore is the PostgreSQL tool store shared by API instances.
// Requires the tools table:
//
//	CREATE TABLE tools (
//	  id TEXT PRIMARY KEY,
//	  company_id TEXT NOT NULL,
//	  name TEXT NOT NULL,
//	  slug TEXT NOT NULL,
//	  category TEXT NOT NULL DEFAULT '',
//	  type TEXT NOT NULL,
//	  description TEXT NOT NULL DEFAULT '',
//	  schema JSONB NOT NULL,
//	  config JSONB NOT NULL,
//	  enabled BOOLEAN NOT NULL DEFAULT true,
//	  created_by TEXT NOT NULL DEFAULT '',
//	  updated_by TEXT NOT NULL DEFAULT '',
//	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	  last_executed_at TIMESTAMPTZ,
//	  last_error TEXT NOT NULL DEFAULT '',
//	  UNIQUE (company_id, slug)
//	);
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore connects to Postgres and verifies the connection.
func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PgStore{pool: pool}, nil
}

const toolColumns = `id, company_id, name, slug, category, type, description,
	schema, config, enabled, created_by, updated_by, created_at, updated_at,
	last_executed_at, last_error`

// Create implements Store.
func (s *PgStore) Create(ctx context.Context, t *tool.Tool) error {
	schemaJSON, configJSON, err := encodeTool(t)
	if err != nil {
		return err
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err = s.pool.Exec(ctx,
		`INSERT INTO tools (id, company_id, name, slug, category, type, description,
		   schema, config, enabled, created_by, updated_by, created_at, updated_at, last_error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, '')`,
		t.ID, t.CompanyID, t.Name, t.Slug, t.Category, string(t.Type), t.Description,
		schemaJSON, configJSON, t.Enabled, t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt,
	)
	return mapConflict(err, t.Slug)
}

// mapConflict turns a unique violation on (company_id, slug) into ErrConflict.
func mapConflict(err error, slug string) error {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Wrapf(errors.ErrConflict, "slug %s already exists", slug)
	}
	return err
}

// GetByID implements Store.
func (s *PgStore) GetByID(ctx context.Context, companyID, id string) (*tool.Tool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE company_id = $1 AND id = $2`,
		companyID, id,
	)
	return scanTool(row, id)
}

// GetBySlug implements Store.
func (s *PgStore) GetBySlug(ctx context.Context, companyID, slug string) (*tool.Tool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE company_id = $1 AND slug = $2`,
		companyID, slug,
	)
	return scanTool(row, slug)
}

// Update implements Store.
func (s *PgStore) Update(ctx context.Context, t *tool.Tool) error {
	schemaJSON, configJSON, err := encodeTool(t)
	if err != nil {
		return err
	}
	t.UpdatedAt = time.Now()
	tag, err := s.pool.Exec(ctx,
		`UPDATE tools SET name = $3, slug = $4, category = $5, description = $6,
		   schema = $7, config = $8, enabled = $9, updated_by = $10, updated_at = $11
		 WHERE company_id = $1 AND id = $2`,
		t.CompanyID, t.ID, t.Name, t.Slug, t.Category, t.Description,
		schemaJSON, configJSON, t.Enabled, t.UpdatedBy, t.UpdatedAt,
	)
	if err != nil {
		return mapConflict(err, t.Slug)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errors.ErrNotFound, "tool %s", t.ID)
	}
	return nil
}

// Delete implements Store.
func (s *PgStore) Delete(ctx context.Context, companyID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tools WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errors.ErrNotFound, "tool %s", id)
	}
	return nil
}

// List implements Store.
func (s *PgStore) List(ctx context.Context, companyID string) ([]*tool.Tool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE company_id = $1 ORDER BY created_at`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*tool.Tool
	for rows.Next() {
		t, err := scanTool(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SlugExists implements Store.
func (s *PgStore) SlugExists(ctx context.Context, companyID, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tools WHERE company_id = $1 AND slug = $2)`,
		companyID, slug,
	).Scan(&exists)
	return exists, err
}

// TouchExecution implements Store.
func (s *PgStore) TouchExecution(ctx context.Context, id string, at time.Time, lastError string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE tools SET last_executed_at = $2, last_error = $3 WHERE id = $1`,
		id, at, lastError,
	)
	return err
}

// Close implements Store.
func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}

func encodeTool(t *tool.Tool) (schemaJSON, configJSON []byte, err error) {
	schemaJSON, err = json.Marshal(t.Schema)
	if err != nil {
		return nil, nil, err
	}
	configJSON, err = json.Marshal(t.Config)
	if err != nil {
		return nil, nil, err
	}
	return schemaJSON, configJSON, nil
}

func scanTool(row pgx.Row, key string) (*tool.Tool, error) {
	var (
		t          tool.Tool
		toolType   string
		schemaJSON []byte
		configJSON []byte
		lastExec   *time.Time
	)
	err := row.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Slug, &t.Category, &toolType,
		&t.Description, &schemaJSON, &configJSON, &t.Enabled, &t.CreatedBy, &t.UpdatedBy,
		&t.CreatedAt, &t.UpdatedAt, &lastExec, &t.LastError)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.Wrapf(errors.ErrNotFound, "tool %s", key)
		}
		return nil, err
	}
	t.Type = tool.Type(toolType)
	t.LastExecutedAt = lastExec
	if err := json.Unmarshal(schemaJSON, &t.Schema); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(configJSON, &t.Config); err != nil {
		return nil, err
	}
	return &t, nil
}
