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
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"engage-platform/pkg/errors"
)

// PgStore is the PostgreSQL execution record store.
// Requires the tool_executions table:
//
//	CREATE TABLE tool_executions (
//	  id TEXT PRIMARY KEY,
//	  company_id TEXT NOT NULL,
//	  tool_id TEXT NOT NULL,
//	  agent_id TEXT NOT NULL,
//	  input JSONB NOT NULL,
//	  status TEXT NOT NULL,
//	  result JSONB,
//	  error JSONB,
//	  elapsed_ms BIGINT NOT NULL DEFAULT 0,
//	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX idx_tool_executions_tool ON tool_executions (tool_id, created_at DESC);
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

// Create implements Store.
func (s *PgStore) Create(ctx context.Context, rec *Record) error {
	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		return err
	}
	now := time.Now()
	rec.Status = StatusAccepted
	rec.CreatedAt = now
	rec.UpdatedAt = now
	_, err = s.pool.Exec(ctx,
		`INSERT INTO tool_executions (id, company_id, tool_id, agent_id, input, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.CompanyID, rec.ToolID, rec.AgentID, inputJSON, rec.Status, rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

// Finish implements Store.
func (s *PgStore) Finish(ctx context.Context, id string, outcome Outcome) error {
	var resultJSON, errJSON []byte
	var err error
	if outcome.Result != nil {
		if resultJSON, err = json.Marshal(outcome.Result); err != nil {
			return err
		}
	}
	if outcome.Error != nil {
		if errJSON, err = json.Marshal(outcome.Error); err != nil {
			return err
		}
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE tool_executions
		 SET status = $2, result = $3, error = $4, elapsed_ms = $5, updated_at = now()
		 WHERE id = $1 AND status = $6`,
		id, outcome.Status, resultJSON, errJSON, outcome.ElapsedMS, StatusAccepted,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already finished; look up which.
		var status string
		lookupErr := s.pool.QueryRow(ctx,
			`SELECT status FROM tool_executions WHERE id = $1`, id).Scan(&status)
		if lookupErr == pgx.ErrNoRows {
			return errors.Wrapf(errors.ErrNotFound, "execution %s", id)
		}
		if lookupErr != nil {
			return lookupErr
		}
		return errors.Wrapf(errors.ErrConflict, "execution %s already %s", id, status)
	}
	return nil
}

const recordColumns = `id, company_id, tool_id, agent_id, input, status, result, error,
	elapsed_ms, created_at, updated_at`

// Get implements Store.
func (s *PgStore) Get(ctx context.Context, companyID, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM tool_executions WHERE company_id = $1 AND id = $2`,
		companyID, id,
	)
	return scanRecord(row, id)
}

// ListByTool implements Store.
func (s *PgStore) ListByTool(ctx context.Context, companyID, toolID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM tool_executions
		 WHERE company_id = $1 AND tool_id = $2
		 ORDER BY created_at DESC LIMIT $3`,
		companyID, toolID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountSince implements Store.
func (s *PgStore) CountSince(ctx context.Context, toolID string, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tool_executions WHERE tool_id = $1 AND created_at >= $2`,
		toolID, since,
	).Scan(&count)
	return count, err
}

// DeleteOlderThan implements Store.
func (s *PgStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tool_executions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Close implements Store.
func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}

func scanRecord(row pgx.Row, key string) (*Record, error) {
	var (
		rec        Record
		inputJSON  []byte
		resultJSON []byte
		errJSON    []byte
	)
	err := row.Scan(&rec.ID, &rec.CompanyID, &rec.ToolID, &rec.AgentID, &inputJSON,
		&rec.Status, &resultJSON, &errJSON, &rec.ElapsedMS, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.Wrapf(errors.ErrNotFound, "execution %s", key)
		}
		return nil, err
	}
	if err := json.Unmarshal(inputJSON, &rec.Input); err != nil {
		return nil, err
	}
	if resultJSON != nil {
		if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
			return nil, err
		}
	}
	if errJSON != nil {
		if err := json.Unmarshal(errJSON, &rec.Error); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}
