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

// Package execstore persists tool execution records, the audit trail of
// every dispatched invocation.
package execstore

import (
	"context"
	"time"
)

// Record statuses. A record is created as accepted and finished exactly
// once as success or failed.
const (
	StatusAccepted = "accepted"
	StatusSuccess  = "success"
	StatusFailed   = "failed"
)

// ExecError captures why an execution failed, kept alongside the record
// so operators can distinguish remote faults from pipeline faults.
type ExecError struct {
	Message    string `json:"message"`
	Kind       string `json:"kind"`                  // timeout | external | internal | config
	StatusCode int    `json:"status_code,omitempty"` // upstream HTTP status, when applicable
}

// Record is one execution of a tool by an agent.
type Record struct {
	ID        string                 `json:"id"`
	CompanyID string                 `json:"company_id"`
	ToolID    string                 `json:"tool_id"`
	AgentID   string                 `json:"agent_id"`
	Input     map[string]interface{} `json:"input"`
	Status    string                 `json:"status"`
	Result    map[string]interface{} `json:"result,omitempty"`
	Error     *ExecError             `json:"error,omitempty"`
	ElapsedMS int64                  `json:"elapsed_ms"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Outcome carries the terminal state applied by Finish.
type Outcome struct {
	Status    string
	Result    map[string]interface{}
	Error     *ExecError
	ElapsedMS int64
}

// Store is the execution record store.
type Store interface {
	// Create persists a new record in the accepted state.
	Create(ctx context.Context, rec *Record) error

	// Finish transitions an accepted record to success or failed.
	// Finishing an already finished record is a conflict.
	Finish(ctx context.Context, id string, outcome Outcome) error

	// Get returns one record scoped to a company.
	Get(ctx context.Context, companyID, id string) (*Record, error)

	// ListByTool returns a tool's records, most recent first.
	ListByTool(ctx context.Context, companyID, toolID string, limit int) ([]*Record, error)

	// CountSince counts a tool's records created at or after since.
	CountSince(ctx context.Context, toolID string, since time.Time) (int, error)

	// DeleteOlderThan removes records created before the cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	Close() error
}
