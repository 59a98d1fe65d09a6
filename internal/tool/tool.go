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

// Package tool defines the tool capability model: a named, schema-described
// capability scoped to a company, executed either in-process (internal) or
// as an outbound HTTP call (external).
package tool

import (
	"time"
)

// Type discriminates how a tool is executed.
type Type string

const (
	TypeInternal Type = "internal"
	TypeExternal Type = "external"
)

// IsValid reports whether t is a known tool type.
func (t Type) IsValid() bool {
	return t == TypeInternal || t == TypeExternal
}

// Tool is a declared capability invocable by an authorized agent.
type Tool struct {
	ID          string           `json:"id"`
	CompanyID   string           `json:"company_id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"` // unique per company
	Category    string           `json:"category,omitempty"`
	Type        Type             `json:"type"`
	Description string           `json:"description,omitempty"`
	Schema      SchemaDefinition `json:"schema"`
	Config      Config           `json:"config"`
	Enabled     bool             `json:"enabled"`

	CreatedBy      string     `json:"created_by,omitempty"`
	UpdatedBy      string     `json:"updated_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastExecutedAt *time.Time `json:"last_executed_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// Clone returns a deep-enough copy so stores can hand out records without
// sharing mutable slices with callers.
func (t *Tool) Clone() *Tool {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Schema = t.Schema.clone()
	cp.Config = t.Config.clone()
	if t.LastExecutedAt != nil {
		at := *t.LastExecutedAt
		cp.LastExecutedAt = &at
	}
	return &cp
}
