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

// Package app wires stores, executors and services into the running
// application.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engage-platform/internal/storage/execstore"
	"engage-platform/internal/storage/toolstore"
	"engage-platform/internal/tool"
	"engage-platform/pkg/errors"
	"engage-platform/pkg/log"
)

// CreateToolInput is the admin request to define a tool.
type CreateToolInput struct {
	Name        string                `json:"name"`
	Category    string                `json:"category,omitempty"`
	Type        tool.Type             `json:"type"`
	Description string                `json:"description,omitempty"`
	Schema      tool.SchemaDefinition `json:"schema"`
	Config      json.RawMessage       `json:"config"`
	Enabled     *bool                 `json:"enabled,omitempty"`
}

// UpdateToolInput carries the mutable fields of a tool. Nil pointers leave
// the current value untouched; Type is immutable after creation.
type UpdateToolInput struct {
	Name        *string                `json:"name,omitempty"`
	Category    *string                `json:"category,omitempty"`
	Description *string                `json:"description,omitempty"`
	Schema      *tool.SchemaDefinition `json:"schema,omitempty"`
	Config      json.RawMessage        `json:"config,omitempty"`
	Enabled     *bool                  `json:"enabled,omitempty"`
}

// ToolService manages tool definitions for admins.
type ToolService struct {
	tools         toolstore.Store
	records       execstore.Store
	retentionDays int
	logger        *log.Logger
}

// NewToolService builds the tool management service. retentionDays is the
// window in which a tool with execution history refuses deletion.
func NewToolService(tools toolstore.Store, records execstore.Store, retentionDays int, logger *log.Logger) *ToolService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &ToolService{
		tools:         tools,
		records:       records,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Create validates and persists a new tool. The slug derives from the name
// and is disambiguated with a numeric suffix within the company.
func (s *ToolService) Create(ctx context.Context, companyID, actorID string, in CreateToolInput) (*tool.Tool, error) {
	if in.Name == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "tool name is required")
	}
	if !in.Type.IsValid() {
		return nil, errors.Wrapf(errors.ErrInvalidArg, "invalid tool type %q", in.Type)
	}
	if err := in.Schema.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidArg, err.Error())
	}
	cfg, err := tool.DecodeConfig(in.Type, in.Config)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidArg, err.Error())
	}
	if err := cfg.Validate(in.Type); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidArg, err.Error())
	}

	slug, err := s.uniqueSlug(ctx, companyID, in.Name)
	if err != nil {
		return nil, err
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	t := &tool.Tool{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Name:        in.Name,
		Slug:        slug,
		Category:    in.Category,
		Type:        in.Type,
		Description: in.Description,
		Schema:      in.Schema,
		Config:      cfg,
		Enabled:     enabled,
		CreatedBy:   actorID,
		UpdatedBy:   actorID,
	}
	if err := s.tools.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("tool created",
		"tool", t.ID, "slug", t.Slug, "type", string(t.Type), "company", companyID)
	return t, nil
}

// Get returns one tool.
func (s *ToolService) Get(ctx context.Context, companyID, id string) (*tool.Tool, error) {
	return s.tools.GetByID(ctx, companyID, id)
}

// List returns the company's tools.
func (s *ToolService) List(ctx context.Context, companyID string) ([]*tool.Tool, error) {
	return s.tools.List(ctx, companyID)
}

// Update applies a partial update. Renaming regenerates the slug, again
// disambiguated so it cannot collide within the company.
func (s *ToolService) Update(ctx context.Context, companyID, actorID, id string, in UpdateToolInput) (*tool.Tool, error) {
	t, err := s.tools.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != t.Name {
		if *in.Name == "" {
			return nil, errors.Wrap(errors.ErrInvalidArg, "tool name is required")
		}
		slug, err := s.uniqueSlug(ctx, companyID, *in.Name)
		if err != nil {
			return nil, err
		}
		t.Name = *in.Name
		t.Slug = slug
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Schema != nil {
		if err := in.Schema.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidArg, err.Error())
		}
		t.Schema = *in.Schema
	}
	if len(in.Config) > 0 {
		cfg, err := tool.DecodeConfig(t.Type, in.Config)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidArg, err.Error())
		}
		if err := cfg.Validate(t.Type); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidArg, err.Error())
		}
		t.Config = cfg
	}
	if in.Enabled != nil {
		t.Enabled = *in.Enabled
	}
	t.UpdatedBy = actorID

	if err := s.tools.Update(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("tool updated", "tool", t.ID, "slug", t.Slug, "company", companyID)
	return t, nil
}

// Delete removes a tool. Deletion is refused while the tool has execution
// history inside the retention window.
func (s *ToolService) Delete(ctx context.Context, companyID, id string) error {
	t, err := s.tools.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	since := time.Now().AddDate(0, 0, -s.retentionDays)
	count, err := s.records.CountSince(ctx, t.ID, since)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.Wrapf(errors.ErrConflict,
			"tool %s has %d executions in the last %d days", t.Slug, count, s.retentionDays)
	}
	if err := s.tools.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.logger.Info("tool deleted", "tool", id, "slug", t.Slug, "company", companyID)
	return nil
}

func (s *ToolService) uniqueSlug(ctx context.Context, companyID, name string) (string, error) {
	var lookupErr error
	slug := tool.UniqueSlug(tool.Slugify(name), func(candidate string) bool {
		exists, err := s.tools.SlugExists(ctx, companyID, candidate)
		if err != nil {
			lookupErr = err
			return false
		}
		return exists
	})
	if lookupErr != nil {
		return "", fmt.Errorf("check slug uniqueness: %w", lookupErr)
	}
	return slug, nil
}
