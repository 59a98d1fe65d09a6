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
	"sort"
	"sync"
	"time"

	"engage-platform/internal/tool"
	"engage-platform/pkg/errors"
)

// MemoryStore is an in-memory tool store.
type MemoryStore struct {
	mu    sync.RWMutex
	tools map[string]*tool.Tool // by id
}

// NewMemoryStore creates an empty in-memory tool store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tools: make(map[string]*tool.Tool)}
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, t *tool.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tools[t.ID]; exists {
		return errors.Wrapf(errors.ErrConflict, "tool %s already exists", t.ID)
	}
	if s.slugTaken(t.CompanyID, t.Slug, t.ID) {
		return errors.Wrapf(errors.ErrConflict, "slug %s already exists", t.Slug)
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tools[t.ID] = t.Clone()
	return nil
}

// slugTaken reports whether another tool in the company holds slug.
// Callers must hold s.mu.
func (s *MemoryStore) slugTaken(companyID, slug, excludeID string) bool {
	for _, t := range s.tools {
		if t.ID != excludeID && t.CompanyID == companyID && t.Slug == slug {
			return true
		}
	}
	return false
}

// GetByID implements Store.
func (s *MemoryStore) GetByID(ctx context.Context, companyID, id string) (*tool.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tools[id]
	if !exists || t.CompanyID != companyID {
		return nil, errors.Wrapf(errors.ErrNotFound, "tool %s", id)
	}
	return t.Clone(), nil
}

// GetBySlug implements Store.
func (s *MemoryStore) GetBySlug(ctx context.Context, companyID, slug string) (*tool.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		if t.CompanyID == companyID && t.Slug == slug {
			return t.Clone(), nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "tool %s", slug)
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, t *tool.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.tools[t.ID]
	if !exists || old.CompanyID != t.CompanyID {
		return errors.Wrapf(errors.ErrNotFound, "tool %s", t.ID)
	}
	if s.slugTaken(t.CompanyID, t.Slug, t.ID) {
		return errors.Wrapf(errors.ErrConflict, "slug %s already exists", t.Slug)
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = time.Now()
	s.tools[t.ID] = t.Clone()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, companyID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tools[id]
	if !exists || t.CompanyID != companyID {
		return errors.Wrapf(errors.ErrNotFound, "tool %s", id)
	}
	delete(s.tools, id)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, companyID string) ([]*tool.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*tool.Tool
	for _, t := range s.tools {
		if t.CompanyID == companyID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SlugExists implements Store.
func (s *MemoryStore) SlugExists(ctx context.Context, companyID, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		if t.CompanyID == companyID && t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// TouchExecution implements Store.
func (s *MemoryStore) TouchExecution(ctx context.Context, id string, at time.Time, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tools[id]
	if !exists {
		return errors.Wrapf(errors.ErrNotFound, "tool %s", id)
	}
	ts := at
	t.LastExecutedAt = &ts
	t.LastError = lastError
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
