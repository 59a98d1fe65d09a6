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
	"sort"
	"sync"
	"time"

	"engage-platform/pkg/errors"
)

// MemoryStore keeps execution records in memory, for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return errors.Wrapf(errors.ErrConflict, "execution %s", rec.ID)
	}
	now := time.Now()
	rec.Status = StatusAccepted
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records[rec.ID] = cloneRecord(rec)
	return nil
}

// Finish implements Store.
func (s *MemoryStore) Finish(ctx context.Context, id string, outcome Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "execution %s", id)
	}
	if rec.Status != StatusAccepted {
		return errors.Wrapf(errors.ErrConflict, "execution %s already %s", id, rec.Status)
	}
	rec.Status = outcome.Status
	rec.Result = outcome.Result
	rec.Error = outcome.Error
	rec.ElapsedMS = outcome.ElapsedMS
	rec.UpdatedAt = time.Now()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, companyID, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok || rec.CompanyID != companyID {
		return nil, errors.Wrapf(errors.ErrNotFound, "execution %s", id)
	}
	return cloneRecord(rec), nil
}

// ListByTool implements Store.
func (s *MemoryStore) ListByTool(ctx context.Context, companyID, toolID string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, rec := range s.records {
		if rec.CompanyID == companyID && rec.ToolID == toolID {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountSince implements Store.
func (s *MemoryStore) CountSince(ctx context.Context, toolID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, rec := range s.records {
		if rec.ToolID == toolID && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// DeleteOlderThan implements Store.
func (s *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, rec := range s.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func cloneRecord(rec *Record) *Record {
	cp := *rec
	if rec.Input != nil {
		cp.Input = make(map[string]interface{}, len(rec.Input))
		for k, v := range rec.Input {
			cp.Input[k] = v
		}
	}
	if rec.Result != nil {
		cp.Result = make(map[string]interface{}, len(rec.Result))
		for k, v := range rec.Result {
			cp.Result[k] = v
		}
	}
	if rec.Error != nil {
		e := *rec.Error
		cp.Error = &e
	}
	return &cp
}
