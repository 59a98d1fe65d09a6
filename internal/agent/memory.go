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

package agent

import (
	"context"
	"sync"

	"engage-platform/pkg/errors"
)

// MemoryStore is an in-memory agent store keyed by company and id.
type MemoryStore struct {
	mu     sync.RWMutex
	agents map[string]Agent // companyID + "/" + agentID
}

// NewMemoryStore creates an empty in-memory agent store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{agents: make(map[string]Agent)}
}

func key(companyID, id string) string { return companyID + "/" + id }

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, companyID, id string) (Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[key(companyID, id)]
	if !ok {
		return Agent{}, errors.Wrapf(errors.ErrNotFound, "agent %s", id)
	}
	cp := a
	cp.AuthorizedToolIDs = append([]string(nil), a.AuthorizedToolIDs...)
	return cp, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, a Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := a
	cp.AuthorizedToolIDs = append([]string(nil), a.AuthorizedToolIDs...)
	s.agents[key(a.CompanyID, a.ID)] = cp
	return nil
}

// Grant implements Store.
func (s *MemoryStore) Grant(ctx context.Context, companyID, agentID, toolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agents[key(companyID, agentID)]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "agent %s", agentID)
	}
	if !a.HasAccess(toolID) {
		a.AuthorizedToolIDs = append(a.AuthorizedToolIDs, toolID)
		s.agents[key(companyID, agentID)] = a
	}
	return nil
}

// Revoke implements Store.
func (s *MemoryStore) Revoke(ctx context.Context, companyID, agentID, toolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agents[key(companyID, agentID)]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "agent %s", agentID)
	}
	kept := a.AuthorizedToolIDs[:0]
	for _, id := range a.AuthorizedToolIDs {
		if id != toolID {
			kept = append(kept, id)
		}
	}
	a.AuthorizedToolIDs = kept
	s.agents[key(companyID, agentID)] = a
	return nil
}
