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

// Package ticket is the support-ticket collaborator consumed by the
// create_ticket internal action.
package ticket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ticket is a support ticket created on behalf of an agent.
type Ticket struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Department  string    `json:"department,omitempty"`
	Priority    string    `json:"priority"` // low | medium | high
	Tags        []string  `json:"tags,omitempty"`
	Status      string    `json:"status"` // open | closed
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateInput carries the fields needed to open a ticket.
type CreateInput struct {
	CompanyID   string
	Subject     string
	Description string
	Department  string
	Priority    string
	Tags        []string
	CreatedBy   string
}

// Service creates and reads tickets.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*Ticket, error)
	Get(ctx context.Context, companyID, id string) (*Ticket, error)
}

// MemoryService is an in-memory Service used by the API server and tests.
type MemoryService struct {
	mu      sync.RWMutex
	tickets map[string]*Ticket
}

// NewMemoryService creates an empty in-memory ticket service.
func NewMemoryService() *MemoryService {
	return &MemoryService{tickets: make(map[string]*Ticket)}
}

// Create implements Service.
func (s *MemoryService) Create(ctx context.Context, in CreateInput) (*Ticket, error) {
	if in.Subject == "" {
		return nil, fmt.Errorf("ticket subject is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}
	t := &Ticket{
		ID:          uuid.NewString(),
		CompanyID:   in.CompanyID,
		Subject:     in.Subject,
		Description: in.Description,
		Department:  in.Department,
		Priority:    priority,
		Tags:        append([]string(nil), in.Tags...),
		Status:      "open",
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.tickets[t.ID] = t
	s.mu.Unlock()
	return t, nil
}

// Get implements Service.
func (s *MemoryService) Get(ctx context.Context, companyID, id string) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok || t.CompanyID != companyID {
		return nil, fmt.Errorf("ticket %s not found", id)
	}
	cp := *t
	return &cp, nil
}
