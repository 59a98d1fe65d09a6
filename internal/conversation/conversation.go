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

// Package conversation is the messaging collaborator consumed by the
// send_message and transfer_department internal actions. Channel-specific
// delivery (WhatsApp, Instagram, and the rest) lives behind the upstream
// messaging pipeline; this service only records the outbound intent.
package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is one outbound message queued on a conversation.
type Message struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	ConversationID string    `json:"conversation_id"`
	Body           string    `json:"body"`
	SentBy         string    `json:"sent_by"`
	SentAt         time.Time `json:"sent_at"`
}

// Service sends messages and moves conversations between departments.
type Service interface {
	SendMessage(ctx context.Context, companyID, conversationID, body, sentBy string) (*Message, error)
	TransferDepartment(ctx context.Context, companyID, conversationID, department string) error
}

// MemoryService is an in-memory Service used by the API server and tests.
type MemoryService struct {
	mu          sync.RWMutex
	messages    []*Message
	departments map[string]string // conversationID -> department
}

// NewMemoryService creates an empty in-memory conversation service.
func NewMemoryService() *MemoryService {
	return &MemoryService{departments: make(map[string]string)}
}

// SendMessage implements Service.
func (s *MemoryService) SendMessage(ctx context.Context, companyID, conversationID, body, sentBy string) (*Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}
	if body == "" {
		return nil, fmt.Errorf("message body is required")
	}
	m := &Message{
		ID:             uuid.NewString(),
		CompanyID:      companyID,
		ConversationID: conversationID,
		Body:           body,
		SentBy:         sentBy,
		SentAt:         time.Now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	return m, nil
}

// TransferDepartment implements Service.
func (s *MemoryService) TransferDepartment(ctx context.Context, companyID, conversationID, department string) error {
	if conversationID == "" {
		return fmt.Errorf("conversation_id is required")
	}
	if department == "" {
		return fmt.Errorf("department is required")
	}

	s.mu.Lock()
	s.departments[conversationID] = department
	s.mu.Unlock()
	return nil
}

// Department returns the current department of a conversation, if any.
func (s *MemoryService) Department(conversationID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.departments[conversationID]
	return d, ok
}

// Messages returns a copy of all recorded messages; test helper.
func (s *MemoryService) Messages() []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Message(nil), s.messages...)
}
