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

package actions

import (
	"context"
	"fmt"

	"engage-platform/internal/conversation"
	"engage-platform/internal/ticket"
)

// NewBuiltinRegistry wires the standard action set against the platform
// collaborators.
func NewBuiltinRegistry(tickets ticket.Service, conversations conversation.Service) (*Registry, error) {
	return NewRegistry(
		&CreateTicketAction{Tickets: tickets},
		&TransferDepartmentAction{Conversations: conversations},
		&SendMessageAction{Conversations: conversations},
	)
}

// CreateTicketAction opens a support ticket. Subject and description come
// from the payload; department, priority and tags come from the tool config.
type CreateTicketAction struct {
	Tickets ticket.Service
}

// Name implements Handler.
func (a *CreateTicketAction) Name() string { return ActionCreateTicket }

// Execute implements Handler.
func (a *CreateTicketAction) Execute(ctx context.Context, in Invocation) (map[string]any, error) {
	subject := stringField(in.Payload, "subject")
	if subject == "" {
		return nil, fmt.Errorf("payload field subject is required")
	}
	t, err := a.Tickets.Create(ctx, ticket.CreateInput{
		CompanyID:   in.Agent.CompanyID,
		Subject:     subject,
		Description: stringField(in.Payload, "description"),
		Department:  in.Config.Department,
		Priority:    in.Config.Priority,
		Tags:        in.Config.Tags,
		CreatedBy:   in.Agent.ID,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"ticket_id": t.ID,
		"status":    t.Status,
		"priority":  t.Priority,
	}, nil
}

// TransferDepartmentAction moves a conversation to another department. The
// target department comes from the tool config, overridable per payload.
type TransferDepartmentAction struct {
	Conversations conversation.Service
}

// Name implements Handler.
func (a *TransferDepartmentAction) Name() string { return ActionTransferDepartment }

// Execute implements Handler.
func (a *TransferDepartmentAction) Execute(ctx context.Context, in Invocation) (map[string]any, error) {
	conversationID := stringField(in.Payload, "conversation_id")
	if conversationID == "" {
		return nil, fmt.Errorf("payload field conversation_id is required")
	}
	department := stringField(in.Payload, "department")
	if department == "" {
		department = in.Config.Department
	}
	if department == "" {
		return nil, fmt.Errorf("no target department in payload or tool config")
	}
	if err := a.Conversations.TransferDepartment(ctx, in.Agent.CompanyID, conversationID, department); err != nil {
		return nil, err
	}
	return map[string]any{
		"conversation_id": conversationID,
		"department":      department,
	}, nil
}

// SendMessageAction queues an outbound message on a conversation.
type SendMessageAction struct {
	Conversations conversation.Service
}

// Name implements Handler.
func (a *SendMessageAction) Name() string { return ActionSendMessage }

// Execute implements Handler.
func (a *SendMessageAction) Execute(ctx context.Context, in Invocation) (map[string]any, error) {
	conversationID := stringField(in.Payload, "conversation_id")
	body := stringField(in.Payload, "message")
	m, err := a.Conversations.SendMessage(ctx, in.Agent.CompanyID, conversationID, body, in.Agent.ID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"message_id":      m.ID,
		"conversation_id": m.ConversationID,
	}, nil
}
