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

// Package actions is the fixed registry of in-process capabilities internal
// tools dispatch to. Handlers perform their side effects through the ticket
// and conversation collaborators; the executor's job is strictly dispatch,
// parameter assembly, and uniform error wrapping.
package actions

import (
	"context"
	"fmt"

	"engage-platform/internal/agent"
	"engage-platform/internal/tool"
)

// Registered action names.
const (
	ActionCreateTicket       = "create_ticket"
	ActionTransferDepartment = "transfer_department"
	ActionSendMessage        = "send_message"
)

// Invocation carries everything a handler receives for one execution.
type Invocation struct {
	Payload map[string]any
	Config  *tool.InternalConfig
	Agent   agent.Agent
}

// Handler is one registered in-process capability.
type Handler interface {
	// Name is the stable action name internal configs reference.
	Name() string
	// Execute performs the action and returns a structured result map.
	Execute(ctx context.Context, in Invocation) (map[string]any, error)
}

// Registry maps action names to handlers. It is built once at startup so a
// duplicate registration is a configuration-load-time error.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a registry from the given handlers.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		if h.Name() == "" {
			return nil, fmt.Errorf("action handler with empty name")
		}
		if _, dup := r.handlers[h.Name()]; dup {
			return nil, fmt.Errorf("duplicate action handler %q", h.Name())
		}
		r.handlers[h.Name()] = h
	}
	return r, nil
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns all registered action names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// stringField reads an optional string from the payload.
func stringField(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
