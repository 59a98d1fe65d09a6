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

// Package agent holds the minimal acting-principal view the execution core
// needs: identity, company, and the set of tools the agent may invoke.
package agent

import (
	"context"
)

// Agent is the acting principal on whose behalf a tool is executed.
type Agent struct {
	ID                string   `json:"id"`
	CompanyID         string   `json:"company_id"`
	Name              string   `json:"name,omitempty"`
	AuthorizedToolIDs []string `json:"authorized_tool_ids"`
}

// HasAccess reports whether the agent is linked to the tool.
func (a Agent) HasAccess(toolID string) bool {
	for _, id := range a.AuthorizedToolIDs {
		if id == toolID {
			return true
		}
	}
	return false
}

// Store provides agent lookup and tool access management.
type Store interface {
	// Get returns the agent; errors.ErrNotFound when absent.
	Get(ctx context.Context, companyID, id string) (Agent, error)
	// Put creates or replaces an agent.
	Put(ctx context.Context, a Agent) error
	// Grant links a tool to the agent's authorized set.
	Grant(ctx context.Context, companyID, agentID, toolID string) error
	// Revoke removes a tool from the agent's authorized set.
	Revoke(ctx context.Context, companyID, agentID, toolID string) error
}
