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

package executor

import (
	"context"
	"fmt"

	"engage-platform/internal/agent"
	"engage-platform/internal/tool"
	"engage-platform/internal/tool/actions"
	"engage-platform/pkg/log"
)

// InternalExecutor dispatches to in-process action handlers. Handlers run
// to completion once dispatched; they are expected to be fast and
// non-blocking.
type InternalExecutor struct {
	registry *actions.Registry
	logger   *log.Logger
}

// NewInternalExecutor builds the in-process executor.
func NewInternalExecutor(registry *actions.Registry, logger *log.Logger) *InternalExecutor {
	return &InternalExecutor{registry: registry, logger: logger}
}

// Execute looks up the configured action and runs it. An unknown action is
// a configuration error; a handler failure is wrapped uniformly so callers
// never see a raw handler error.
func (e *InternalExecutor) Execute(ctx context.Context, t *tool.Tool, payload map[string]any, actor agent.Agent) (map[string]any, error) {
	internal := t.Config.Internal
	if internal == nil {
		return nil, &ConfigError{Reason: "internal tool has no internal config"}
	}
	handler, ok := e.registry.Get(internal.Action)
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown internal action %q", internal.Action)}
	}

	result, err := handler.Execute(ctx, actions.Invocation{
		Payload: payload,
		Config:  internal,
		Agent:   actor,
	})
	if err != nil {
		e.logger.Warn("internal action failed",
			"tool", t.Slug, "action", internal.Action, "error", err)
		return nil, &InternalError{Reason: err.Error()}
	}
	return result, nil
}
