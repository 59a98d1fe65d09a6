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
	"fmt"

	"engage-platform/pkg/errors"
)

// Resolution and authorization failures, raised before any record is written.
var (
	ErrToolNotFound       = fmt.Errorf("tool not found: %w", errors.ErrNotFound)
	ErrToolDisabled       = fmt.Errorf("tool disabled: %w", errors.ErrForbidden)
	ErrAgentNotAuthorized = fmt.Errorf("agent not authorized for tool: %w", errors.ErrForbidden)
	ErrRateLimited        = fmt.Errorf("tool rate limit exceeded: %w", errors.ErrForbidden)
)

// ConfigError reports invalid tool configuration: bad URL or method,
// unresolved template placeholder, unknown internal action. Fatal, never
// retried, and raised before any side effect.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "tool configuration error: " + e.Reason
}

// TimeoutError reports an external call that exceeded its configured
// timeout after exhausting retries.
type TimeoutError struct {
	Tool    string
	Timeout int // milliseconds
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution timeout: tool %q did not complete within %dms", e.Tool, e.Timeout)
}

// ExternalError reports a non-2xx upstream response or a network-level
// failure after retries were exhausted.
type ExternalError struct {
	Message    string
	StatusCode int // 0 when no response was received
}

func (e *ExternalError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("external execution failed: %s (status %d)", e.Message, e.StatusCode)
	}
	return "external execution failed: " + e.Message
}

// InternalError reports a registered action handler failure.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return "internal execution failed: " + e.Reason
}
