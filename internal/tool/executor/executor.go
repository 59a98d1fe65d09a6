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

// Package executor runs tool invocations end to end: resolve the tool,
// authorize the agent, validate the payload, dispatch to the internal or
// external executor, and record the outcome.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engage-platform/internal/agent"
	"engage-platform/internal/storage/execstore"
	"engage-platform/internal/storage/toolstore"
	"engage-platform/internal/tool"
	"engage-platform/internal/tool/validator"
	"engage-platform/pkg/config"
	"engage-platform/pkg/log"
	"engage-platform/pkg/metrics"
)

// Outcome is the caller-facing result of one execution.
type Outcome struct {
	Success           bool           `json:"success"`
	Status            string         `json:"status"` // success | failed
	Result            map[string]any `json:"result,omitempty"`
	Error             string         `json:"error,omitempty"`
	ExecutionTimeMS   int64          `json:"execution_time_ms"`
	ExecutionID       string         `json:"execution_id"`
	OutputDiagnostics []string       `json:"output_diagnostics,omitempty"`
}

// Executor is the execution facade. One call runs one tool invocation
// synchronously; the only blocking I/O is the bounded outbound HTTP call.
type Executor struct {
	tools     toolstore.Store
	agents    agent.Store
	records   execstore.Store
	validator *validator.Validator
	internal  *InternalExecutor
	external  *ExternalExecutor
	limiter   *rateLimiter
	logger    *log.Logger

	now func() time.Time
}

// New wires the execution facade.
func New(
	tools toolstore.Store,
	agents agent.Store,
	records execstore.Store,
	internal *InternalExecutor,
	external *ExternalExecutor,
	cfg config.ExecutorConfig,
	logger *log.Logger,
) *Executor {
	return &Executor{
		tools:     tools,
		agents:    agents,
		records:   records,
		validator: validator.New(),
		internal:  internal,
		external:  external,
		limiter:   newRateLimiter(cfg.RateLimits),
		logger:    logger,
		now:       time.Now,
	}
}

// Execute runs the tool identified by slug on behalf of the agent.
//
// Failures before dispatch (unknown tool, disabled tool, unauthorized
// agent, invalid payload, rate limit) return a typed error and write no
// execution record. Once dispatch starts, every path finalizes the record
// exactly once; dispatch failures return the failed outcome together with
// the typed error so callers can read either.
func (e *Executor) Execute(ctx context.Context, companyID, agentID, slug string, payload map[string]any) (*Outcome, error) {
	// Resolving.
	t, err := e.tools.GetBySlug(ctx, companyID, slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, slug)
	}

	// Authorizing. The agent link is checked before the enabled flag so an
	// unauthorized caller cannot learn whether a tool is disabled.
	actor, err := e.agents.Get(ctx, companyID, agentID)
	if err != nil {
		return nil, fmt.Errorf("%w: agent %s", ErrAgentNotAuthorized, agentID)
	}
	if !actor.HasAccess(t.ID) {
		return nil, fmt.Errorf("%w: agent %s, tool %s", ErrAgentNotAuthorized, agentID, slug)
	}
	if !t.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrToolDisabled, slug)
	}

	// Validating.
	if err := e.validator.ValidatePayload(t, payload); err != nil {
		if _, ok := err.(*validator.ValidationError); ok {
			metrics.ValidationFailTotal.Inc()
		}
		return nil, err
	}

	if !e.limiter.Allow(t.Slug) {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, slug)
	}

	// Recording: the record exists before any work starts.
	rec := &execstore.Record{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		ToolID:    t.ID,
		AgentID:   agentID,
		Input:     payload,
	}
	if err := e.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create execution record: %w", err)
	}

	started := e.now()

	// Dispatching.
	var result map[string]any
	var execErr error
	switch t.Type {
	case tool.TypeInternal:
		result, execErr = e.internal.Execute(ctx, t, payload, actor)
	case tool.TypeExternal:
		result, execErr = e.external.Execute(ctx, t, payload)
	default:
		execErr = &ConfigError{Reason: fmt.Sprintf("unknown tool type %q", t.Type)}
	}

	elapsed := e.now().Sub(started).Milliseconds()
	if elapsed < 0 {
		elapsed = -elapsed
	}
	metrics.ExecutionDuration.WithLabelValues(string(t.Type)).
		Observe(float64(elapsed) / 1000)

	if execErr != nil {
		return e.finishFailed(ctx, t, rec, elapsed, execErr)
	}
	return e.finishSuccess(ctx, t, rec, elapsed, result)
}

func (e *Executor) finishSuccess(ctx context.Context, t *tool.Tool, rec *execstore.Record, elapsed int64, result map[string]any) (*Outcome, error) {
	out := &Outcome{
		Success:         true,
		Status:          execstore.StatusSuccess,
		Result:          result,
		ExecutionTimeMS: elapsed,
		ExecutionID:     rec.ID,
	}
	// An output contract violation downgrades to diagnostics; the work
	// already happened and its side effects stand.
	if err := e.validator.ValidateOutput(t, result); err != nil {
		if verr, ok := err.(*validator.ValidationError); ok {
			for _, f := range verr.Fields {
				out.OutputDiagnostics = append(out.OutputDiagnostics, f.Field+": "+f.Reason)
			}
		} else {
			out.OutputDiagnostics = append(out.OutputDiagnostics, err.Error())
		}
		e.logger.Warn("tool output violates declared schema",
			"tool", t.Slug, "diagnostics", out.OutputDiagnostics)
	}

	if err := e.records.Finish(ctx, rec.ID, execstore.Outcome{
		Status:    execstore.StatusSuccess,
		Result:    result,
		ElapsedMS: elapsed,
	}); err != nil {
		e.logger.Error("finalize execution record", "execution", rec.ID, "error", err)
	}
	if err := e.tools.TouchExecution(ctx, t.ID, e.now(), ""); err != nil {
		e.logger.Error("update tool execution marker", "tool", t.ID, "error", err)
	}
	metrics.ExecutionTotal.WithLabelValues(execstore.StatusSuccess).Inc()
	e.logger.Info("tool executed",
		"tool", t.Slug, "execution", rec.ID, "elapsed_ms", elapsed)
	return out, nil
}

func (e *Executor) finishFailed(ctx context.Context, t *tool.Tool, rec *execstore.Record, elapsed int64, execErr error) (*Outcome, error) {
	execError := classify(execErr)
	if err := e.records.Finish(ctx, rec.ID, execstore.Outcome{
		Status:    execstore.StatusFailed,
		Error:     execError,
		ElapsedMS: elapsed,
	}); err != nil {
		e.logger.Error("finalize execution record", "execution", rec.ID, "error", err)
	}
	if err := e.tools.TouchExecution(ctx, t.ID, e.now(), execError.Message); err != nil {
		e.logger.Error("update tool execution marker", "tool", t.ID, "error", err)
	}
	metrics.ExecutionTotal.WithLabelValues(execstore.StatusFailed).Inc()
	e.logger.Warn("tool execution failed",
		"tool", t.Slug, "execution", rec.ID, "kind", execError.Kind, "error", execError.Message)

	return &Outcome{
		Success:         false,
		Status:          execstore.StatusFailed,
		Error:           execErr.Error(),
		ExecutionTimeMS: elapsed,
		ExecutionID:     rec.ID,
	}, execErr
}

// classify maps a dispatch error onto the stored error taxonomy.
func classify(err error) *execstore.ExecError {
	switch typed := err.(type) {
	case *TimeoutError:
		return &execstore.ExecError{Message: typed.Error(), Kind: "timeout"}
	case *ExternalError:
		return &execstore.ExecError{Message: typed.Error(), Kind: "external", StatusCode: typed.StatusCode}
	case *InternalError:
		return &execstore.ExecError{Message: typed.Error(), Kind: "internal"}
	case *ConfigError:
		return &execstore.ExecError{Message: typed.Error(), Kind: "config"}
	default:
		return &execstore.ExecError{Message: err.Error(), Kind: "internal"}
	}
}
