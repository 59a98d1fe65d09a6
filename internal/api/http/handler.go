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

package http

import (
	"bytes"
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"engage-platform/internal/agent"
	appsvc "engage-platform/internal/app"
	"engage-platform/internal/storage/execstore"
	"engage-platform/internal/tool/executor"
	"engage-platform/internal/tool/validator"
	"engage-platform/pkg/auth"
	"engage-platform/pkg/errors"
	"engage-platform/pkg/log"
	"engage-platform/pkg/metrics"
)

// Handler serves the tool management and execution API.
type Handler struct {
	tools    *appsvc.ToolService
	executor *executor.Executor
	records  execstore.Store
	agents   agent.Store
	logger   *log.Logger
}

// NewHandler builds the HTTP handler.
func NewHandler(tools *appsvc.ToolService, exec *executor.Executor, records execstore.Store, agents agent.Store, logger *log.Logger) *Handler {
	return &Handler{
		tools:    tools,
		executor: exec,
		records:  records,
		agents:   agents,
		logger:   logger,
	}
}

// HealthCheck reports liveness.
// GET /api/health
func (h *Handler) HealthCheck(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// SystemMetrics exposes the Prometheus registry in text format.
// GET /api/system/metrics
func (h *Handler) SystemMetrics(c context.Context, ctx *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		ctx.JSON(consts.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	ctx.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

// CreateTool defines a new tool for the caller's company.
// POST /api/tools
func (h *Handler) CreateTool(c context.Context, ctx *app.RequestContext) {
	var in appsvc.CreateToolInput
	if err := ctx.BindJSON(&in); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	t, err := h.tools.Create(c, auth.GetCompanyID(c), auth.GetAgentID(c), in)
	if err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, t)
}

// ListTools returns the company's tools.
// GET /api/tools
func (h *Handler) ListTools(c context.Context, ctx *app.RequestContext) {
	tools, err := h.tools.List(c, auth.GetCompanyID(c))
	if err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"tools": tools, "count": len(tools)})
}

// GetTool returns one tool.
// GET /api/tools/:id
func (h *Handler) GetTool(c context.Context, ctx *app.RequestContext) {
	t, err := h.tools.Get(c, auth.GetCompanyID(c), ctx.Param("id"))
	if err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, t)
}

// UpdateTool applies a partial update.
// PUT /api/tools/:id
func (h *Handler) UpdateTool(c context.Context, ctx *app.RequestContext) {
	var in appsvc.UpdateToolInput
	if err := ctx.BindJSON(&in); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	t, err := h.tools.Update(c, auth.GetCompanyID(c), auth.GetAgentID(c), ctx.Param("id"), in)
	if err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, t)
}

// DeleteTool removes a tool unless it has recent execution history.
// DELETE /api/tools/:id
func (h *Handler) DeleteTool(c context.Context, ctx *app.RequestContext) {
	if err := h.tools.Delete(c, auth.GetCompanyID(c), ctx.Param("id")); err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"status": "deleted"})
}

type executeRequest struct {
	ToolSlug string         `json:"tool_slug,omitempty"`
	Payload  map[string]any `json:"payload"`
}

// ExecuteTool runs the tool named in the path on behalf of the caller.
// POST /api/tools/:slug/executions
func (h *Handler) ExecuteTool(c context.Context, ctx *app.RequestContext) {
	var req executeRequest
	if len(ctx.Request.Body()) > 0 {
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
	}
	h.execute(c, ctx, ctx.Param("slug"), req.Payload)
}

// Dispatch runs a tool named in the body, the production entry point used
// by conversation flows.
// POST /api/executions
func (h *Handler) Dispatch(c context.Context, ctx *app.RequestContext) {
	var req executeRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.ToolSlug == "" {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "tool_slug is required"})
		return
	}
	h.execute(c, ctx, req.ToolSlug, req.Payload)
}

func (h *Handler) execute(c context.Context, ctx *app.RequestContext, slug string, payload map[string]any) {
	companyID := auth.GetCompanyID(c)
	agentID := auth.GetAgentID(c)

	out, err := h.executor.Execute(c, companyID, agentID, slug, payload)
	if out != nil {
		// A record exists: the outcome is the contract, success or not.
		ctx.JSON(consts.StatusOK, out)
		return
	}
	h.writeError(c, ctx, err)
}

// GetExecution returns one execution record.
// GET /api/executions/:id
func (h *Handler) GetExecution(c context.Context, ctx *app.RequestContext) {
	rec, err := h.records.Get(c, auth.GetCompanyID(c), ctx.Param("id"))
	if err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, rec)
}

// ListToolExecutions returns a tool's recent executions.
// GET /api/tools/:id/executions?limit=50
func (h *Handler) ListToolExecutions(c context.Context, ctx *app.RequestContext) {
	companyID := auth.GetCompanyID(c)
	toolID := ctx.Param("id")
	if _, err := h.tools.Get(c, companyID, toolID); err != nil {
		h.writeError(c, ctx, err)
		return
	}
	limit := 50
	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := h.records.ListByTool(c, companyID, toolID, limit)
	if err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"executions": recs, "count": len(recs)})
}

type upsertAgentRequest struct {
	ID                string   `json:"id"`
	Name              string   `json:"name,omitempty"`
	AuthorizedToolIDs []string `json:"authorized_tool_ids,omitempty"`
}

// UpsertAgent creates or replaces an acting principal.
// POST /api/agents
func (h *Handler) UpsertAgent(c context.Context, ctx *app.RequestContext) {
	var req upsertAgentRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.ID == "" {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}
	a := agent.Agent{
		ID:                req.ID,
		CompanyID:         auth.GetCompanyID(c),
		Name:              req.Name,
		AuthorizedToolIDs: req.AuthorizedToolIDs,
	}
	if err := h.agents.Put(c, a); err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, a)
}

// GrantToolAccess links a tool to an agent's authorized set.
// POST /api/agents/:id/tools/:tool
func (h *Handler) GrantToolAccess(c context.Context, ctx *app.RequestContext) {
	companyID := auth.GetCompanyID(c)
	toolID := ctx.Param("tool")
	if _, err := h.tools.Get(c, companyID, toolID); err != nil {
		h.writeError(c, ctx, err)
		return
	}
	if err := h.agents.Grant(c, companyID, ctx.Param("id"), toolID); err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"status": "granted"})
}

// RevokeToolAccess removes a tool from an agent's authorized set.
// DELETE /api/agents/:id/tools/:tool
func (h *Handler) RevokeToolAccess(c context.Context, ctx *app.RequestContext) {
	if err := h.agents.Revoke(c, auth.GetCompanyID(c), ctx.Param("id"), ctx.Param("tool")); err != nil {
		h.writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"status": "revoked"})
}

// writeError maps service and executor errors onto HTTP statuses.
func (h *Handler) writeError(c context.Context, ctx *app.RequestContext, err error) {
	var verr *validator.ValidationError
	var cfgErr *executor.ConfigError

	switch {
	case stderrors.As(err, &verr):
		ctx.JSON(consts.StatusUnprocessableEntity, map[string]any{
			"error":  "schema validation failed",
			"fields": verr.Fields,
		})
	case stderrors.As(err, &cfgErr):
		ctx.JSON(consts.StatusUnprocessableEntity, map[string]string{"error": cfgErr.Error()})
	case stderrors.Is(err, executor.ErrRateLimited):
		ctx.JSON(consts.StatusTooManyRequests, map[string]string{"error": err.Error()})
	case stderrors.Is(err, errors.ErrNotFound):
		ctx.JSON(consts.StatusNotFound, map[string]string{"error": err.Error()})
	case stderrors.Is(err, errors.ErrForbidden):
		ctx.JSON(consts.StatusForbidden, map[string]string{"error": err.Error()})
	case stderrors.Is(err, errors.ErrConflict):
		ctx.JSON(consts.StatusConflict, map[string]string{"error": err.Error()})
	case stderrors.Is(err, errors.ErrInvalidArg):
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		// Unexpected errors stay out of the response body.
		hlog.CtxErrorf(c, "request failed: company=%s agent=%s path=%s error=%v",
			auth.GetCompanyID(c), auth.GetAgentID(c), string(ctx.Path()), err)
		ctx.JSON(consts.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
