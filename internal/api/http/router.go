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

// Package http serves the tool platform REST API on hertz.
package http

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"

	"engage-platform/internal/api/http/middleware"
)

// Router assembles the hertz server from handler and middleware.
type Router struct {
	handler    *Handler
	middleware *middleware.Middleware
}

// NewRouter creates the router.
func NewRouter(handler *Handler, mw *middleware.Middleware) *Router {
	return &Router{handler: handler, middleware: mw}
}

// Build creates the hertz server bound to addr and registers all routes.
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	options := append([]config.Option{server.WithHostPorts(addr)}, opts...)
	h := server.Default(options...)
	r.Register(h)
	return h
}

// Register attaches routes to an existing server, used by Build and tests.
func (r *Router) Register(h *server.Hertz) {
	h.Use(r.middleware.AccessLog(), r.middleware.CORS())

	api := h.Group("/api")
	api.GET("/health", r.handler.HealthCheck)

	system := api.Group("/system")
	{
		system.GET("/metrics", r.handler.SystemMetrics)
	}

	tools := api.Group("/tools", r.middleware.Identity())
	{
		tools.POST("", r.handler.CreateTool)
		tools.GET("", r.handler.ListTools)
		tools.GET("/:id", r.handler.GetTool)
		tools.PUT("/:id", r.handler.UpdateTool)
		tools.DELETE("/:id", r.handler.DeleteTool)
		tools.GET("/:id/executions", r.handler.ListToolExecutions)
		tools.POST("/:slug/executions", r.handler.ExecuteTool)
	}

	executions := api.Group("/executions", r.middleware.Identity())
	{
		executions.POST("", r.handler.Dispatch)
		executions.GET("/:id", r.handler.GetExecution)
	}

	agents := api.Group("/agents", r.middleware.Identity())
	{
		agents.POST("", r.handler.UpsertAgent)
		agents.POST("/:id/tools/:tool", r.handler.GrantToolAccess)
		agents.DELETE("/:id/tools/:tool", r.handler.RevokeToolAccess)
	}
}
