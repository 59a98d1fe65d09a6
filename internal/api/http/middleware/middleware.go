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

// Package middleware holds the HTTP middleware chain.
package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"engage-platform/pkg/auth"
)

// Middleware bundles the cross-cutting HTTP concerns.
type Middleware struct{}

// NewMiddleware creates the middleware bundle.
func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Identity reads the caller's company and agent from request headers and
// places them on the context. Tenancy comes from the gateway in front of
// this service; a request without a company is rejected.
func (m *Middleware) Identity() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		companyID := string(c.GetHeader("X-Company-ID"))
		if companyID == "" {
			c.JSON(consts.StatusUnauthorized, map[string]string{
				"error": "X-Company-ID header is required",
			})
			c.Abort()
			return
		}
		ctx = auth.WithCompanyID(ctx, companyID)
		if agentID := string(c.GetHeader("X-Agent-ID")); agentID != "" {
			ctx = auth.WithAgentID(ctx, agentID)
		}
		c.Next(ctx)
	}
}

// AccessLog logs one line per request with latency and status.
func (m *Middleware) AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		hlog.CtxInfof(ctx, "%s %s %d %s",
			c.Method(), c.Path(), c.Response.StatusCode(), time.Since(start))
	}
}

// CORS allows browser consoles to call the API.
func (m *Middleware) CORS() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Company-ID, X-Agent-ID")
		if string(c.Method()) == "OPTIONS" {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}
		c.Next(ctx)
	}
}
