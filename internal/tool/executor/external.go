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
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"engage-platform/internal/tool"
	"engage-platform/pkg/config"
	"engage-platform/pkg/log"
	"engage-platform/pkg/metrics"
	"engage-platform/pkg/secrets"
)

// ExternalExecutor dispatches a tool invocation as an outbound HTTP call.
// URL and header values go through template expansion before the first
// attempt; a template failure never reaches the network.
type ExternalExecutor struct {
	secrets secrets.Store
	cfg     config.ExecutorConfig
	logger  *log.Logger
}

// NewExternalExecutor builds the HTTP executor.
func NewExternalExecutor(store secrets.Store, cfg config.ExecutorConfig, logger *log.Logger) *ExternalExecutor {
	if cfg.DefaultTimeoutMS <= 0 {
		cfg.DefaultTimeoutMS = 5000
	}
	return &ExternalExecutor{secrets: store, cfg: cfg, logger: logger}
}

// Execute resolves the tool's HTTP config against the payload and performs
// the call. A 2xx response returns {response_body, status_code, headers};
// anything else maps to a ConfigError, TimeoutError or ExternalError.
func (e *ExternalExecutor) Execute(ctx context.Context, t *tool.Tool, payload map[string]any) (map[string]any, error) {
	ext := t.Config.External
	if ext == nil {
		return nil, &ConfigError{Reason: "external tool has no external config"}
	}
	method := strings.ToUpper(ext.Method)
	if !tool.IsAllowedMethod(ext.Method) {
		return nil, &ConfigError{Reason: fmt.Sprintf("unsupported HTTP method %q", ext.Method)}
	}

	target, err := expandTemplate(ctx, ext.URL, payload, e.secrets)
	if err != nil {
		return nil, err
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &ConfigError{Reason: fmt.Sprintf("invalid URL %q", ext.URL)}
	}

	headers := make(map[string]string, len(ext.Headers))
	for _, h := range ext.Headers {
		value, err := expandTemplate(ctx, h.Value, payload, e.secrets)
		if err != nil {
			return nil, err
		}
		headers[h.Key] = value
	}

	timeoutMS := ext.TimeoutMS
	if timeoutMS <= 0 {
		timeoutMS = e.cfg.DefaultTimeoutMS
	}
	retries := e.cfg.DefaultRetries
	if ext.Retries != nil {
		retries = *ext.Retries
	}
	if retries < 0 {
		retries = 0
	}
	if e.cfg.MaxRetries > 0 && retries > e.cfg.MaxRetries {
		retries = e.cfg.MaxRetries
	}

	client := resty.New().
		SetTimeout(time.Duration(timeoutMS) * time.Millisecond).
		SetRetryCount(retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// Transient only: network errors, timeouts and 5xx. A 4xx
			// is the caller's fault and repeats identically.
			if err != nil {
				return true
			}
			return resp.StatusCode() >= 500
		}).
		OnBeforeRequest(func(_ *resty.Client, _ *resty.Request) error {
			metrics.ExternalAttemptTotal.WithLabelValues(t.Slug).Inc()
			return nil
		})

	req := client.R().SetContext(ctx).SetHeaders(headers)
	if method == "GET" {
		query := url.Values{}
		for key, value := range payload {
			query.Set(key, queryValue(value))
		}
		req.SetQueryParamsFromValues(query)
	} else {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	resp, err := req.Execute(method, target)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &TimeoutError{Tool: t.Name, Timeout: timeoutMS}
		}
		return nil, &ExternalError{Message: err.Error()}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		e.logger.Warn("external tool call failed",
			"tool", t.Slug, "method", method, "status", status)
		return nil, &ExternalError{
			Message:    fmt.Sprintf("upstream returned %s", resp.Status()),
			StatusCode: status,
		}
	}

	return map[string]any{
		"response_body": parseBody(resp.Body()),
		"status_code":   status,
		"headers":       flattenHeaders(resp),
	}, nil
}

// parseBody decodes a JSON response body, falling back to the raw text for
// non-JSON upstreams.
func parseBody(body []byte) any {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
		return decoded
	}
	return trimmed
}

func flattenHeaders(resp *resty.Response) map[string]string {
	out := make(map[string]string, len(resp.Header()))
	for key, values := range resp.Header() {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Client.Timeout") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "timeout")
}
