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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage-platform/internal/tool"
	"engage-platform/pkg/config"
	"engage-platform/pkg/log"
	"engage-platform/pkg/secrets"
)

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	logger, err := log.NewLogger(&log.Config{Level: "error"})
	require.NoError(t, err)
	return logger
}

func externalTool(method, url string, timeoutMS, retries int) *tool.Tool {
	return &tool.Tool{
		ID:        "t-ext",
		CompanyID: "acme",
		Name:      "Lookup User",
		Slug:      "lookup-user",
		Type:      tool.TypeExternal,
		Enabled:   true,
		Config: tool.Config{
			External: &tool.ExternalConfig{
				Method:    method,
				URL:       url,
				TimeoutMS: timeoutMS,
				Retries:   &retries,
			},
		},
	}
}

func newExternal(t *testing.T, store secrets.Store) *ExternalExecutor {
	t.Helper()
	return NewExternalExecutor(store, config.ExecutorConfig{DefaultTimeoutMS: 5000}, testLogger(t))
}

func TestExternalGetSuccess(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Ana"}`))
	}))
	defer srv.Close()

	exec := newExternal(t, secrets.NewMemoryStore())
	uTool := externalTool("GET", srv.URL+"/users/{id}", 1000, 0)

	result, err := exec.Execute(context.Background(), uTool, map[string]any{"id": float64(42)})
	require.NoError(t, err)
	assert.Equal(t, "/users/42", gotPath)
	assert.Equal(t, "42", gotQuery)
	assert.Equal(t, 200, result["status_code"])
	body, ok := result["response_body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ana", body["name"])
}

func TestExternalPostSendsJSONBody(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	store := secrets.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "API_KEY", "s3cr3t"))

	exec := newExternal(t, store)
	uTool := externalTool("POST", srv.URL+"/orders", 1000, 0)
	uTool.Config.External.Headers = []tool.Header{
		{Key: "Authorization", Value: "Bearer {{secret.API_KEY}}"},
	}

	result, err := exec.Execute(context.Background(), uTool, map[string]any{"sku": "A-1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cr3t", gotAuth)
	assert.Equal(t, "A-1", gotBody["sku"])
	assert.Equal(t, 201, result["status_code"])
}

func TestExternalRetriesOn500(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	exec := newExternal(t, secrets.NewMemoryStore())
	uTool := externalTool("GET", srv.URL, 2000, 2)

	_, err := exec.Execute(context.Background(), uTool, nil)
	require.Error(t, err)
	var extErr *ExternalError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, 500, extErr.StatusCode)
	assert.EqualValues(t, 3, attempts.Load(), "1 initial attempt + 2 retries")
}

func TestExternalDefaultRetriesWhenConfigOmitsThem(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	exec := NewExternalExecutor(secrets.NewMemoryStore(),
		config.ExecutorConfig{DefaultTimeoutMS: 2000, DefaultRetries: 2}, testLogger(t))
	uTool := externalTool("GET", srv.URL, 2000, 0)
	uTool.Config.External.Retries = nil

	_, err := exec.Execute(context.Background(), uTool, nil)
	require.Error(t, err)
	assert.EqualValues(t, 3, attempts.Load(), "1 initial attempt + 2 default retries")
}

func TestExternalNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	exec := newExternal(t, secrets.NewMemoryStore())
	uTool := externalTool("GET", srv.URL, 2000, 2)

	_, err := exec.Execute(context.Background(), uTool, nil)
	require.Error(t, err)
	var extErr *ExternalError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, 404, extErr.StatusCode)
	assert.EqualValues(t, 1, attempts.Load())
}

func TestExternalTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	exec := newExternal(t, secrets.NewMemoryStore())
	uTool := externalTool("GET", srv.URL, 50, 0)

	_, err := exec.Execute(context.Background(), uTool, nil)
	require.Error(t, err)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "Lookup User", timeoutErr.Tool)
	assert.Equal(t, 50, timeoutErr.Timeout)
}

func TestExternalConfigErrors(t *testing.T) {
	exec := newExternal(t, secrets.NewMemoryStore())

	tests := []struct {
		name string
		tool *tool.Tool
	}{
		{name: "bad method", tool: externalTool("TRACE", "https://api.example.com", 0, 0)},
		{name: "invalid url", tool: externalTool("GET", "not a url", 0, 0)},
		{name: "unresolved placeholder", tool: externalTool("GET", "https://api.example.com/{missing}", 0, 0)},
		{name: "unknown secret", tool: externalTool("GET", "https://api.example.com/{{secret.NOPE}}", 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exec.Execute(context.Background(), tt.tool, map[string]any{})
			require.Error(t, err)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestExternalNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text response"))
	}))
	defer srv.Close()

	exec := newExternal(t, secrets.NewMemoryStore())
	result, err := exec.Execute(context.Background(), externalTool("GET", srv.URL, 1000, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text response", result["response_body"])
}
