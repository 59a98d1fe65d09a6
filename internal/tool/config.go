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

package tool

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config is the type-dependent execution config, a tagged union keyed by
// Tool.Type: exactly one of Internal/External is set.
type Config struct {
	Internal *InternalConfig `json:"internal,omitempty"`
	External *ExternalConfig `json:"external,omitempty"`
}

// InternalConfig selects a registered in-process action; the remaining
// fields are handler parameters merged into the execution context.
type InternalConfig struct {
	Action     string   `json:"action"`
	Department string   `json:"department,omitempty"`
	Priority   string   `json:"priority,omitempty"` // low | medium | high
	Tags       []string `json:"tags,omitempty"`
}

// Header is one outbound HTTP header; Value may embed {field} and
// {{secret.NAME}} placeholders.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExternalConfig describes an outbound HTTP call. URL may embed {field}
// payload placeholders and {{secret.NAME}} secret placeholders.
type ExternalConfig struct {
	Method    string   `json:"method"`
	URL       string   `json:"url"`
	Headers   []Header `json:"headers,omitempty"`
	TimeoutMS int      `json:"timeout_ms,omitempty"` // 0 means executor default (5000)
	Retries   *int     `json:"retries,omitempty"`    // additional attempts after the first; nil means executor default
}

// DecodeConfig parses raw config JSON for the given tool type.
func DecodeConfig(toolType Type, raw json.RawMessage) (Config, error) {
	switch toolType {
	case TypeInternal:
		var ic InternalConfig
		if err := json.Unmarshal(raw, &ic); err != nil {
			return Config{}, fmt.Errorf("invalid internal config: %w", err)
		}
		return Config{Internal: &ic}, nil
	case TypeExternal:
		var ec ExternalConfig
		if err := json.Unmarshal(raw, &ec); err != nil {
			return Config{}, fmt.Errorf("invalid external config: %w", err)
		}
		return Config{External: &ec}, nil
	default:
		return Config{}, fmt.Errorf("unknown tool type %q", toolType)
	}
}

// Validate checks that the config matches the tool type and carries the
// fields execution needs. Placeholder resolution and URL syntax are checked
// again pre-flight by the external executor.
func (c Config) Validate(toolType Type) error {
	switch toolType {
	case TypeInternal:
		if c.Internal == nil {
			return fmt.Errorf("internal tool requires internal config")
		}
		if c.Internal.Action == "" {
			return fmt.Errorf("internal config requires an action")
		}
		switch c.Internal.Priority {
		case "", "low", "medium", "high":
		default:
			return fmt.Errorf("invalid priority %q", c.Internal.Priority)
		}
		return nil
	case TypeExternal:
		if c.External == nil {
			return fmt.Errorf("external tool requires external config")
		}
		if c.External.URL == "" {
			return fmt.Errorf("external config requires a url")
		}
		if !IsAllowedMethod(c.External.Method) {
			return fmt.Errorf("invalid HTTP method %q", c.External.Method)
		}
		if c.External.TimeoutMS < 0 || (c.External.Retries != nil && *c.External.Retries < 0) {
			return fmt.Errorf("timeout_ms and retries must be non-negative")
		}
		return nil
	default:
		return fmt.Errorf("unknown tool type %q", toolType)
	}
}

// IsAllowedMethod reports whether m is an accepted HTTP verb,
// case-insensitively.
func IsAllowedMethod(m string) bool {
	switch strings.ToUpper(m) {
	case "GET", "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

func (c Config) clone() Config {
	cp := Config{}
	if c.Internal != nil {
		ic := *c.Internal
		if c.Internal.Tags != nil {
			ic.Tags = append([]string(nil), c.Internal.Tags...)
		}
		cp.Internal = &ic
	}
	if c.External != nil {
		ec := *c.External
		if c.External.Headers != nil {
			ec.Headers = append([]Header(nil), c.External.Headers...)
		}
		cp.External = &ec
	}
	return cp
}
