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
	"regexp"
	"strconv"
	"strings"

	"engage-platform/pkg/secrets"
)

// Template grammar:
//
//	{{secret.NAME}}  resolved through the secret store
//	{field}          resolved from the execution payload
//
// Any other brace syntax is rejected as a configuration error; leaving a
// placeholder unresolved would leak template text into live requests. The
// grammar is checked against the raw template only, so substituted values
// are never re-interpreted as placeholders.
var (
	tokenPattern  = regexp.MustCompile(`\{\{[^{}]*\}\}|\{[^{}]*\}`)
	secretPattern = regexp.MustCompile(`^\{\{\s*secret\.([A-Za-z0-9_.\-]+)\s*\}\}$`)
	fieldPattern  = regexp.MustCompile(`^\{([A-Za-z0-9_.\-]+)\}$`)
)

// expandTemplate substitutes secret and payload placeholders in s.
func expandTemplate(ctx context.Context, s string, payload map[string]any, store secrets.Store) (string, error) {
	var b strings.Builder
	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(s, -1) {
		b.WriteString(s[last:loc[0]])
		value, err := resolveToken(ctx, s[loc[0]:loc[1]], payload, store)
		if err != nil {
			return "", err
		}
		b.WriteString(value)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func resolveToken(ctx context.Context, token string, payload map[string]any, store secrets.Store) (string, error) {
	if m := secretPattern.FindStringSubmatch(token); m != nil {
		name := m[1]
		if store == nil {
			return "", &ConfigError{Reason: fmt.Sprintf("secret %q referenced but no secret store configured", name)}
		}
		value, err := store.Get(ctx, name)
		if err != nil {
			return "", &ConfigError{Reason: fmt.Sprintf("unresolved secret placeholder %q: %v", name, err)}
		}
		return value, nil
	}
	if m := fieldPattern.FindStringSubmatch(token); m != nil {
		value, ok := payload[m[1]]
		if !ok {
			return "", &ConfigError{Reason: fmt.Sprintf("unresolved template placeholder {%s}", m[1])}
		}
		return renderValue(value)
	}
	return "", &ConfigError{Reason: fmt.Sprintf("unsupported placeholder syntax %q", token)}
}

// renderValue turns a payload value into template text. Scalars render
// plainly, composites as compact JSON.
func renderValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case json.Number:
		return t.String(), nil
	case nil:
		return "", nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", &ConfigError{Reason: fmt.Sprintf("template value not renderable: %v", err)}
		}
		return string(raw), nil
	}
}

// queryValue renders a payload value for a URL query parameter.
func queryValue(v any) string {
	s, err := renderValue(v)
	if err != nil {
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	return s
}
