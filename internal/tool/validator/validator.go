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

// Package validator checks execution payloads and results against a tool's
// declared schema. The Validator is a stateless value constructed once and
// injected into the executor.
package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"engage-platform/internal/tool"
)

// FieldError is one schema violation on a named field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every field violation found, so callers can report
// all problems at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("payload validation failed: [%s]", strings.Join(names, ", "))
}

// FieldNames returns the violating field names in declaration order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

// Validator validates payloads against tool schemas.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// ValidatePayload checks payload against the tool's declared inputs. Unknown
// extra keys are permitted. All violations are collected and returned as a
// single *ValidationError; a structurally broken schema returns an error
// wrapping tool.ErrMalformedSchema instead.
func (v *Validator) ValidatePayload(t *tool.Tool, payload map[string]any) error {
	if err := t.Schema.Validate(); err != nil {
		return err
	}
	var fieldErrs []FieldError
	for _, f := range t.Schema.Inputs {
		value, present := payload[f.Name]
		if isEmpty(value) {
			present = false
		}
		if !present {
			if f.Required {
				fieldErrs = append(fieldErrs, FieldError{
					Field:  f.Name,
					Reason: "missing required field",
				})
			}
			continue
		}
		if got, ok := kindOf(value); !ok || !kindMatches(f.Type, got) {
			fieldErrs = append(fieldErrs, FieldError{
				Field:  f.Name,
				Reason: fmt.Sprintf("invalid field type: expected %s got %s", f.Type, got),
			})
		}
	}
	if len(fieldErrs) > 0 {
		return &ValidationError{Fields: fieldErrs}
	}
	return nil
}

// ValidateOutput checks a produced result against the tool's declared
// outputs. The executor treats violations as diagnostics, not failures.
func (v *Validator) ValidateOutput(t *tool.Tool, result map[string]any) error {
	if err := t.Schema.Validate(); err != nil {
		return err
	}
	var fieldErrs []FieldError
	for _, f := range t.Schema.Outputs {
		value, present := result[f.Name]
		if !present || value == nil {
			continue
		}
		if got, ok := kindOf(value); !ok || !kindMatches(f.Type, got) {
			fieldErrs = append(fieldErrs, FieldError{
				Field:  f.Name,
				Reason: fmt.Sprintf("invalid field type: expected %s got %s", f.Type, got),
			})
		}
	}
	if len(fieldErrs) > 0 {
		return &ValidationError{Fields: fieldErrs}
	}
	return nil
}

// isEmpty treats nil and empty strings as absent; required checks reject both.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// kindOf maps a JSON-compatible Go value to its schema field type.
func kindOf(v any) (tool.FieldType, bool) {
	switch v.(type) {
	case string:
		return tool.FieldString, true
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return tool.FieldNumber, true
	case bool:
		return tool.FieldBoolean, true
	case map[string]any:
		return tool.FieldObject, true
	case []any:
		return tool.FieldArray, true
	default:
		return tool.FieldType(fmt.Sprintf("%T", v)), false
	}
}

func kindMatches(declared, got tool.FieldType) bool {
	return declared == got
}
