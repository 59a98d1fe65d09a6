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
	"errors"
	"fmt"
)

// ErrMalformedSchema marks a schema that is structurally invalid on the tool
// itself, as opposed to a payload that fails validation against it.
var ErrMalformedSchema = errors.New("malformed schema")

// FieldType is the primitive kind a schema field accepts. Fields are flat;
// nested schema recursion is not supported.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldObject  FieldType = "object"
	FieldArray   FieldType = "array"
)

// IsValid reports whether ft is a known field type.
func (ft FieldType) IsValid() bool {
	switch ft {
	case FieldString, FieldNumber, FieldBoolean, FieldObject, FieldArray:
		return true
	}
	return false
}

// SchemaField declares one input or output field of a tool.
type SchemaField struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required,omitempty"` // inputs only
	Description string    `json:"description,omitempty"`
}

// SchemaDefinition is the flat input/output contract a tool declares.
type SchemaDefinition struct {
	Inputs  []SchemaField `json:"inputs"`
	Outputs []SchemaField `json:"outputs,omitempty"`
}

// Validate checks the schema's own structure and returns an error wrapping
// ErrMalformedSchema on the first defect found.
func (s SchemaDefinition) Validate() error {
	if err := validateFields("inputs", s.Inputs); err != nil {
		return err
	}
	return validateFields("outputs", s.Outputs)
}

func validateFields(section string, fields []SchemaField) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s[%d] has no name", ErrMalformedSchema, section, i)
		}
		if f.Type == "" {
			return fmt.Errorf("%w: %s field %q has no type", ErrMalformedSchema, section, f.Name)
		}
		if !f.Type.IsValid() {
			return fmt.Errorf("%w: %s field %q has unknown type %q", ErrMalformedSchema, section, f.Name, f.Type)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %s field %q declared twice", ErrMalformedSchema, section, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Input returns the declared input field by name.
func (s SchemaDefinition) Input(name string) (SchemaField, bool) {
	for _, f := range s.Inputs {
		if f.Name == name {
			return f, true
		}
	}
	return SchemaField{}, false
}

func (s SchemaDefinition) clone() SchemaDefinition {
	cp := SchemaDefinition{}
	if s.Inputs != nil {
		cp.Inputs = append([]SchemaField(nil), s.Inputs...)
	}
	if s.Outputs != nil {
		cp.Outputs = append([]SchemaField(nil), s.Outputs...)
	}
	return cp
}
