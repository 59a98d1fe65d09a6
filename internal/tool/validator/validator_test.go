// Copyright 2026 fanjia1024
// Tests for payload and output schema validation

package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage-platform/internal/tool"
)

func toolWithInputs(fields ...tool.SchemaField) *tool.Tool {
	return &tool.Tool{
		ID:     "t1",
		Name:   "Test Tool",
		Type:   tool.TypeInternal,
		Schema: tool.SchemaDefinition{Inputs: fields},
	}
}

func TestValidatePayload_RequiredField(t *testing.T) {
	v := New()
	tl := toolWithInputs(tool.SchemaField{Name: "customer_id", Type: tool.FieldString, Required: true})

	err := v.ValidatePayload(tl, map[string]any{})
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"customer_id"}, verr.FieldNames())
	assert.Contains(t, verr.Fields[0].Reason, "missing required field")

	// empty string counts as absent
	err = v.ValidatePayload(tl, map[string]any{"customer_id": ""})
	assert.Error(t, err)

	// supplying the declared type never errors for that field
	assert.NoError(t, v.ValidatePayload(tl, map[string]any{"customer_id": "c-42"}))
}

func TestValidatePayload_TypeCheck(t *testing.T) {
	v := New()
	tl := toolWithInputs(tool.SchemaField{Name: "amount", Type: tool.FieldNumber, Required: true})

	err := v.ValidatePayload(tl, map[string]any{"amount": "abc"})
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields[0].Reason, "expected number got string")

	// numeric value accepted regardless of extra unknown keys
	assert.NoError(t, v.ValidatePayload(tl, map[string]any{"amount": 42.5, "extra": "x"}))
	assert.NoError(t, v.ValidatePayload(tl, map[string]any{"amount": 7}))
}

func TestValidatePayload_AllKinds(t *testing.T) {
	v := New()
	tl := toolWithInputs(
		tool.SchemaField{Name: "s", Type: tool.FieldString},
		tool.SchemaField{Name: "n", Type: tool.FieldNumber},
		tool.SchemaField{Name: "b", Type: tool.FieldBoolean},
		tool.SchemaField{Name: "o", Type: tool.FieldObject},
		tool.SchemaField{Name: "a", Type: tool.FieldArray},
	)
	assert.NoError(t, v.ValidatePayload(tl, map[string]any{
		"s": "x",
		"n": 3.14,
		"b": true,
		"o": map[string]any{"k": "v"},
		"a": []any{1, 2},
	}))

	err := v.ValidatePayload(tl, map[string]any{
		"s": 1,
		"n": "x",
		"b": "yes",
		"o": []any{},
		"a": map[string]any{},
	})
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 5, "all violations collected, not fail-fast")
}

func TestValidatePayload_PermissiveExtraKeys(t *testing.T) {
	v := New()
	tl := toolWithInputs(tool.SchemaField{Name: "subject", Type: tool.FieldString, Required: true})
	assert.NoError(t, v.ValidatePayload(tl, map[string]any{
		"subject":    "Help",
		"undeclared": 123,
		"another":    []any{"x"},
	}))
}

func TestValidatePayload_MalformedSchema(t *testing.T) {
	v := New()
	tl := toolWithInputs(tool.SchemaField{Name: "subject", Type: "integer"})

	err := v.ValidatePayload(tl, map[string]any{"subject": "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tool.ErrMalformedSchema))
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "malformed schema is not a payload error")
}

func TestValidateOutput(t *testing.T) {
	v := New()
	tl := &tool.Tool{
		Schema: tool.SchemaDefinition{
			Outputs: []tool.SchemaField{{Name: "ticket_id", Type: tool.FieldString}},
		},
	}

	assert.NoError(t, v.ValidateOutput(tl, map[string]any{"ticket_id": "tk-1"}))
	// absent output fields are not violations
	assert.NoError(t, v.ValidateOutput(tl, map[string]any{}))

	err := v.ValidateOutput(tl, map[string]any{"ticket_id": 99})
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"ticket_id"}, verr.FieldNames())
}
