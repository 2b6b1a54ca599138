package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-records-api/internal/types"
)

func TestParsePatch(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []types.FieldUpdate
	}{
		{
			"recognized fields kept",
			`{"name": "Alice", "age": 20}`,
			[]types.FieldUpdate{
				{Field: types.FieldName, Value: "Alice"},
				{Field: types.FieldAge, Value: float64(20)},
			},
		},
		{
			"unrecognized keys dropped silently",
			`{"foo": "bar", "grade": "B"}`,
			[]types.FieldUpdate{
				{Field: types.FieldGrade, Value: "B"},
			},
		},
		{
			"id is not patchable",
			`{"id": 99, "name": "Alice"}`,
			[]types.FieldUpdate{
				{Field: types.FieldName, Value: "Alice"},
			},
		},
		{
			"empty object",
			`{}`,
			[]types.FieldUpdate{},
		},
		{
			"only unrecognized keys",
			`{"foo": "bar", "email": "a@b.c"}`,
			[]types.FieldUpdate{},
		},
		{
			"null value kept",
			`{"enrollment_date": null}`,
			[]types.FieldUpdate{
				{Field: types.FieldEnrollmentDate, Value: nil},
			},
		},
		{
			// Values pass through with whatever JSON type they carry.
			"no type checking on values",
			`{"age": "not a number", "grade": 7}`,
			[]types.FieldUpdate{
				{Field: types.FieldAge, Value: "not a number"},
				{Field: types.FieldGrade, Value: float64(7)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(tt.body), &raw))

			updates, err := types.ParsePatch(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, updates)
		})
	}
}

func TestParsePatchOrderIsDeterministic(t *testing.T) {
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(
		[]byte(`{"grade": "B", "name": "Alice", "age": 21}`), &raw))

	updates, err := types.ParsePatch(raw)
	require.NoError(t, err)

	fields := make([]types.Field, 0, len(updates))
	for _, u := range updates {
		fields = append(fields, u.Field)
	}
	assert.Equal(t, []types.Field{types.FieldName, types.FieldAge, types.FieldGrade}, fields)
}
