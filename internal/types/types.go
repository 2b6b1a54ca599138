// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"encoding/json"
	"fmt"
)

// Student represents a student record in our system.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package on create and full update. Partial updates bypass these
//     rules entirely (see ParsePatch).
//
// Age is a pointer so that a missing field fails "required" while an
// explicit 0 still passes; no age range is enforced. EnrollmentDate is
// a pointer because the field is optional — nil encodes as JSON null.
type Student struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"            validate:"required,min=3,max=50"`
	Age            *int    `json:"age"             validate:"required"`
	Grade          string  `json:"grade"           validate:"required,oneof=A B C D F"`
	EnrollmentDate *string `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
}

// Field names one student column that a partial update may touch.
type Field string

// The complete set of patchable fields. Anything else in a partial
// update payload is dropped without an error.
const (
	FieldName           Field = "name"
	FieldAge            Field = "age"
	FieldGrade          Field = "grade"
	FieldEnrollmentDate Field = "enrollment_date"
)

// patchableFields fixes the iteration order so patches apply
// deterministically regardless of JSON key order.
var patchableFields = []Field{FieldName, FieldAge, FieldGrade, FieldEnrollmentDate}

// FieldUpdate pairs one recognized field with its replacement value.
// The value carries whatever JSON type the client sent — partial
// updates perform no type or constraint checking.
type FieldUpdate struct {
	Field Field
	Value any
}

// ParsePatch filters a raw JSON object down to the recognized student
// fields. Unrecognized keys are silently ignored; they are not an
// error. Every returned Field comes from the fixed set above, never
// from client input, so the result is safe to splice into SQL as
// column names.
func ParsePatch(raw map[string]json.RawMessage) ([]FieldUpdate, error) {
	updates := make([]FieldUpdate, 0, len(raw))

	for _, field := range patchableFields {
		msg, ok := raw[string(field)]
		if !ok {
			continue
		}

		var value any
		if err := json.Unmarshal(msg, &value); err != nil {
			return nil, fmt.Errorf("ParsePatch: field %s: %w", field, err)
		}

		updates = append(updates, FieldUpdate{Field: field, Value: value})
	}

	return updates, nil
}
