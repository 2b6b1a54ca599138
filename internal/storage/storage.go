// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, never on a concrete database.
// Switching backends means implementing the interface for the new
// database and changing one line in main.go; handler tests can pass a
// fake that satisfies the interface instead of a real database.
package storage

import (
	"errors"

	"student-records-api/internal/types"
)

// ErrStudentNotFound is returned by every lookup, update, or delete
// when no record matches the requested id. Handlers translate it to a
// 404; any other storage error surfaces as a 500.
var ErrStudentNotFound = errors.New("student not found")

// Storage is the database contract. Any concrete type implementing all
// of these methods satisfies the interface implicitly.
type Storage interface {
	// CreateStudent inserts a new student record and returns the
	// auto-generated primary-key id. The id field of the argument is
	// ignored.
	CreateStudent(student types.Student) (int64, error)

	// GetStudentByID fetches a single student by primary key.
	GetStudentByID(id int64) (types.Student, error)

	// GetStudents returns every student in storage-native order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() ([]types.Student, error)

	// UpdateStudentByID replaces all mutable fields of an existing
	// student and returns the stored record.
	UpdateStudentByID(id int64, student types.Student) (types.Student, error)

	// PatchStudentByID applies the given field updates to an existing
	// student, leaving every other field unchanged, and returns the
	// stored record. Values are written as-is: no validation happens
	// at this layer or above it.
	PatchStudentByID(id int64, updates []types.FieldUpdate) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	DeleteStudentByID(id int64) error

	// SearchStudentsByName returns every student whose name contains
	// the given substring, case-insensitively, in storage-native
	// order. An empty result is an empty slice, not an error.
	SearchStudentsByName(substring string) ([]types.Student, error)
}
