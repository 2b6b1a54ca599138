// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk — no network, no
// separate server process, nothing to install beyond the driver.
//
// The blank import below registers the sqlite3 driver with
// database/sql; the driver's init() does this when the package loads.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"student-records-api/internal/config"
	"student-records-api/internal/storage"
	"student-records-api/internal/types"

	// Side-effect import: registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage. It holds a
// *sql.DB, which is a connection pool: each statement checks a
// connection out of the pool and returns it when the statement (or the
// row cursor) is closed, so every request gets its own scoped session
// released on all exit paths. A single *sql.DB is safe for concurrent
// use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

const studentColumns = "id, name, age, grade, enrollment_date"

// New opens the SQLite database at cfg.StoragePath, creates the
// students table if it does not already exist, and returns a
// ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every start.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			name            TEXT    NOT NULL,
			age             INTEGER NOT NULL,
			grade           TEXT    NOT NULL,
			enrollment_date TEXT
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateStudent inserts a new row and returns its auto-generated id.
// The ? placeholders keep user input out of the SQL text entirely, so
// injection is impossible.
func (s *SQLite) CreateStudent(student types.Student) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO students (name, age, grade, enrollment_date) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(student.Name, student.Age, student.Grade, student.EnrollmentDate)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return lastID, nil
}

// GetStudentByID fetches exactly one row matched by primary key.
func (s *SQLite) GetStudentByID(id int64) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT " + studentColumns + " FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRow(id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all student rows as a slice.
func (s *SQLite) GetStudents() ([]types.Student, error) {
	// Columns are listed explicitly so Scan ordering survives schema
	// additions.
	stmt, err := s.Db.Prepare("SELECT " + studentColumns + " FROM students")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students, err := collectStudents(rows)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces all mutable fields of a student, then
// re-fetches the row so the caller gets exactly what is stored. A
// missing id surfaces as storage.ErrStudentNotFound from the re-fetch.
func (s *SQLite) UpdateStudentByID(id int64, student types.Student) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"UPDATE students SET name = ?, age = ?, grade = ?, enrollment_date = ? WHERE id = ?",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(student.Name, student.Age, student.Grade, student.EnrollmentDate, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	return s.GetStudentByID(id)
}

// PatchStudentByID applies the given field updates and returns the
// stored row. Column names come from the fixed set in types, never
// from client input; values are always bound parameters. Values are
// written without any type or constraint checks — SQLite's flexible
// typing stores whatever arrives.
func (s *SQLite) PatchStudentByID(id int64, updates []types.FieldUpdate) (types.Student, error) {
	// An empty patch (or one containing only unrecognized keys) still
	// has to report a missing id as not-found.
	if len(updates) == 0 {
		return s.GetStudentByID(id)
	}

	set := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+1)
	for _, update := range updates {
		set = append(set, string(update.Field)+" = ?")
		args = append(args, update.Value)
	}
	args = append(args, id)

	stmt, err := s.Db.Prepare(
		"UPDATE students SET " + strings.Join(set, ", ") + " WHERE id = ?",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("PatchStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(args...); err != nil {
		return types.Student{}, fmt.Errorf("PatchStudentByID: exec: %w", err)
	}

	return s.GetStudentByID(id)
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrStudentNotFound
	}

	return nil
}

// SearchStudentsByName returns every student whose name contains the
// substring. SQLite's LIKE is case-insensitive for ASCII, which gives
// the required case-insensitive containment match. The substring is a
// bound parameter concatenated with wildcards inside SQL, so it is
// matched as data.
func (s *SQLite) SearchStudentsByName(substring string) ([]types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT " + studentColumns + " FROM students WHERE name LIKE '%' || ? || '%'",
	)
	if err != nil {
		return nil, fmt.Errorf("SearchStudentsByName: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(substring)
	if err != nil {
		return nil, fmt.Errorf("SearchStudentsByName: query: %w", err)
	}
	defer rows.Close()

	students, err := collectStudents(rows)
	if err != nil {
		return nil, fmt.Errorf("SearchStudentsByName: %w", err)
	}

	return students, nil
}

// scanStudent reads one row's columns into a Student. The scan
// argument is either (*sql.Row).Scan or (*sql.Rows).Scan; variable
// order must match studentColumns.
func scanStudent(scan func(dest ...any) error) (types.Student, error) {
	var (
		student  types.Student
		age      int
		enrolled sql.NullString
	)

	if err := scan(&student.ID, &student.Name, &age, &student.Grade, &enrolled); err != nil {
		return types.Student{}, err
	}

	student.Age = &age
	if enrolled.Valid {
		student.EnrollmentDate = &enrolled.String
	}

	return student, nil
}

// collectStudents drains a row cursor into a slice. The slice starts
// empty but non-nil so an empty result encodes as [] rather than null.
func collectStudents(rows *sql.Rows) ([]types.Student, error) {
	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return students, nil
}
