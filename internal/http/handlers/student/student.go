// Package student contains all HTTP handlers related to the Student resource.
//
// Handlers use the closure/factory pattern: each exported function
// accepts its dependencies (the storage interface) and returns a
// function with the exact signature the router needs. The factory runs
// once at startup; the returned handler runs on every request and
// reaches its dependencies through the closure:
//
//	router.HandleFunc("POST /students/{$}", student.New(storage))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"student-records-api/internal/storage"
	"student-records-api/internal/types"
	"student-records-api/internal/utils/response"
)

var validate = validator.New()

// parseID extracts and converts the {id} path segment. The URL gives
// us a string; the database needs int64.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id: must be an integer")
	}
	return id, nil
}

// writeStorageError maps storage errors onto HTTP statuses: a missing
// record is the client's problem (404), everything else is ours (500).
func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrStudentNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}

// decodeBody decodes a JSON request body into dst, translating an
// empty body into a clear client error.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}
	return err
}

// Home handles GET /
// Returns a welcome message so a bare probe of the service root
// answers something friendly.
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "Welcome to the Student Records API!"})
	}
}

// New handles POST /students/
// Creates a new student from the JSON request body.
//
// Request body:
//
//	{ "name": "Alice", "age": 20, "grade": "A", "enrollment_date": "2024-09-01" }
//
// Success response (200): the created record including its assigned id.
// Errors: 400 on empty body, malformed JSON, or failed validation.
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var student types.Student
		if err := decodeBody(r, &student); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Full schema validation: name length, grade set, required
		// fields. This is the only write path besides PUT that
		// enforces the schema.
		if err := validate.Struct(student); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		lastID, err := storage.CreateStudent(student)
		if err != nil {
			writeStorageError(w, err)
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))

		student.ID = lastID
		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetByID handles GET /students/{id}
// Success response (200): the matching record.
// Errors: 400 on a non-integer id, 404 when no record matches.
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting a student", slog.String("id", r.PathValue("id")))

		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student, err := storage.GetStudentByID(id)
		if err != nil {
			slog.Error("error getting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /students/
// Returns a JSON array of all students, [] (never null) when empty.
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents()
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /students/{id}
// Replaces ALL mutable fields of an existing student. The payload is
// validated with the same rules as creation.
//
// Success response (200): the updated record.
// Errors: 400 on invalid id, empty body, or validation failure;
// 404 when no record matches.
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("updating a student", slog.String("id", r.PathValue("id")))

		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		var student types.Student
		if err := decodeBody(r, &student); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(student); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		updated, err := storage.UpdateStudentByID(id, student)
		if err != nil {
			slog.Error("error updating student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Patch handles PATCH /students/{id}
// Merge-style update: only the recognized fields present in the body
// change; every other field keeps its stored value. Unrecognized keys
// are dropped silently — they are not an error.
//
// Unlike POST and PUT, the payload is NOT schema-validated: recognized
// keys are written as-is whatever their value. Existing clients depend
// on this permissiveness, so do not tighten it here.
//
// Success response (200): the updated record.
// Errors: 400 on invalid id or malformed JSON; 404 when no record
// matches.
func Patch(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("patching a student", slog.String("id", r.PathValue("id")))

		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Decode into raw messages first so unknown keys can be
		// dropped and known keys keep whatever JSON type they came
		// with.
		var raw map[string]json.RawMessage
		if err := decodeBody(r, &raw); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updates, err := types.ParsePatch(raw)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updated, err := storage.PatchStudentByID(id, updates)
		if err != nil {
			slog.Error("error patching student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		slog.Info("student patched", slog.Int64("id", id),
			slog.Int("fields", len(updates)))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /students/{id}
// Permanently removes a student record.
//
// Success response (200):
//
//	{ "status": "ok", "message": "student deleted successfully" }
//
// Errors: 400 on invalid id, 404 when no record matches.
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("deleting a student", slog.String("id", r.PathValue("id")))

		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := storage.DeleteStudentByID(id); err != nil {
			slog.Error("error deleting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  response.StatusOK,
			"message": "student deleted successfully",
		})
	}
}

// Search handles GET /students/search/?name=<substring>
// Returns every student whose name contains the substring,
// case-insensitively, in storage order. No match is an empty array,
// not an error. An absent name parameter matches everything.
func Search(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		slog.Info("searching students", slog.String("name", name))

		students, err := storage.SearchStudentsByName(name)
		if err != nil {
			slog.Error("error searching students",
				slog.String("name", name),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}
