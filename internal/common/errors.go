package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., sheet already tracked
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")
	ErrUpstream       = errors.New("upstream service failed") // spreadsheet or content store
	ErrPartialWrite   = errors.New("artifact committed but sheet update failed")
)

// PartialWriteError reports a submission where the artifact commit
// succeeded but the follow-up sheet writes did not. ArtifactURL lets the
// caller retry only the sheet step instead of re-committing.
type PartialWriteError struct {
	ArtifactURL string
	Err         error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("artifact committed at %s but sheet update failed: %v", e.ArtifactURL, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

func (e *PartialWriteError) Is(target error) bool { return target == ErrPartialWrite }

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrPartialWrite) || errors.Is(err, ErrUpstream) {
		return http.StatusBadGateway
	}

	// Check for pgx specific errors (example for unique constraint)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
