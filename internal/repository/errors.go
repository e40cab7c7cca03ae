package repository

import (
	"errors"
	"strings"

	"inkwell/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = &models.AppError{Code: models.CodeConflict, Reason: "duplicate", Message: "Resource already exists"}

// isUniqueViolation recognises unique-index failures from both supported drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps driver errors onto the application taxonomy. AppErrors raised by
// model hooks pass through unchanged.
func translate(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	if _, ok := models.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if isUniqueViolation(err) {
		return &models.AppError{
			Code:    ErrDuplicate.Code,
			Reason:  ErrDuplicate.Reason,
			Message: resource + " already exists",
			Err:     err,
		}
	}
	return models.NewInternalError(err)
}
