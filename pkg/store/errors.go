package store

import (
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"librarian/pkg/domain"
)

// translateError maps storage-native failures to domain error kinds.
// Domain errors raised by the services pass through unchanged; a domain
// error is never downgraded to a generic one. Anything unrecognized also
// propagates as-is.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 unique_violation; class 08 is connection failures,
		// 57P01 admin shutdown, 53300 too many connections.
		switch {
		case pgErr.Code == "23505":
			return conflictError(pgErr.ConstraintName + " " + pgErr.Detail)
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "57P01", pgErr.Code == "53300":
			return domain.NewDatabaseError("Database unavailable")
		}
		return err
	}
	msg := err.Error()
	// SQLite (tests) and drivers that do not expose structured errors.
	if strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") {
		return conflictError(msg)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, gorm.ErrInvalidDB) {
		return domain.NewDatabaseError("Database unavailable")
	}
	return err
}

// conflictError picks the message by the constraint the violation names,
// falling back to a generic conflict when it cannot be determined.
func conflictError(detail string) *domain.Error {
	detail = strings.ToLower(detail)
	switch {
	case strings.Contains(detail, "email"):
		return domain.NewConflictError("Member with this email already exists")
	case strings.Contains(detail, "isbn"):
		return domain.NewConflictError("Book with this ISBN already exists")
	case strings.Contains(detail, "genre"):
		return domain.NewConflictError("Genre with this name already exists")
	}
	return domain.NewConflictError("Resource already exists")
}
