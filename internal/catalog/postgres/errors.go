package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chinspect/chinspect/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE error codes (read-relevant only)
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrInvalidPassword       = "28P01"
	pgErrInsufficientPrivilege = "42501"
	pgErrSyntaxError           = "42601"
	pgErrUndefinedColumn       = "42703"
	pgErrUndefinedTable        = "42P01"
	pgErrQueryCanceled         = "57014"
)

// mapError translates pgx / pgconn errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(
			classifySQLState(pgErr.Code),
			fmt.Sprintf("%s: %s", msg, pgErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifySQLState maps SQLSTATE codes to ErrKind. ClickHouse reports
// most of its own exceptions with a generic internal SQLSTATE, so
// anything unrecognised counts as a query failure.
func classifySQLState(code string) errs.ErrKind {
	switch code {
	case pgErrUndefinedTable:
		return errs.ErrKindNotFound
	case pgErrInvalidPassword, pgErrInsufficientPrivilege:
		return errs.ErrKindPermissionDenied
	case pgErrQueryCanceled:
		return errs.ErrKindTimeout
	case pgErrSyntaxError, pgErrUndefinedColumn:
		return errs.ErrKindQueryFailed
	}

	// Class 08: connection exceptions
	if strings.HasPrefix(code, "08") {
		return errs.ErrKindConnectionFailed
	}
	return errs.ErrKindQueryFailed
}
