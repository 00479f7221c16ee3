package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chinspect/chinspect/internal/errs"
	"github.com/go-sql-driver/mysql"
)

// MySQL protocol error numbers, as emitted both by real MySQL servers
// and by ClickHouse's compatibility endpoint.
const (
	errTooManyConns = 1040
	errAccessDenied = 1044
	errBadPassword  = 1045
	errUnknownDB    = 1049
	errBadField     = 1054
	errSyntax       = 1064
	errNoSuchTable  = 1146
)

// mapError translates go-sql-driver errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyMySQLCode maps MySQL error numbers to ErrKind. ClickHouse
// tunnels most of its own exceptions through the generic 1105 code, so
// anything unrecognised counts as a query failure.
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case errAccessDenied, errBadPassword:
		return errs.ErrKindPermissionDenied
	case errUnknownDB, errNoSuchTable:
		return errs.ErrKindNotFound
	case errTooManyConns:
		return errs.ErrKindConnectionFailed
	case errBadField, errSyntax:
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
