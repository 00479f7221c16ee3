package native

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/chinspect/chinspect/internal/errs"
)

// ClickHouse server error codes (read-relevant only)
// Full list: src/Common/ErrorCodes.cpp in the server sources.
const (
	codeUnknownTable    = 60
	codeUnknownDatabase = 81
	codeTimeoutExceeded = 159
	codeTooManyQueries  = 202
	codeSocketTimeout   = 209
	codeAccessDenied    = 497
	codeAuthFailed      = 516
)

// mapError translates clickhouse-go native errors into *errs.Error.
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

	var ex *clickhouse.Exception
	if errors.As(err, &ex) {
		return errs.Wrap(
			classifyServerCode(ex.Code),
			fmt.Sprintf("%s: %s", msg, ex.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyServerCode maps ClickHouse exception codes to ErrKind.
func classifyServerCode(code int32) errs.ErrKind {
	switch code {
	case codeUnknownTable, codeUnknownDatabase:
		return errs.ErrKindNotFound
	case codeTimeoutExceeded, codeSocketTimeout:
		return errs.ErrKindTimeout
	case codeAccessDenied, codeAuthFailed:
		return errs.ErrKindPermissionDenied
	case codeTooManyQueries:
		return errs.ErrKindConnectionFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
