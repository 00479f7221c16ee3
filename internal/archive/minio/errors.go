package minio

import (
	"context"
	"errors"
	"net/http"

	"github.com/chinspect/chinspect/internal/errs"
	minioErr "github.com/minio/minio-go/v7"
)

// mapError translates a MinIO SDK error into a *errs.Error.
// It mirrors the mapError pattern used in the catalog drivers.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	// The SDK exposes a typed ErrorResponse for S3-protocol errors; a
	// response means the server was reached, so anything unclassified in
	// it is an operation failure rather than a connectivity one.
	var resp minioErr.ErrorResponse
	if errors.As(err, &resp) {
		return errs.Wrap(classifyResponse(resp), msg, err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyResponse maps an S3 error response to ErrKind. The HTTP
// status decides where it is conclusive; the S3 code catches errors
// that arrive under other statuses.
func classifyResponse(resp minioErr.ErrorResponse) errs.ErrKind {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errs.ErrKindNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return errs.ErrKindPermissionDenied
	case http.StatusBadRequest:
		return errs.ErrKindInvalidInput
	}

	switch resp.Code {
	case "NoSuchBucket", "NoSuchKey", "NoSuchUpload":
		return errs.ErrKindNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errs.ErrKindPermissionDenied
	case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError", "EntityTooLarge":
		return errs.ErrKindInvalidInput
	case "RequestTimeout", "SlowDown":
		return errs.ErrKindTimeout
	}
	return errs.ErrKindQueryFailed
}
