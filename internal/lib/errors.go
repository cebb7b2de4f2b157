package lib

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when an entity referenced by uid or id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound is returned when a reply names a parent that is missing,
	// belongs to another owner or is itself a reply.
	ErrParentNotFound = errors.New("parent comment not found")
	// ErrMalformedCursor is returned when a pagination token cannot be decoded
	// or does not match the requested sort field. Callers restart pagination.
	ErrMalformedCursor = errors.New("malformed cursor")
	// ErrInvalidArgument is returned for rejected input (blank content, unknown
	// sort key or filter column).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden is returned when the actor does not own the entity.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyExists is returned when a unique attribute (slug, prefix) is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrHasChildren is returned when deleting an entity that other rows still
	// depend on and that does not cascade to them.
	ErrHasChildren = errors.New("entity still has children")
	// ErrInvalidToken is returned when an API token is malformed, unknown,
	// disabled or expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnavailable is returned when an optional backend, such as the file
	// store, is not configured.
	ErrUnavailable = errors.New("unavailable")
)

// IsClientError reports whether err was caused by the request rather than
// by the data store.
func IsClientError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrParentNotFound, ErrMalformedCursor, ErrInvalidArgument, ErrForbidden, ErrAlreadyExists, ErrHasChildren, ErrInvalidToken} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HandleError converts a standard error into a gRPC status error.
// It maps specific, known errors to appropriate gRPC status codes.
func HandleError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	// Default to internal error unless a specific mapping is found.
	code := codes.Internal
	message := "An unexpected error occurred."

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		code = codes.NotFound
		message = "The requested resource was not found."
	case errors.Is(err, ErrParentNotFound):
		code = codes.FailedPrecondition
		message = "The parent comment was not found."
	case errors.Is(err, ErrMalformedCursor):
		code = codes.InvalidArgument
		message = "The pagination cursor is malformed; restart from the first page."
	case errors.Is(err, ErrInvalidArgument):
		code = codes.InvalidArgument
		message = err.Error()
	case errors.Is(err, ErrForbidden):
		code = codes.PermissionDenied
		message = "You do not have permission to perform this action."
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, gorm.ErrDuplicatedKey):
		code = codes.AlreadyExists
		message = "The resource already exists."
	case errors.Is(err, ErrHasChildren):
		code = codes.FailedPrecondition
		message = err.Error()
	case errors.Is(err, ErrInvalidToken):
		code = codes.Unauthenticated
		message = "missing or invalid token"
	case errors.Is(err, ErrUnavailable):
		code = codes.Unavailable
		message = err.Error()
	}

	return status.Error(code, message)
}

// NotFoundError returns a gRPC NotFound error.
func NotFoundError(message string) error {
	if message == "" {
		message = "The requested resource was not found."
	}
	return status.Error(codes.NotFound, message)
}

// InvalidArgumentError returns a gRPC InvalidArgument error.
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

// UnauthenticatedError returns a gRPC Unauthenticated error.
func UnauthenticatedError(message string) error {
	if message == "" {
		message = "missing or invalid token"
	}
	return status.Error(codes.Unauthenticated, message)
}
