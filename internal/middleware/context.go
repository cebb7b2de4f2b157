package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	userIDKey contextKey = iota
	tokenIDKey
)

func SetUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserID returns the viewer id taken from the bearer token.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func SetTokenID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, tokenIDKey, id)
}

// GetTokenID returns the id of the API token that authenticated the request.
func GetTokenID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(tokenIDKey).(int64)
	return id, ok
}
