package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
)

type TokenService interface {
	ListTokens(ctx context.Context, query lib.ListQuery) (*lib.ListResult[orm.Token], error)
	GetToken(ctx context.Context, uid uuid.UUID) (*orm.Token, error)
	// CreateToken returns the plain token once; only its hash is stored.
	CreateToken(ctx context.Context, input CreateTokenInput) (*orm.Token, string, error)
	UpdateToken(ctx context.Context, uid uuid.UUID, input UpdateTokenInput) (*orm.Token, error)
	DeleteToken(ctx context.Context, uid uuid.UUID) error
	// VerifyToken resolves a plain token to an active, unexpired token row.
	VerifyToken(ctx context.Context, plain string) (*orm.Token, error)
}

type CreateTokenInput struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type UpdateTokenInput struct {
	Name      *string    `json:"name"`
	IsUse     *bool      `json:"isUse"`
	ExpiresAt *time.Time `json:"expiresAt"`
}
