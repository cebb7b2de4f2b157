package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
)

// BoardService defines the interface for board-related operations.
type BoardService interface {
	ListBoards(ctx context.Context, query lib.ListQuery) (*lib.ListResult[orm.Board], error)
	GetBoard(ctx context.Context, uid uuid.UUID) (*orm.Board, error)
	CreateBoard(ctx context.Context, input BoardInput) (*orm.Board, error)
	UpdateBoard(ctx context.Context, uid uuid.UUID, input BoardInput) (*orm.Board, error)
	DeleteBoard(ctx context.Context, uid uuid.UUID) error
}

type BoardInput struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int64  `json:"sortOrder"`
	IsUse       bool   `json:"isUse"`
	IsVisible   bool   `json:"isVisible"`
}
