package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
)

type TodoService interface {
	ListTodos(ctx context.Context, query lib.ListQuery) (*lib.ListResult[orm.Todo], error)
	GetTodo(ctx context.Context, uid uuid.UUID) (*orm.Todo, error)
	CreateTodo(ctx context.Context, input TodoInput) (*orm.Todo, error)
	UpdateTodo(ctx context.Context, uid uuid.UUID, input TodoInput) (*orm.Todo, error)
	DeleteTodo(ctx context.Context, uid uuid.UUID) error
}

// TodoInput carries every writable field; AuthorID is ignored on update.
type TodoInput struct {
	AuthorID    uuid.UUID  `json:"authorId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    int64      `json:"priority"`
	IsDone      bool       `json:"isDone"`
	DueAt       *time.Time `json:"dueAt"`
	IsUse       bool       `json:"isUse"`
}
