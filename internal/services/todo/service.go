package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/metrics"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/services"
)

type TodoServiceImpl struct {
	db      *orm.PostgresClient
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewTodoService(db *orm.PostgresClient, log *zap.Logger, m *metrics.Metrics) services.TodoService {
	return &TodoServiceImpl{
		db:      db,
		log:     log,
		metrics: m,
	}
}

func (s *TodoServiceImpl) ListTodos(ctx context.Context, query lib.ListQuery) (*lib.ListResult[orm.Todo], error) {
	request := lib.ListRequest{
		Query:      query,
		Projection: lib.Projection{Preloads: []string{"Author"}},
	}

	start := time.Now()
	result, err := s.db.SelectTodosWithPagination(ctx, request)
	s.metrics.ObserveList("todo", start)
	if err != nil {
		if lib.IsClientError(err) {
			return nil, err
		}
		s.log.Error("error listing todos", zap.Error(err))
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return result, nil
}

func (s *TodoServiceImpl) GetTodo(ctx context.Context, uid uuid.UUID) (*orm.Todo, error) {
	todo, err := s.db.SelectTodoByUID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error selecting todo", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("select todo: %w", err)
	}
	return todo, nil
}

func (s *TodoServiceImpl) CreateTodo(ctx context.Context, input services.TodoInput) (*orm.Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is empty", lib.ErrInvalidArgument)
	}

	todo := &orm.Todo{
		AuthorID:    input.AuthorID,
		Title:       title,
		Description: input.Description,
		Priority:    input.Priority,
		IsDone:      input.IsDone,
		DueAt:       input.DueAt,
		IsUse:       input.IsUse,
	}

	err := s.db.InsertTodo(ctx, todo)
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return nil, fmt.Errorf("%w: unknown author", lib.ErrInvalidArgument)
	}
	if err != nil {
		s.log.Error("error inserting todo", zap.Error(err))
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	return s.GetTodo(ctx, todo.UID)
}

func (s *TodoServiceImpl) UpdateTodo(ctx context.Context, uid uuid.UUID, input services.TodoInput) (*orm.Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is empty", lib.ErrInvalidArgument)
	}

	todo, err := s.GetTodo(ctx, uid)
	if err != nil {
		return nil, err
	}

	todo.Title = title
	todo.Description = input.Description
	todo.Priority = input.Priority
	todo.IsDone = input.IsDone
	todo.DueAt = input.DueAt
	todo.IsUse = input.IsUse

	if err := s.db.UpdateTodo(ctx, todo); err != nil {
		s.log.Error("error updating todo", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

// DeleteTodo removes the todo and its whole comment thread.
func (s *TodoServiceImpl) DeleteTodo(ctx context.Context, uid uuid.UUID) error {
	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		todo, err := tx.SelectTodoByUID(ctx, uid)
		if err != nil {
			return err
		}
		if err := tx.DeleteCommentsByOwner(ctx, orm.TodoThread, todo.ID); err != nil {
			return err
		}
		return tx.DeleteTodo(ctx, todo)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error deleting todo", zap.String("uid", uid.String()), zap.Error(err))
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}
