package board

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

type BoardServiceImpl struct {
	db      *orm.PostgresClient
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewBoardService(db *orm.PostgresClient, log *zap.Logger, m *metrics.Metrics) services.BoardService {
	return &BoardServiceImpl{
		db:      db,
		log:     log,
		metrics: m,
	}
}

func (s *BoardServiceImpl) ListBoards(ctx context.Context, query lib.ListQuery) (*lib.ListResult[orm.Board], error) {
	start := time.Now()
	result, err := s.db.SelectBoardsWithPagination(ctx, lib.ListRequest{Query: query})
	s.metrics.ObserveList("board", start)
	if err != nil {
		if lib.IsClientError(err) {
			return nil, err
		}
		s.log.Error("error listing boards", zap.Error(err))
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return result, nil
}

func (s *BoardServiceImpl) GetBoard(ctx context.Context, uid uuid.UUID) (*orm.Board, error) {
	board, err := s.db.SelectBoardByUID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Debug("board not found", zap.String("uid", uid.String()))
		return nil, lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error selecting board", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("select board: %w", err)
	}
	return board, nil
}

func (s *BoardServiceImpl) CreateBoard(ctx context.Context, input services.BoardInput) (*orm.Board, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	board := &orm.Board{}
	apply(board, input)

	err := s.db.InsertBoard(ctx, board)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: slug %q", lib.ErrAlreadyExists, input.Slug)
	}
	if err != nil {
		s.log.Error("error inserting board", zap.String("slug", input.Slug), zap.Error(err))
		return nil, fmt.Errorf("insert board: %w", err)
	}
	return board, nil
}

func (s *BoardServiceImpl) UpdateBoard(ctx context.Context, uid uuid.UUID, input services.BoardInput) (*orm.Board, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	board, err := s.GetBoard(ctx, uid)
	if err != nil {
		return nil, err
	}
	apply(board, input)

	err = s.db.UpdateBoard(ctx, board)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: slug %q", lib.ErrAlreadyExists, input.Slug)
	}
	if err != nil {
		s.log.Error("error updating board", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("update board: %w", err)
	}
	return board, nil
}

// DeleteBoard refuses to drop a board that still has posts.
func (s *BoardServiceImpl) DeleteBoard(ctx context.Context, uid uuid.UUID) error {
	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		board, err := tx.SelectBoardByUID(ctx, uid)
		if err != nil {
			return err
		}

		posts, err := tx.CountPostsByBoard(ctx, board.ID)
		if err != nil {
			return err
		}
		if posts > 0 {
			return fmt.Errorf("%w: board has %d posts", lib.ErrHasChildren, posts)
		}

		return tx.DeleteBoard(ctx, board)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lib.ErrNotFound
	}
	if errors.Is(err, lib.ErrHasChildren) {
		return err
	}
	if err != nil {
		s.log.Error("error deleting board", zap.String("uid", uid.String()), zap.Error(err))
		return fmt.Errorf("delete board: %w", err)
	}
	return nil
}

func validate(input services.BoardInput) error {
	if strings.TrimSpace(input.Slug) == "" {
		return fmt.Errorf("%w: slug is empty", lib.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is empty", lib.ErrInvalidArgument)
	}
	return nil
}

func apply(board *orm.Board, input services.BoardInput) {
	board.Slug = strings.TrimSpace(input.Slug)
	board.Name = strings.TrimSpace(input.Name)
	board.Description = input.Description
	board.SortOrder = input.SortOrder
	board.IsUse = input.IsUse
	board.IsVisible = input.IsVisible
}
