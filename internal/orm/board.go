package orm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
)

type Board struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uid"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	SortOrder   int64     `gorm:"not null" json:"sortOrder"`
	IsUse       bool      `gorm:"not null" json:"isUse"`
	IsVisible   bool      `gorm:"not null" json:"isVisible"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (b *Board) TableName() string {
	return "board"
}

func (b *Board) BeforeCreate(transaction *gorm.DB) error {
	if b.UID == uuid.Nil {
		b.UID = uuid.New()
	}
	return nil
}

type BoardSort string

const (
	BoardSortID        BoardSort = "id"
	BoardSortCreatedAt BoardSort = "createdAt"
	BoardSortName      BoardSort = "name"
	BoardSortOrder     BoardSort = "sortOrder"
)

var BoardKeyset = lib.Keyset[Board]{
	Sorts: map[string]lib.SortField[Board]{
		string(BoardSortID):        {Column: "id", Kind: lib.KindInt, Value: func(b Board) any { return b.ID }},
		string(BoardSortCreatedAt): {Column: "created_at", Kind: lib.KindTime, Value: func(b Board) any { return b.CreatedAt }},
		string(BoardSortName):      {Column: "name", Kind: lib.KindString, Value: func(b Board) any { return b.Name }},
		string(BoardSortOrder):     {Column: "sort_order", Kind: lib.KindInt, Value: func(b Board) any { return b.SortOrder }},
	},
	DefaultSort:   string(BoardSortOrder),
	DefaultOrder:  lib.OrderAsc,
	TieBreaker:    func(b Board) int64 { return b.ID },
	SearchColumns: []string{"name", "slug", "description"},
	FilterColumns: []string{"name", "slug"},
	DateColumns:   []string{"created_at", "updated_at"},
	UseColumn:     "is_use",
	VisibleColumn: "is_visible",
}

func (c *PostgresClient) SelectBoardsWithPagination(ctx context.Context, request lib.ListRequest) (*lib.ListResult[Board], error) {
	return lib.List(ctx, c.database, BoardKeyset, request)
}

func (c *PostgresClient) SelectBoardByUID(ctx context.Context, uid uuid.UUID) (*Board, error) {
	var board Board
	tx := c.database.WithContext(ctx).
		Where("uid = ?", uid).
		First(&board)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &board, nil
}

func (c *PostgresClient) SelectBoardByID(ctx context.Context, id int64) (*Board, error) {
	var board Board
	tx := c.database.WithContext(ctx).
		Where("id = ?", id).
		First(&board)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &board, nil
}

func (c *PostgresClient) InsertBoard(ctx context.Context, board *Board) error {
	return c.database.WithContext(ctx).Create(board).Error
}

// UpdateBoard writes every column, so false booleans are persisted too.
func (c *PostgresClient) UpdateBoard(ctx context.Context, board *Board) error {
	return c.database.WithContext(ctx).Save(board).Error
}

func (c *PostgresClient) DeleteBoard(ctx context.Context, board *Board) error {
	return c.database.WithContext(ctx).Delete(board).Error
}

func (c *PostgresClient) CountPostsByBoard(ctx context.Context, boardID int64) (int64, error) {
	var count int64
	tx := c.database.WithContext(ctx).
		Model(&Post{}).
		Where("board_id = ?", boardID).
		Count(&count)
	return count, tx.Error
}
