package orm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
)

// Todo is a task card; its discussion lives in the todo thread.
type Todo struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UID         uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"uid"`
	AuthorID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"authorId"`
	Author      *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    int64      `gorm:"not null" json:"priority"`
	IsDone      bool       `gorm:"not null" json:"isDone"`
	DueAt       *time.Time `json:"dueAt"`
	IsUse       bool       `gorm:"not null" json:"isUse"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t *Todo) TableName() string {
	return "todo"
}

func (t *Todo) BeforeCreate(transaction *gorm.DB) error {
	if t.UID == uuid.Nil {
		t.UID = uuid.New()
	}
	return nil
}

type TodoSort string

const (
	TodoSortID        TodoSort = "id"
	TodoSortCreatedAt TodoSort = "createdAt"
	TodoSortTitle     TodoSort = "title"
	TodoSortPriority  TodoSort = "priority"
)

var TodoKeyset = lib.Keyset[Todo]{
	Sorts: map[string]lib.SortField[Todo]{
		string(TodoSortID):        {Column: "id", Kind: lib.KindInt, Value: func(t Todo) any { return t.ID }},
		string(TodoSortCreatedAt): {Column: "created_at", Kind: lib.KindTime, Value: func(t Todo) any { return t.CreatedAt }},
		string(TodoSortTitle):     {Column: "title", Kind: lib.KindString, Value: func(t Todo) any { return t.Title }},
		string(TodoSortPriority):  {Column: "priority", Kind: lib.KindInt, Value: func(t Todo) any { return t.Priority }},
	},
	DefaultSort:   string(TodoSortCreatedAt),
	DefaultOrder:  lib.OrderDesc,
	TieBreaker:    func(t Todo) int64 { return t.ID },
	SearchColumns: []string{"title", "description"},
	FilterColumns: []string{"title"},
	DateColumns:   []string{"created_at", "due_at"},
	UseColumn:     "is_use",
}

func (c *PostgresClient) SelectTodosWithPagination(ctx context.Context, request lib.ListRequest) (*lib.ListResult[Todo], error) {
	return lib.List(ctx, c.database, TodoKeyset, request)
}

func (c *PostgresClient) SelectTodoByUID(ctx context.Context, uid uuid.UUID) (*Todo, error) {
	var todo Todo
	tx := c.database.WithContext(ctx).
		Where("uid = ?", uid).
		Preload("Author").
		First(&todo)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &todo, nil
}

func (c *PostgresClient) SelectTodoByID(ctx context.Context, id int64) (*Todo, error) {
	var todo Todo
	tx := c.database.WithContext(ctx).
		Where("id = ?", id).
		First(&todo)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &todo, nil
}

func (c *PostgresClient) InsertTodo(ctx context.Context, todo *Todo) error {
	return c.database.WithContext(ctx).Omit("Author").Create(todo).Error
}

func (c *PostgresClient) UpdateTodo(ctx context.Context, todo *Todo) error {
	return c.database.WithContext(ctx).Omit("Author").Save(todo).Error
}

func (c *PostgresClient) DeleteTodo(ctx context.Context, todo *Todo) error {
	return c.database.WithContext(ctx).Delete(todo).Error
}
