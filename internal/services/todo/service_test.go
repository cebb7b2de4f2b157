package todo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/orm/ormtest"
	"github.com/stormhead-org/backoffice/internal/services"
)

func TestTodoLifecycle(t *testing.T) {
	db, _ := ormtest.Open(t)
	service := NewTodoService(db, zap.NewNop(), nil)
	author := ormtest.User(t, db, "author")
	ctx := context.Background()

	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	todo, err := service.CreateTodo(ctx, services.TodoInput{
		AuthorID: author.ID,
		Title:    " write docs ",
		Priority: 2,
		DueAt:    &due,
		IsUse:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "write docs", todo.Title)
	require.NotNil(t, todo.Author)
	assert.Equal(t, author.ID, todo.Author.ID)

	updated, err := service.UpdateTodo(ctx, todo.UID, services.TodoInput{
		Title:    "write more docs",
		Priority: 1,
		IsDone:   true,
		IsUse:    true,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsDone)
	assert.Nil(t, updated.DueAt)

	reloaded, err := service.GetTodo(ctx, todo.UID)
	require.NoError(t, err)
	assert.Equal(t, "write more docs", reloaded.Title)
	assert.Equal(t, int64(1), reloaded.Priority)
	assert.Equal(t, author.ID, reloaded.AuthorID)

	_, err = service.UpdateTodo(ctx, todo.UID, services.TodoInput{Title: ""})
	assert.ErrorIs(t, err, lib.ErrInvalidArgument)
	_, err = service.CreateTodo(ctx, services.TodoInput{AuthorID: author.ID})
	assert.ErrorIs(t, err, lib.ErrInvalidArgument)
	_, err = service.GetTodo(ctx, uuid.New())
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestDeleteTodoRemovesThread(t *testing.T) {
	db, raw := ormtest.Open(t)
	service := NewTodoService(db, zap.NewNop(), nil)
	author := ormtest.User(t, db, "author")
	ctx := context.Background()

	todo := ormtest.Todo(t, db, author, "ship it")
	comment := ormtest.Comment(t, db, orm.TodoThread, todo.ID, author, "on it")
	_, err := db.InsertCommentLikeOnce(ctx, orm.TodoThread, &orm.CommentLike{CommentID: comment.ID, UserID: author.ID})
	require.NoError(t, err)

	post := ormtest.Post(t, db, ormtest.Board(t, db, "general"), author, "same id space")
	postComment := ormtest.Comment(t, db, orm.PostThread, post.ID, author, "untouched")

	require.NoError(t, service.DeleteTodo(ctx, todo.UID))

	var count int64
	require.NoError(t, raw.Table(orm.TodoThread.CommentTable).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, raw.Table(orm.TodoThread.LikeTable).Count(&count).Error)
	assert.Zero(t, count)

	_, err = db.SelectCommentByID(ctx, orm.PostThread, postComment.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, service.DeleteTodo(ctx, todo.UID), lib.ErrNotFound)
}

func TestListTodos(t *testing.T) {
	db, _ := ormtest.Open(t)
	service := NewTodoService(db, zap.NewNop(), nil)
	author := ormtest.User(t, db, "author")
	ctx := context.Background()

	for _, title := range []string{"alpha", "beta", "gamma"} {
		ormtest.Todo(t, db, author, title)
	}

	first, err := service.ListTodos(ctx, lib.ListQuery{Sort: string(orm.TodoSortTitle), Order: lib.OrderAsc, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "alpha", first.Items[0].Title)
	require.NotEmpty(t, first.NextCursor)

	second, err := service.ListTodos(ctx, lib.ListQuery{Sort: string(orm.TodoSortTitle), Order: lib.OrderAsc, Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "gamma", second.Items[0].Title)
	assert.Empty(t, second.NextCursor)
	assert.Equal(t, int64(3), second.TotalAll)

	_, err = service.ListTodos(ctx, lib.ListQuery{Cursor: "%%%"})
	assert.ErrorIs(t, err, lib.ErrMalformedCursor)
}
