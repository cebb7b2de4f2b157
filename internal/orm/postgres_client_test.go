package orm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/orm/ormtest"
)

func TestMigrateIsIdempotent(t *testing.T) {
	client, raw := ormtest.Open(t)
	ctx := context.Background()

	require.NotPanics(t, func() {
		require.NoError(t, client.Migrate(ctx))
		require.NoError(t, client.Migrate(ctx))
	})

	for _, thread := range orm.Threads {
		assert.True(t, raw.Migrator().HasTable(thread.CommentTable), thread.CommentTable)
		assert.True(t, raw.Migrator().HasTable(thread.LikeTable), thread.LikeTable)
	}
}

func TestThreadTablesAreSeparate(t *testing.T) {
	client, raw := ormtest.Open(t)

	author := ormtest.User(t, client, "author")
	board := ormtest.Board(t, client, "general")
	post := ormtest.Post(t, client, board, author, "hello")
	todo := ormtest.Todo(t, client, author, "chores")

	ormtest.Comment(t, client, orm.PostThread, post.ID, author, "on post")
	ormtest.Comment(t, client, orm.TodoThread, todo.ID, author, "on todo")
	ormtest.Comment(t, client, orm.TodoThread, todo.ID, author, "again")

	var count int64
	require.NoError(t, raw.Table(orm.PostThread.CommentTable).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, raw.Table(orm.TodoThread.CommentTable).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
