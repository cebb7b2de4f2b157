// Package ormtest opens throwaway SQLite databases with the production schema
// and seeds them with fixtures.
package ormtest

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/orm"
)

// Open returns a migrated client over a fresh database file and the raw gorm
// handle behind it. A single connection keeps transactions and the
// concurrent list queries from locking each other out.
func Open(t testing.TB) (*orm.PostgresClient, *gorm.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "backoffice.db")
	database, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), orm.Config())
	require.NoError(t, err)

	rawDatabase, err := database.DB()
	require.NoError(t, err)
	rawDatabase.SetMaxOpenConns(1)

	client := orm.NewClient(database)
	require.NoError(t, client.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, database
}

// User inserts a user with a unique email.
func User(t testing.TB, client *orm.PostgresClient, name string) *orm.User {
	t.Helper()

	user := &orm.User{
		ID:    uuid.New(),
		Name:  name,
		Email: fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
	}
	require.NoError(t, client.InsertUser(context.Background(), user))
	return user
}

func Board(t testing.TB, client *orm.PostgresClient, slug string) *orm.Board {
	t.Helper()

	board := &orm.Board{
		Slug:      slug,
		Name:      slug,
		IsUse:     true,
		IsVisible: true,
	}
	require.NoError(t, client.InsertBoard(context.Background(), board))
	return board
}

func Post(t testing.TB, client *orm.PostgresClient, board *orm.Board, author *orm.User, title string) *orm.Post {
	t.Helper()

	post := &orm.Post{
		BoardID:   board.ID,
		AuthorID:  author.ID,
		Title:     title,
		Content:   json.RawMessage(`{"type":"text","text":"hello"}`),
		IsUse:     true,
		IsVisible: true,
	}
	require.NoError(t, client.InsertPost(context.Background(), post))
	return post
}

func Todo(t testing.TB, client *orm.PostgresClient, author *orm.User, title string) *orm.Todo {
	t.Helper()

	todo := &orm.Todo{
		AuthorID: author.ID,
		Title:    title,
		IsUse:    true,
	}
	require.NoError(t, client.InsertTodo(context.Background(), todo))
	return todo
}

// Comment inserts a comment row directly, bypassing reply bookkeeping.
func Comment(t testing.TB, client *orm.PostgresClient, thread orm.Thread, ownerID int64, author *orm.User, content string) *orm.Comment {
	t.Helper()

	comment := &orm.Comment{
		OwnerID:  ownerID,
		AuthorID: author.ID,
		Content:  content,
	}
	require.NoError(t, client.InsertComment(context.Background(), thread, comment))
	return comment
}
