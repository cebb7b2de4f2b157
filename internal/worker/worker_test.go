package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	eventpkg "github.com/stormhead-org/backoffice/internal/event"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/orm/ormtest"
)

type message struct {
	event string
	data  []byte
}

type channelReader struct {
	messages chan message
}

func (r *channelReader) ReadMessage(ctx context.Context) (string, []byte, error) {
	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	case m := <-r.messages:
		return m.event, m.data, nil
	}
}

func encode(t *testing.T, v any) []byte {
	t.Helper()

	data, err := sonic.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestRouterHandle(t *testing.T) {
	var calls []string
	router := NewRouter(map[string][]EventHandler{
		"a": {
			func(ctx context.Context, data []byte) error {
				calls = append(calls, "first")
				return nil
			},
			func(ctx context.Context, data []byte) error {
				calls = append(calls, "second")
				return errors.New("boom")
			},
		},
	})

	err := router.Handle(context.Background(), "a", nil)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.NoError(t, router.Handle(context.Background(), "unknown", nil))
}

func TestWorkerRecomputesReputation(t *testing.T) {
	db, raw := ormtest.Open(t)
	author := ormtest.User(t, db, "author")
	board := ormtest.Board(t, db, "general")
	post := ormtest.Post(t, db, board, author, "hello")
	todo := ormtest.Todo(t, db, author, "chores")

	liked := ormtest.Comment(t, db, orm.PostThread, post.ID, author, "first")
	ormtest.Comment(t, db, orm.TodoThread, todo.ID, author, "second")
	require.NoError(t, raw.Table("post_comment").Where("id = ?", liked.ID).UpdateColumn("like_count", 3).Error)

	reader := &channelReader{messages: make(chan message)}
	w := NewWorker(zap.NewNop(), reader, db)
	require.NoError(t, w.Start())
	defer w.Stop()

	reader.messages <- message{event: "unknown.event", data: []byte("{}")}
	reader.messages <- message{event: eventpkg.COMMENT_CREATED, data: []byte("not json")}
	reader.messages <- message{
		event: eventpkg.COMMENT_LIKE_TOGGLED,
		data: encode(t, eventpkg.CommentLikeMessage{
			Thread:    orm.PostThread.Name,
			AuthorID:  author.ID.String(),
			UserID:    uuid.NewString(),
			Liked:     true,
			LikeCount: 3,
		}),
	}

	require.Eventually(t, func() bool {
		user, err := db.SelectUserByID(context.Background(), author.ID)
		return err == nil && user.Reputation == 3*10+2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCommentChangedHandler(t *testing.T) {
	db, _ := ormtest.Open(t)
	author := ormtest.User(t, db, "author")
	board := ormtest.Board(t, db, "general")
	post := ormtest.Post(t, db, board, author, "hello")
	ormtest.Comment(t, db, orm.PostThread, post.ID, author, "only")

	w := NewWorker(zap.NewNop(), &channelReader{}, db)
	ctx := context.Background()

	err := w.CommentChangedHandler(ctx, encode(t, eventpkg.CommentMessage{AuthorID: author.ID.String()}))
	require.NoError(t, err)

	user, err := db.SelectUserByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.Reputation)

	t.Run("unknown author is skipped", func(t *testing.T) {
		err := w.CommentChangedHandler(ctx, encode(t, eventpkg.CommentMessage{AuthorID: uuid.NewString()}))
		assert.NoError(t, err)
	})

	t.Run("malformed author id", func(t *testing.T) {
		err := w.CommentChangedHandler(ctx, encode(t, eventpkg.CommentMessage{AuthorID: "nope"}))
		assert.Error(t, err)
	})
}

func TestWorkerStopsWhileWaiting(t *testing.T) {
	db, _ := ormtest.Open(t)
	w := NewWorker(zap.NewNop(), &channelReader{messages: make(chan message)}, db)
	require.NoError(t, w.Start())

	done := make(chan struct{})
	go func() {
		_ = w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
