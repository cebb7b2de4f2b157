package post

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/orm/ormtest"
	"github.com/stormhead-org/backoffice/internal/services"
)

type recordingStore struct {
	mu       sync.Mutex
	deleted  []string
	uploaded map[string]string
}

func (s *recordingStore) UploadFile(ctx context.Context, key string, contentType string, data io.Reader) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploaded == nil {
		s.uploaded = map[string]string{}
	}
	s.uploaded[key] = contentType + ":" + string(body)
	return nil
}

func (s *recordingStore) DeleteFiles(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, keys...)
	return nil
}

type fixture struct {
	db      *orm.PostgresClient
	raw     *gorm.DB
	store   *recordingStore
	service services.PostService
	author  *orm.User
	board   *orm.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, raw := ormtest.Open(t)
	store := &recordingStore{}
	return &fixture{
		db:      db,
		raw:     raw,
		store:   store,
		service: NewPostService(db, zap.NewNop(), store, nil),
		author:  ormtest.User(t, db, "author"),
		board:   ormtest.Board(t, db, "general"),
	}
}

var textContent = json.RawMessage(`{"type":"text","text":"hello"}`)

func files(keys ...string) []services.PostFileInput {
	inputs := make([]services.PostFileInput, 0, len(keys))
	for _, key := range keys {
		inputs = append(inputs, services.PostFileInput{
			ObjectKey:   key,
			FileName:    key + ".png",
			ContentType: "image/png",
			Size:        128,
		})
	}
	return inputs
}

func (f *fixture) create(t *testing.T, title string, keys ...string) *orm.Post {
	t.Helper()

	post, err := f.service.CreatePost(context.Background(), services.CreatePostInput{
		BoardUID:  f.board.UID,
		AuthorID:  f.author.ID,
		Title:     title,
		Content:   textContent,
		IsUse:     true,
		IsVisible: true,
		Files:     files(keys...),
	})
	require.NoError(t, err)
	return post
}

func objectKeys(post *orm.Post) []string {
	keys := make([]string, 0, len(post.Files))
	for _, file := range post.Files {
		keys = append(keys, file.ObjectKey)
	}
	return keys
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)

	post := f.create(t, " hello ", "a", "b")
	assert.Equal(t, "hello", post.Title)
	assert.Equal(t, f.board.ID, post.BoardID)
	require.NotNil(t, post.Board)
	assert.Equal(t, "general", post.Board.Slug)
	assert.Equal(t, []string{"a", "b"}, objectKeys(post))
	assert.JSONEq(t, string(textContent), string(post.Content))
}

func TestCreatePostRejectsInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input services.CreatePostInput
		want  error
	}{
		{
			name:  "blank title",
			input: services.CreatePostInput{BoardUID: f.board.UID, AuthorID: f.author.ID, Title: " ", Content: textContent},
			want:  lib.ErrInvalidArgument,
		},
		{
			name:  "image without url",
			input: services.CreatePostInput{BoardUID: f.board.UID, AuthorID: f.author.ID, Title: "x", Content: json.RawMessage(`{"type":"image"}`)},
			want:  lib.ErrInvalidArgument,
		},
		{
			name:  "unknown content type",
			input: services.CreatePostInput{BoardUID: f.board.UID, AuthorID: f.author.ID, Title: "x", Content: json.RawMessage(`{"type":"poll","text":"?"}`)},
			want:  lib.ErrInvalidArgument,
		},
		{
			name:  "missing content",
			input: services.CreatePostInput{BoardUID: f.board.UID, AuthorID: f.author.ID, Title: "x"},
			want:  lib.ErrInvalidArgument,
		},
		{
			name:  "unknown board",
			input: services.CreatePostInput{BoardUID: uuid.New(), AuthorID: f.author.ID, Title: "x", Content: textContent},
			want:  lib.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreatePost(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdatePostReplacesFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.create(t, "hello", "a", "b")

	title := "renamed"
	updated, err := f.service.UpdatePost(ctx, post.UID, services.UpdatePostInput{
		Title: &title,
		Files: files("b", "c"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, []string{"b", "c"}, objectKeys(updated))
	assert.Equal(t, []string{"a"}, f.store.deleted)
}

func TestUpdatePostKeepsUnsetFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.create(t, "hello", "a")

	hidden := false
	updated, err := f.service.UpdatePost(ctx, post.UID, services.UpdatePostInput{IsVisible: &hidden})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Title)
	assert.False(t, updated.IsVisible)
	assert.True(t, updated.IsUse)
	assert.Equal(t, []string{"a"}, objectKeys(updated))
	assert.Empty(t, f.store.deleted)

	cleared, err := f.service.UpdatePost(ctx, post.UID, services.UpdatePostInput{Files: []services.PostFileInput{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Files)
	assert.Equal(t, []string{"a"}, f.store.deleted)

	_, err = f.service.UpdatePost(ctx, post.UID, services.UpdatePostInput{Content: json.RawMessage(`{"type":"video"}`)})
	assert.ErrorIs(t, err, lib.ErrInvalidArgument)

	_, err = f.service.UpdatePost(ctx, uuid.New(), services.UpdatePostInput{IsVisible: &hidden})
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestDeletePostCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.create(t, "hello", "a", "b")
	other := f.create(t, "other")

	comment := ormtest.Comment(t, f.db, orm.PostThread, post.ID, f.author, "first")
	kept := ormtest.Comment(t, f.db, orm.PostThread, other.ID, f.author, "kept")
	_, err := f.db.InsertCommentLikeOnce(ctx, orm.PostThread, &orm.CommentLike{CommentID: comment.ID, UserID: f.author.ID})
	require.NoError(t, err)

	require.NoError(t, f.service.DeletePost(ctx, post.UID))

	_, err = f.service.GetPost(ctx, post.UID)
	assert.ErrorIs(t, err, lib.ErrNotFound)

	var count int64
	require.NoError(t, f.raw.Table(orm.PostThread.CommentTable).Where("owner_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.raw.Table(orm.PostThread.LikeTable).Where("comment_id = ?", comment.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.raw.Model(&orm.PostFile{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = f.db.SelectCommentByID(ctx, orm.PostThread, kept.ID)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, f.store.deleted)

	assert.ErrorIs(t, f.service.DeletePost(ctx, post.UID), lib.ErrNotFound)
}

func TestListPostsByBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	elsewhere := ormtest.Board(t, f.db, "elsewhere")
	for _, title := range []string{"one", "two", "three"} {
		f.create(t, title)
	}
	ormtest.Post(t, f.db, elsewhere, f.author, "four")

	all, err := f.service.ListPosts(ctx, services.ListPostsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.TotalAll)

	scoped, err := f.service.ListPosts(ctx, services.ListPostsInput{
		BoardUID: &f.board.UID,
		Query:    lib.ListQuery{Query: "t"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), scoped.TotalAll)
	assert.Equal(t, int64(2), scoped.TotalFiltered)
	for _, item := range scoped.Items {
		assert.Equal(t, f.board.ID, item.BoardID)
		require.NotNil(t, item.Author)
	}

	missing := uuid.New()
	_, err = f.service.ListPosts(ctx, services.ListPostsInput{BoardUID: &missing})
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestUploadFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file, err := f.service.UploadFile(ctx, services.UploadFileInput{
		FileName:    " Photo.JPG ",
		ContentType: "image/jpeg",
		Size:        5,
		Body:        strings.NewReader("bytes"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.ObjectKey, "posts/"))
	assert.True(t, strings.HasSuffix(file.ObjectKey, ".jpg"))
	assert.Equal(t, "Photo.JPG", file.FileName)
	assert.Equal(t, "image/jpeg:bytes", f.store.uploaded[file.ObjectKey])

	t.Run("default content type", func(t *testing.T) {
		file, err := f.service.UploadFile(ctx, services.UploadFileInput{FileName: "notes", Body: strings.NewReader("x")})
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", file.ContentType)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := f.service.UploadFile(ctx, services.UploadFileInput{FileName: " ", Body: strings.NewReader("x")})
		assert.ErrorIs(t, err, lib.ErrInvalidArgument)
	})

	t.Run("storage disabled", func(t *testing.T) {
		service := NewPostService(f.db, zap.NewNop(), nil, nil)
		_, err := service.UploadFile(ctx, services.UploadFileInput{FileName: "a.png", Body: strings.NewReader("x")})
		assert.ErrorIs(t, err, lib.ErrUnavailable)
	})
}
