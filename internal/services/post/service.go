package post

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/client"
	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/metrics"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/services"
)

type PostServiceImpl struct {
	db      *orm.PostgresClient
	log     *zap.Logger
	files   client.FileStore
	metrics *metrics.Metrics
}

// NewPostService builds the post service. files may be nil, in which case
// stored objects are left in place when attachments go away.
func NewPostService(db *orm.PostgresClient, log *zap.Logger, files client.FileStore, m *metrics.Metrics) services.PostService {
	return &PostServiceImpl{
		db:      db,
		log:     log,
		files:   files,
		metrics: m,
	}
}

func (s *PostServiceImpl) ListPosts(ctx context.Context, input services.ListPostsInput) (*lib.ListResult[orm.Post], error) {
	request := lib.ListRequest{
		Query:      input.Query,
		Projection: lib.Projection{Preloads: []string{"Board", "Author"}},
	}

	if input.BoardUID != nil {
		board, err := s.db.SelectBoardByUID(ctx, *input.BoardUID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: board %s", lib.ErrNotFound, input.BoardUID)
		}
		if err != nil {
			s.log.Error("error selecting board", zap.Error(err))
			return nil, fmt.Errorf("select board: %w", err)
		}
		request.Base = func(tx *gorm.DB) *gorm.DB {
			return tx.Where("board_id = ?", board.ID)
		}
	}

	start := time.Now()
	result, err := s.db.SelectPostsWithPagination(ctx, request)
	s.metrics.ObserveList("post", start)
	if err != nil {
		if lib.IsClientError(err) {
			return nil, err
		}
		s.log.Error("error listing posts", zap.Error(err))
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return result, nil
}

func (s *PostServiceImpl) GetPost(ctx context.Context, uid uuid.UUID) (*orm.Post, error) {
	post, err := s.db.SelectPostByUID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error selecting post", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("select post: %w", err)
	}
	return post, nil
}

func (s *PostServiceImpl) CreatePost(ctx context.Context, input services.CreatePostInput) (*orm.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is empty", lib.ErrInvalidArgument)
	}
	if err := validateContent(ctx, input.Content); err != nil {
		return nil, err
	}

	board, err := s.db.SelectBoardByUID(ctx, input.BoardUID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: board %s", lib.ErrNotFound, input.BoardUID)
	}
	if err != nil {
		s.log.Error("error selecting board", zap.Error(err))
		return nil, fmt.Errorf("select board: %w", err)
	}

	post := &orm.Post{
		BoardID:   board.ID,
		AuthorID:  input.AuthorID,
		Title:     title,
		Content:   input.Content,
		IsUse:     input.IsUse,
		IsVisible: input.IsVisible,
		Files:     buildFiles(0, input.Files),
	}

	err = s.db.InsertPost(ctx, post)
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return nil, fmt.Errorf("%w: unknown author", lib.ErrInvalidArgument)
	}
	if err != nil {
		s.log.Error("error inserting post", zap.Error(err))
		return nil, fmt.Errorf("insert post: %w", err)
	}

	return s.GetPost(ctx, post.UID)
}

func (s *PostServiceImpl) UpdatePost(ctx context.Context, uid uuid.UUID, input services.UpdatePostInput) (*orm.Post, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, fmt.Errorf("%w: title is empty", lib.ErrInvalidArgument)
	}
	if input.Content != nil {
		if err := validateContent(ctx, input.Content); err != nil {
			return nil, err
		}
	}

	var removed []string
	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		post, err := tx.SelectPostByUID(ctx, uid)
		if err != nil {
			return err
		}

		if input.Title != nil {
			post.Title = strings.TrimSpace(*input.Title)
		}
		if input.Content != nil {
			post.Content = input.Content
		}
		if input.IsUse != nil {
			post.IsUse = *input.IsUse
		}
		if input.IsVisible != nil {
			post.IsVisible = *input.IsVisible
		}

		if err := tx.UpdatePost(ctx, post); err != nil {
			return err
		}

		if input.Files == nil {
			return nil
		}

		kept := make(map[string]struct{}, len(input.Files))
		for _, file := range input.Files {
			kept[file.ObjectKey] = struct{}{}
		}
		for _, file := range post.Files {
			if _, ok := kept[file.ObjectKey]; !ok {
				removed = append(removed, file.ObjectKey)
			}
		}

		if err := tx.DeletePostFiles(ctx, post.ID); err != nil {
			return err
		}
		return tx.InsertPostFiles(ctx, buildFiles(post.ID, input.Files))
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error updating post", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("update post: %w", err)
	}

	s.deleteObjects(ctx, removed)
	return s.GetPost(ctx, uid)
}

// DeletePost removes the post together with its comment thread and
// attachments.
func (s *PostServiceImpl) DeletePost(ctx context.Context, uid uuid.UUID) error {
	var keys []string
	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		post, err := tx.SelectPostByUID(ctx, uid)
		if err != nil {
			return err
		}

		if err := tx.DeleteCommentsByOwner(ctx, orm.PostThread, post.ID); err != nil {
			return err
		}
		if err := tx.DeletePostFiles(ctx, post.ID); err != nil {
			return err
		}
		if err := tx.DeletePost(ctx, post); err != nil {
			return err
		}

		for _, file := range post.Files {
			keys = append(keys, file.ObjectKey)
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error deleting post", zap.String("uid", uid.String()), zap.Error(err))
		return fmt.Errorf("delete post: %w", err)
	}

	s.deleteObjects(ctx, keys)
	return nil
}

// UploadFile stores an attachment under a fresh key in the posts/ prefix.
func (s *PostServiceImpl) UploadFile(ctx context.Context, input services.UploadFileInput) (*services.PostFileInput, error) {
	if s.files == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", lib.ErrUnavailable)
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" || input.Body == nil {
		return nil, fmt.Errorf("%w: file is required", lib.ErrInvalidArgument)
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := "posts/" + uuid.NewString() + strings.ToLower(path.Ext(fileName))
	if err := s.files.UploadFile(ctx, key, contentType, input.Body); err != nil {
		s.log.Error("error uploading post file", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("upload file: %w", err)
	}

	s.log.Debug("uploaded post file", zap.String("key", key), zap.Int64("size", input.Size))
	return &services.PostFileInput{
		ObjectKey:   key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        input.Size,
	}, nil
}

// deleteObjects runs after commit; a storage failure leaves orphaned objects
// but never undoes the database change.
func (s *PostServiceImpl) deleteObjects(ctx context.Context, keys []string) {
	if s.files == nil || len(keys) == 0 {
		return
	}
	if err := s.files.DeleteFiles(ctx, keys); err != nil {
		s.log.Warn("error deleting stored files", zap.Strings("keys", keys), zap.Error(err))
	}
}

func validateContent(ctx context.Context, content []byte) error {
	if len(content) == 0 {
		return fmt.Errorf("%w: content is empty", lib.ErrInvalidArgument)
	}
	if err := (&orm.Post{Content: content}).ValidateContent(); err != nil {
		return fmt.Errorf("%w: %s", lib.ErrInvalidArgument, err)
	}
	return lib.ValidatePostContent(ctx, content)
}

func buildFiles(postID int64, inputs []services.PostFileInput) []orm.PostFile {
	files := make([]orm.PostFile, 0, len(inputs))
	for _, input := range inputs {
		files = append(files, orm.PostFile{
			PostID:      postID,
			ObjectKey:   input.ObjectKey,
			FileName:    input.FileName,
			ContentType: input.ContentType,
			Size:        input.Size,
		})
	}
	return files
}
