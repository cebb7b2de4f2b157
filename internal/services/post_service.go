package services

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
)

// PostService defines the interface for post-related operations.
type PostService interface {
	ListPosts(ctx context.Context, input ListPostsInput) (*lib.ListResult[orm.Post], error)
	GetPost(ctx context.Context, uid uuid.UUID) (*orm.Post, error)
	CreatePost(ctx context.Context, input CreatePostInput) (*orm.Post, error)
	UpdatePost(ctx context.Context, uid uuid.UUID, input UpdatePostInput) (*orm.Post, error)
	DeletePost(ctx context.Context, uid uuid.UUID) error
	UploadFile(ctx context.Context, input UploadFileInput) (*PostFileInput, error)
}

type ListPostsInput struct {
	Query    lib.ListQuery
	BoardUID *uuid.UUID
}

// PostFileInput references an object already uploaded to the file store.
type PostFileInput struct {
	ObjectKey   string `json:"objectKey"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// UploadFileInput streams one attachment to the file store. The returned
// PostFileInput is then passed to CreatePost or UpdatePost.
type UploadFileInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CreatePostInput struct {
	BoardUID  uuid.UUID       `json:"boardUid"`
	AuthorID  uuid.UUID       `json:"authorId"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	IsUse     bool            `json:"isUse"`
	IsVisible bool            `json:"isVisible"`
	Files     []PostFileInput `json:"files"`
}

// UpdatePostInput changes only the fields that are set. A non-nil Files
// replaces every attachment of the post.
type UpdatePostInput struct {
	Title     *string         `json:"title"`
	Content   json.RawMessage `json:"content"`
	IsUse     *bool           `json:"isUse"`
	IsVisible *bool           `json:"isVisible"`
	Files     []PostFileInput `json:"files"`
}
