package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
)

// CommentService manages one comment thread: roots and a single level of
// replies hanging off an owner (a post or a todo).
type CommentService interface {
	ListComments(ctx context.Context, input ListCommentsInput) (*CommentPage, error)
	GetComment(ctx context.Context, uid uuid.UUID) (*orm.Comment, error)
	CreateComment(ctx context.Context, input CreateCommentInput) (*orm.Comment, error)
	UpdateComment(ctx context.Context, input UpdateCommentInput) (bool, error)
	DeleteComment(ctx context.Context, input DeleteCommentInput) (*DeleteOutcome, error)
	DeleteManyComments(ctx context.Context, uids []uuid.UUID) (*BulkDeleteOutcome, error)
	ToggleLike(ctx context.Context, commentID int64, userID uuid.UUID) (*LikeOutcome, error)
}

// ListCommentsInput lists roots when ParentID is nil and the replies of
// ParentID otherwise.
type ListCommentsInput struct {
	OwnerID  int64
	ParentID *int64
	Sort     orm.CommentSort
	Order    lib.Order
	Limit    int
	Cursor   string
	ViewerID *uuid.UUID
}

type CommentView struct {
	orm.Comment
	IsLiked bool `json:"isLiked"`
	IsMine  bool `json:"isMine"`
}

type CommentPage = lib.ListResult[CommentView]

type CreateCommentInput struct {
	OwnerID  int64
	AuthorID uuid.UUID
	Content  string
	ParentID *int64
}

type UpdateCommentInput struct {
	UID      uuid.UUID
	AuthorID uuid.UUID
	Content  string
}

// DeleteCommentInput deletes on behalf of AuthorID when set; a nil AuthorID
// is a moderator delete.
type DeleteCommentInput struct {
	UID      uuid.UUID
	AuthorID *uuid.UUID
}

type DeleteOutcome struct {
	Deleted             int  `json:"deleted"`
	NotFound            bool `json:"notFound,omitempty"`
	Forbidden           bool `json:"forbidden,omitempty"`
	BlockedDueToReplies bool `json:"blockedDueToReplies,omitempty"`
}

type BulkDeleteOutcome struct {
	Deleted  int         `json:"deleted"`
	Blocked  []uuid.UUID `json:"blocked"`
	NotFound []uuid.UUID `json:"notFound"`
	Skipped  []uuid.UUID `json:"skipped"`
}

const LikeReasonNotFound = "NOT_FOUND"

type LikeOutcome struct {
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
	Liked     bool   `json:"liked"`
	LikeCount int64  `json:"likeCount"`
}
