package event

import "context"

const (
	COMMENT_CREATED      = "comment.created"
	COMMENT_UPDATED      = "comment.updated"
	COMMENT_DELETED      = "comment.deleted"
	COMMENT_LIKE_TOGGLED = "comment.like_toggled"
)

// Publisher writes one event to the broker. KafkaClient implements it.
type Publisher interface {
	WriteMessage(ctx context.Context, event string, message any) error
}

// CommentMessage describes a comment mutation. AuthorID is the author of the
// comment, not the actor.
type CommentMessage struct {
	Thread   string `json:"thread"`
	UID      string `json:"uid"`
	OwnerID  int64  `json:"owner_id"`
	AuthorID string `json:"author_id"`
}

type CommentLikeMessage struct {
	Thread    string `json:"thread"`
	CommentID int64  `json:"comment_id"`
	AuthorID  string `json:"author_id"`
	UserID    string `json:"user_id"`
	Liked     bool   `json:"liked"`
	LikeCount int64  `json:"like_count"`
}
