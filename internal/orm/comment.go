package orm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
)

// Thread names the pair of tables backing one comment variant. Every thread
// shares the Comment and CommentLike row shapes.
type Thread struct {
	Name         string
	CommentTable string
	LikeTable    string
}

var (
	PostThread = Thread{Name: "post", CommentTable: "post_comment", LikeTable: "post_comment_like"}
	TodoThread = Thread{Name: "todo", CommentTable: "todo_comment", LikeTable: "todo_comment_like"}

	Threads = []Thread{PostThread, TodoThread}
)

// Comment is a root (ParentID == nil) or a reply to a root. OwnerID is the
// post or todo the thread hangs off.
type Comment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uid"`
	ParentID   *int64    `gorm:"index" json:"parentId"`
	OwnerID    int64     `gorm:"index;not null" json:"ownerId"`
	AuthorID   uuid.UUID `gorm:"type:uuid;index;not null" json:"authorId"`
	Author     *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	LikeCount  int64     `gorm:"not null;default:0" json:"likeCount"`
	ReplyCount int64     `gorm:"not null;default:0" json:"replyCount"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c *Comment) TableName() string {
	return "comment"
}

func (c *Comment) BeforeCreate(transaction *gorm.DB) error {
	if c.UID == uuid.Nil {
		c.UID = uuid.New()
	}
	return nil
}

func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

type CommentLike struct {
	CommentID int64     `gorm:"primaryKey;autoIncrement:false"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (l *CommentLike) TableName() string {
	return "comment_like"
}

type CommentSort string

const (
	CommentSortCreatedAt CommentSort = "createdAt"
	// CommentSortPopular orders by like_count; ties fall back to id, which
	// follows creation order because ids are assigned on insert.
	CommentSortPopular   CommentSort = "popular"
)

var CommentKeyset = lib.Keyset[Comment]{
	Sorts: map[string]lib.SortField[Comment]{
		string(CommentSortCreatedAt): {
			Column: "created_at",
			Kind:   lib.KindTime,
			Value:  func(c Comment) any { return c.CreatedAt },
		},
		string(CommentSortPopular): {
			Column: "like_count",
			Kind:   lib.KindInt,
			Value:  func(c Comment) any { return c.LikeCount },
		},
	},
	DefaultSort:   string(CommentSortCreatedAt),
	DefaultOrder:  lib.OrderDesc,
	TieBreaker:    func(c Comment) int64 { return c.ID },
	SearchColumns: []string{"content"},
	DateColumns:   []string{"created_at"},
}

func (c *PostgresClient) SelectCommentsWithPagination(ctx context.Context, thread Thread, request lib.ListRequest) (*lib.ListResult[Comment], error) {
	request.From = func(tx *gorm.DB) *gorm.DB {
		return tx.Table(thread.CommentTable)
	}
	return lib.List(ctx, c.database, CommentKeyset, request)
}

func (c *PostgresClient) SelectCommentByUID(ctx context.Context, thread Thread, uid uuid.UUID) (*Comment, error) {
	var comment Comment
	tx := c.database.WithContext(ctx).
		Table(thread.CommentTable).
		Preload("Author").
		Where("uid = ?", uid).
		First(&comment)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &comment, nil
}

// SelectCommentByUIDForUpdate loads and locks a comment inside a transaction.
func (c *PostgresClient) SelectCommentByUIDForUpdate(ctx context.Context, thread Thread, uid uuid.UUID) (*Comment, error) {
	var comment Comment
	tx := forUpdate(c.database.WithContext(ctx).Table(thread.CommentTable)).
		Where("uid = ?", uid).
		First(&comment)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &comment, nil
}

func (c *PostgresClient) SelectCommentByID(ctx context.Context, thread Thread, id int64) (*Comment, error) {
	var comment Comment
	tx := c.database.WithContext(ctx).
		Table(thread.CommentTable).
		Where("id = ?", id).
		First(&comment)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &comment, nil
}

func (c *PostgresClient) SelectCommentByIDForUpdate(ctx context.Context, thread Thread, id int64) (*Comment, error) {
	var comment Comment
	tx := forUpdate(c.database.WithContext(ctx).Table(thread.CommentTable)).
		Where("id = ?", id).
		First(&comment)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &comment, nil
}

func (c *PostgresClient) SelectCommentsByUIDsForUpdate(ctx context.Context, thread Thread, uids []uuid.UUID) ([]*Comment, error) {
	var comments []*Comment
	if len(uids) == 0 {
		return comments, nil
	}

	tx := forUpdate(c.database.WithContext(ctx).Table(thread.CommentTable)).
		Where("uid IN ?", uids).
		Order("id").
		Find(&comments)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return comments, nil
}

func (c *PostgresClient) InsertComment(ctx context.Context, thread Thread, comment *Comment) error {
	return c.database.WithContext(ctx).Table(thread.CommentTable).Omit("Author").Create(comment).Error
}

// UpdateCommentContent rewrites the content only when both uid and author
// match, and reports how many rows changed.
func (c *PostgresClient) UpdateCommentContent(ctx context.Context, thread Thread, uid uuid.UUID, authorID uuid.UUID, content string) (int64, error) {
	tx := c.database.WithContext(ctx).
		Table(thread.CommentTable).
		Where("uid = ? AND author_id = ?", uid, authorID).
		UpdateColumns(map[string]any{
			"content":    content,
			"updated_at": c.database.NowFunc(),
		})
	return tx.RowsAffected, tx.Error
}

func (c *PostgresClient) DeleteCommentsByIDs(ctx context.Context, thread Thread, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := c.database.WithContext(ctx).
		Table(thread.CommentTable).
		Where("id IN ?", ids).
		Delete(&Comment{})
	return tx.RowsAffected, tx.Error
}

// AddReplyCount applies delta to the parent's counter in the database,
// never through a read-modify-write in memory.
func (c *PostgresClient) AddReplyCount(ctx context.Context, thread Thread, id int64, delta int64) error {
	return c.database.WithContext(ctx).
		Table(thread.CommentTable).
		Where("id = ?", id).
		UpdateColumn("reply_count", gorm.Expr("reply_count + ?", delta)).Error
}

func (c *PostgresClient) AddLikeCount(ctx context.Context, thread Thread, id int64, delta int64) error {
	return c.database.WithContext(ctx).
		Table(thread.CommentTable).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
}

func (c *PostgresClient) SelectCommentLikeCount(ctx context.Context, thread Thread, id int64) (int64, error) {
	var count int64
	tx := c.database.WithContext(ctx).
		Table(thread.CommentTable).
		Select("like_count").
		Where("id = ?", id).
		Scan(&count)
	return count, tx.Error
}

func (c *PostgresClient) SelectCommentLike(ctx context.Context, thread Thread, commentID int64, userID uuid.UUID) (*CommentLike, error) {
	var like CommentLike
	tx := c.database.WithContext(ctx).
		Table(thread.LikeTable).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&like)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &like, nil
}

func (c *PostgresClient) SelectCommentLikesByUser(ctx context.Context, thread Thread, commentIDs []int64, userID uuid.UUID) ([]CommentLike, error) {
	var likes []CommentLike
	if len(commentIDs) == 0 {
		return likes, nil
	}

	tx := c.database.WithContext(ctx).
		Table(thread.LikeTable).
		Where("comment_id IN ? AND user_id = ?", commentIDs, userID).
		Find(&likes)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return likes, nil
}

// InsertCommentLikeOnce inserts the like inside a savepoint. A concurrent
// insert of the same (comment, user) pair is reported as inserted == false
// and leaves the surrounding transaction usable.
func (c *PostgresClient) InsertCommentLikeOnce(ctx context.Context, thread Thread, like *CommentLike) (bool, error) {
	err := c.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(thread.LikeTable).Create(like).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *PostgresClient) DeleteCommentLike(ctx context.Context, thread Thread, commentID int64, userID uuid.UUID) (int64, error) {
	tx := c.database.WithContext(ctx).
		Table(thread.LikeTable).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&CommentLike{})
	return tx.RowsAffected, tx.Error
}

func (c *PostgresClient) DeleteCommentLikesByCommentIDs(ctx context.Context, thread Thread, commentIDs []int64) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return c.database.WithContext(ctx).
		Table(thread.LikeTable).
		Where("comment_id IN ?", commentIDs).
		Delete(&CommentLike{}).Error
}

// DeleteCommentsByOwner removes a whole thread together with its likes.
func (c *PostgresClient) DeleteCommentsByOwner(ctx context.Context, thread Thread, ownerID int64) error {
	database := c.database.WithContext(ctx)

	ids := database.Table(thread.CommentTable).Select("id").Where("owner_id = ?", ownerID)
	err := database.Table(thread.LikeTable).
		Where("comment_id IN (?)", ids).
		Delete(&CommentLike{}).Error
	if err != nil {
		return err
	}

	return database.Table(thread.CommentTable).
		Where("owner_id = ?", ownerID).
		Delete(&Comment{}).Error
}
