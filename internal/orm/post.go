package orm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
)

// Post is a bulletin board post. Its comments live in the post thread.
type Post struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UID       uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"uid"`
	BoardID   int64           `gorm:"index;not null" json:"boardId"`
	Board     *Board          `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	AuthorID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"authorId"`
	Author    *User           `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title     string          `gorm:"not null" json:"title"`
	Content   json.RawMessage `gorm:"type:jsonb" json:"content"`
	ViewCount int64           `gorm:"not null;default:0" json:"viewCount"`
	IsUse     bool            `gorm:"not null" json:"isUse"`
	IsVisible bool            `gorm:"not null" json:"isVisible"`
	Files     []PostFile      `gorm:"foreignKey:PostID" json:"files,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (p *Post) TableName() string {
	return "post"
}

func (p *Post) ValidateContent() error {
	if len(p.Content) > 0 {
		if !json.Valid(p.Content) {
			return gorm.ErrInvalidData
		}

		// 1MB
		if len(p.Content) > 1024*1024 {
			return errors.New("post content exceeds 1MB limit")
		}
	}
	return nil
}

func (p *Post) BeforeCreate(transaction *gorm.DB) error {
	if p.UID == uuid.Nil {
		p.UID = uuid.New()
	}
	return p.ValidateContent()
}

func (p *Post) BeforeUpdate(transaction *gorm.DB) error {
	return p.ValidateContent()
}

// PostFile is an uploaded attachment; ObjectKey addresses it in object storage.
type PostFile struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID      int64     `gorm:"index;not null" json:"postId"`
	ObjectKey   string    `gorm:"not null" json:"objectKey"`
	FileName    string    `gorm:"not null" json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `gorm:"not null" json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (f *PostFile) TableName() string {
	return "post_file"
}

type PostSort string

const (
	PostSortID        PostSort = "id"
	PostSortCreatedAt PostSort = "createdAt"
	PostSortTitle     PostSort = "title"
	PostSortViews     PostSort = "viewCount"
)

var PostKeyset = lib.Keyset[Post]{
	Sorts: map[string]lib.SortField[Post]{
		string(PostSortID):        {Column: "id", Kind: lib.KindInt, Value: func(p Post) any { return p.ID }},
		string(PostSortCreatedAt): {Column: "created_at", Kind: lib.KindTime, Value: func(p Post) any { return p.CreatedAt }},
		string(PostSortTitle):     {Column: "title", Kind: lib.KindString, Value: func(p Post) any { return p.Title }},
		string(PostSortViews):     {Column: "view_count", Kind: lib.KindInt, Value: func(p Post) any { return p.ViewCount }},
	},
	DefaultSort:   string(PostSortCreatedAt),
	DefaultOrder:  lib.OrderDesc,
	TieBreaker:    func(p Post) int64 { return p.ID },
	SearchColumns: []string{"title"},
	FilterColumns: []string{"title"},
	DateColumns:   []string{"created_at", "updated_at"},
	UseColumn:     "is_use",
	VisibleColumn: "is_visible",
}

func (c *PostgresClient) SelectPostsWithPagination(ctx context.Context, request lib.ListRequest) (*lib.ListResult[Post], error) {
	return lib.List(ctx, c.database, PostKeyset, request)
}

func (c *PostgresClient) SelectPostByUID(ctx context.Context, uid uuid.UUID) (*Post, error) {
	var post Post
	tx := c.database.WithContext(ctx).
		Where("uid = ?", uid).
		Preload("Board").
		Preload("Author").
		Preload("Files").
		First(&post)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &post, nil
}

func (c *PostgresClient) SelectPostByID(ctx context.Context, id int64) (*Post, error) {
	var post Post
	tx := c.database.WithContext(ctx).
		Where("id = ?", id).
		First(&post)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &post, nil
}

func (c *PostgresClient) InsertPost(ctx context.Context, post *Post) error {
	return c.database.WithContext(ctx).Omit("Board", "Author").Create(post).Error
}

func (c *PostgresClient) UpdatePost(ctx context.Context, post *Post) error {
	return c.database.WithContext(ctx).Omit("Board", "Author", "Files").Save(post).Error
}

func (c *PostgresClient) DeletePost(ctx context.Context, post *Post) error {
	return c.database.WithContext(ctx).Delete(post).Error
}

func (c *PostgresClient) SelectPostFiles(ctx context.Context, postID int64) ([]PostFile, error) {
	var files []PostFile
	tx := c.database.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id").
		Find(&files)
	return files, tx.Error
}

func (c *PostgresClient) InsertPostFiles(ctx context.Context, files []PostFile) error {
	if len(files) == 0 {
		return nil
	}
	return c.database.WithContext(ctx).Create(&files).Error
}

func (c *PostgresClient) DeletePostFiles(ctx context.Context, postID int64) error {
	return c.database.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&PostFile{}).Error
}
