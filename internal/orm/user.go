package orm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null" json:"-"`
	Reputation int64     `gorm:"not null;default:0" json:"reputation"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName returns the name of the table for the User model
func (u *User) TableName() string {
	return "user"
}

func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) BeforeCreate(transaction *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (c *PostgresClient) SelectUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	tx := c.database.WithContext(ctx).
		Where("id = ?", id).
		First(&user)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &user, nil
}

func (c *PostgresClient) InsertUser(ctx context.Context, user *User) error {
	return c.database.WithContext(ctx).Create(user).Error
}

func (c *PostgresClient) UpdateUserReputation(ctx context.Context, id uuid.UUID, reputation int64) error {
	return c.database.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		UpdateColumn("reputation", reputation).Error
}

// CountCommentLikesByAuthor sums the like counters of every comment the user
// wrote, across all threads.
func (c *PostgresClient) CountCommentLikesByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var total int64
	for _, thread := range Threads {
		var count int64
		tx := c.database.WithContext(ctx).
			Table(thread.CommentTable).
			Select("COALESCE(SUM(like_count), 0)").
			Where("author_id = ?", authorID).
			Scan(&count)
		if tx.Error != nil {
			return 0, tx.Error
		}
		total += count
	}
	return total, nil
}

func (c *PostgresClient) CountCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var total int64
	for _, thread := range Threads {
		var count int64
		tx := c.database.WithContext(ctx).
			Table(thread.CommentTable).
			Where("author_id = ?", authorID).
			Count(&count)
		if tx.Error != nil {
			return 0, tx.Error
		}
		total += count
	}
	return total, nil
}
