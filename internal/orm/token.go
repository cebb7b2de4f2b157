package orm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
)

// Token is an API access token. Only the bcrypt hash of the secret is kept;
// Prefix is the public part shown in listings.
type Token struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UID        uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"uid"`
	Name       string     `gorm:"not null" json:"name"`
	Prefix     string     `gorm:"uniqueIndex;not null" json:"prefix"`
	Hash       string     `gorm:"not null" json:"-"`
	IsUse      bool       `gorm:"not null" json:"isUse"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (t *Token) TableName() string {
	return "token"
}

func (t *Token) BeforeCreate(transaction *gorm.DB) error {
	if t.UID == uuid.Nil {
		t.UID = uuid.New()
	}
	return nil
}

type TokenSort string

const (
	TokenSortID        TokenSort = "id"
	TokenSortCreatedAt TokenSort = "createdAt"
	TokenSortName      TokenSort = "name"
)

var TokenKeyset = lib.Keyset[Token]{
	Sorts: map[string]lib.SortField[Token]{
		string(TokenSortID):        {Column: "id", Kind: lib.KindInt, Value: func(t Token) any { return t.ID }},
		string(TokenSortCreatedAt): {Column: "created_at", Kind: lib.KindTime, Value: func(t Token) any { return t.CreatedAt }},
		string(TokenSortName):      {Column: "name", Kind: lib.KindString, Value: func(t Token) any { return t.Name }},
	},
	DefaultSort:   string(TokenSortCreatedAt),
	DefaultOrder:  lib.OrderDesc,
	TieBreaker:    func(t Token) int64 { return t.ID },
	SearchColumns: []string{"name", "prefix"},
	FilterColumns: []string{"name", "prefix"},
	DateColumns:   []string{"created_at", "expires_at", "last_used_at"},
	UseColumn:     "is_use",
}

func (c *PostgresClient) SelectTokensWithPagination(ctx context.Context, request lib.ListRequest) (*lib.ListResult[Token], error) {
	return lib.List(ctx, c.database, TokenKeyset, request)
}

func (c *PostgresClient) SelectTokenByUID(ctx context.Context, uid uuid.UUID) (*Token, error) {
	var token Token
	tx := c.database.WithContext(ctx).
		Where("uid = ?", uid).
		First(&token)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &token, nil
}

func (c *PostgresClient) SelectTokenByPrefix(ctx context.Context, prefix string) (*Token, error) {
	var token Token
	tx := c.database.WithContext(ctx).
		Where("prefix = ?", prefix).
		First(&token)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &token, nil
}

func (c *PostgresClient) InsertToken(ctx context.Context, token *Token) error {
	return c.database.WithContext(ctx).Create(token).Error
}

func (c *PostgresClient) UpdateToken(ctx context.Context, token *Token) error {
	return c.database.WithContext(ctx).Save(token).Error
}

func (c *PostgresClient) TouchToken(ctx context.Context, id int64, at time.Time) error {
	return c.database.WithContext(ctx).
		Model(&Token{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
}

func (c *PostgresClient) DeleteToken(ctx context.Context, token *Token) error {
	return c.database.WithContext(ctx).Delete(token).Error
}
