package orm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
)

// ShopItem prices are stored in minor currency units.
type ShopItem struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UID         uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"uid"`
	Name        string           `gorm:"not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Price       int64            `gorm:"not null" json:"price"`
	Stock       int64            `gorm:"not null" json:"stock"`
	IsUse       bool             `gorm:"not null" json:"isUse"`
	IsVisible   bool             `gorm:"not null" json:"isVisible"`
	Options     []ShopItemOption `gorm:"foreignKey:ShopItemID" json:"options,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (s *ShopItem) TableName() string {
	return "shop_item"
}

func (s *ShopItem) BeforeCreate(transaction *gorm.DB) error {
	if s.UID == uuid.Nil {
		s.UID = uuid.New()
	}
	return nil
}

type ShopItemOption struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopItemID int64  `gorm:"index;not null" json:"shopItemId"`
	Name       string `gorm:"not null" json:"name"`
	Value      string `gorm:"not null" json:"value"`
	PriceDelta int64  `gorm:"not null" json:"priceDelta"`
	SortOrder  int64  `gorm:"not null" json:"sortOrder"`
}

func (o *ShopItemOption) TableName() string {
	return "shop_item_option"
}

type ShopItemSort string

const (
	ShopItemSortID        ShopItemSort = "id"
	ShopItemSortCreatedAt ShopItemSort = "createdAt"
	ShopItemSortName      ShopItemSort = "name"
	ShopItemSortPrice     ShopItemSort = "price"
	ShopItemSortStock     ShopItemSort = "stock"
)

var ShopItemKeyset = lib.Keyset[ShopItem]{
	Sorts: map[string]lib.SortField[ShopItem]{
		string(ShopItemSortID):        {Column: "id", Kind: lib.KindInt, Value: func(s ShopItem) any { return s.ID }},
		string(ShopItemSortCreatedAt): {Column: "created_at", Kind: lib.KindTime, Value: func(s ShopItem) any { return s.CreatedAt }},
		string(ShopItemSortName):      {Column: "name", Kind: lib.KindString, Value: func(s ShopItem) any { return s.Name }},
		string(ShopItemSortPrice):     {Column: "price", Kind: lib.KindInt, Value: func(s ShopItem) any { return s.Price }},
		string(ShopItemSortStock):     {Column: "stock", Kind: lib.KindInt, Value: func(s ShopItem) any { return s.Stock }},
	},
	DefaultSort:   string(ShopItemSortCreatedAt),
	DefaultOrder:  lib.OrderDesc,
	TieBreaker:    func(s ShopItem) int64 { return s.ID },
	SearchColumns: []string{"name", "description"},
	FilterColumns: []string{"name"},
	DateColumns:   []string{"created_at", "updated_at"},
	UseColumn:     "is_use",
	VisibleColumn: "is_visible",
}

func (c *PostgresClient) SelectShopItemsWithPagination(ctx context.Context, request lib.ListRequest) (*lib.ListResult[ShopItem], error) {
	return lib.List(ctx, c.database, ShopItemKeyset, request)
}

func (c *PostgresClient) SelectShopItemByUID(ctx context.Context, uid uuid.UUID) (*ShopItem, error) {
	var item ShopItem
	tx := c.database.WithContext(ctx).
		Where("uid = ?", uid).
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order, id")
		}).
		First(&item)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &item, nil
}

func (c *PostgresClient) InsertShopItem(ctx context.Context, item *ShopItem) error {
	return c.database.WithContext(ctx).Create(item).Error
}

func (c *PostgresClient) UpdateShopItem(ctx context.Context, item *ShopItem) error {
	return c.database.WithContext(ctx).Omit("Options").Save(item).Error
}

func (c *PostgresClient) DeleteShopItem(ctx context.Context, item *ShopItem) error {
	return c.database.WithContext(ctx).Delete(item).Error
}

func (c *PostgresClient) InsertShopItemOptions(ctx context.Context, options []ShopItemOption) error {
	if len(options) == 0 {
		return nil
	}
	return c.database.WithContext(ctx).Create(&options).Error
}

func (c *PostgresClient) DeleteShopItemOptions(ctx context.Context, itemID int64) error {
	return c.database.WithContext(ctx).
		Where("shop_item_id = ?", itemID).
		Delete(&ShopItemOption{}).Error
}
