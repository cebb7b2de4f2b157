package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
)

type ShopService interface {
	ListShopItems(ctx context.Context, query lib.ListQuery) (*lib.ListResult[orm.ShopItem], error)
	GetShopItem(ctx context.Context, uid uuid.UUID) (*orm.ShopItem, error)
	CreateShopItem(ctx context.Context, input ShopItemInput) (*orm.ShopItem, error)
	UpdateShopItem(ctx context.Context, uid uuid.UUID, input ShopItemInput) (*orm.ShopItem, error)
	DeleteShopItem(ctx context.Context, uid uuid.UUID) error
}

type ShopItemOptionInput struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	PriceDelta int64  `json:"priceDelta"`
}

// ShopItemInput replaces the item and all of its options. Option order is
// kept as given.
type ShopItemInput struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Price       int64                 `json:"price"`
	Stock       int64                 `json:"stock"`
	IsUse       bool                  `json:"isUse"`
	IsVisible   bool                  `json:"isVisible"`
	Options     []ShopItemOptionInput `json:"options"`
}
