package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/metrics"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/services"
)

type ShopServiceImpl struct {
	db      *orm.PostgresClient
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewShopService(db *orm.PostgresClient, log *zap.Logger, m *metrics.Metrics) services.ShopService {
	return &ShopServiceImpl{
		db:      db,
		log:     log,
		metrics: m,
	}
}

func (s *ShopServiceImpl) ListShopItems(ctx context.Context, query lib.ListQuery) (*lib.ListResult[orm.ShopItem], error) {
	start := time.Now()
	result, err := s.db.SelectShopItemsWithPagination(ctx, lib.ListRequest{
		Query:      query,
		Projection: lib.Projection{Preloads: []string{"Options"}},
	})
	s.metrics.ObserveList("shop_item", start)
	if err != nil {
		if lib.IsClientError(err) {
			return nil, err
		}
		s.log.Error("error listing shop items", zap.Error(err))
		return nil, fmt.Errorf("list shop items: %w", err)
	}
	return result, nil
}

func (s *ShopServiceImpl) GetShopItem(ctx context.Context, uid uuid.UUID) (*orm.ShopItem, error) {
	item, err := s.db.SelectShopItemByUID(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error selecting shop item", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("select shop item: %w", err)
	}
	return item, nil
}

func (s *ShopServiceImpl) CreateShopItem(ctx context.Context, input services.ShopItemInput) (*orm.ShopItem, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	item := &orm.ShopItem{}
	apply(item, input)

	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		if err := tx.InsertShopItem(ctx, item); err != nil {
			return err
		}
		return tx.InsertShopItemOptions(ctx, buildOptions(item.ID, input.Options))
	})
	if err != nil {
		s.log.Error("error inserting shop item", zap.Error(err))
		return nil, fmt.Errorf("insert shop item: %w", err)
	}

	return s.GetShopItem(ctx, item.UID)
}

// UpdateShopItem rewrites the item and replaces its options wholesale.
func (s *ShopServiceImpl) UpdateShopItem(ctx context.Context, uid uuid.UUID, input services.ShopItemInput) (*orm.ShopItem, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		item, err := tx.SelectShopItemByUID(ctx, uid)
		if err != nil {
			return err
		}
		apply(item, input)

		if err := tx.UpdateShopItem(ctx, item); err != nil {
			return err
		}
		if err := tx.DeleteShopItemOptions(ctx, item.ID); err != nil {
			return err
		}
		return tx.InsertShopItemOptions(ctx, buildOptions(item.ID, input.Options))
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error updating shop item", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("update shop item: %w", err)
	}

	return s.GetShopItem(ctx, uid)
}

func (s *ShopServiceImpl) DeleteShopItem(ctx context.Context, uid uuid.UUID) error {
	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		item, err := tx.SelectShopItemByUID(ctx, uid)
		if err != nil {
			return err
		}
		if err := tx.DeleteShopItemOptions(ctx, item.ID); err != nil {
			return err
		}
		return tx.DeleteShopItem(ctx, item)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error deleting shop item", zap.String("uid", uid.String()), zap.Error(err))
		return fmt.Errorf("delete shop item: %w", err)
	}
	return nil
}

func validate(input services.ShopItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is empty", lib.ErrInvalidArgument)
	}
	if input.Price < 0 {
		return fmt.Errorf("%w: price is negative", lib.ErrInvalidArgument)
	}
	if input.Stock < 0 {
		return fmt.Errorf("%w: stock is negative", lib.ErrInvalidArgument)
	}
	for i, option := range input.Options {
		if strings.TrimSpace(option.Name) == "" {
			return fmt.Errorf("%w: option %d has no name", lib.ErrInvalidArgument, i)
		}
	}
	return nil
}

func apply(item *orm.ShopItem, input services.ShopItemInput) {
	item.Name = strings.TrimSpace(input.Name)
	item.Description = input.Description
	item.Price = input.Price
	item.Stock = input.Stock
	item.IsUse = input.IsUse
	item.IsVisible = input.IsVisible
}

func buildOptions(itemID int64, inputs []services.ShopItemOptionInput) []orm.ShopItemOption {
	options := make([]orm.ShopItemOption, 0, len(inputs))
	for i, input := range inputs {
		options = append(options, orm.ShopItemOption{
			ShopItemID: itemID,
			Name:       strings.TrimSpace(input.Name),
			Value:      input.Value,
			PriceDelta: input.PriceDelta,
			SortOrder:  int64(i),
		})
	}
	return options
}
