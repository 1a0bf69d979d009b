// Package mysql provides the GORM implementations of the trading
// repositories.
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/stocktrading/internal/trading/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates the GORM order repository.
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		UpdateAll: true,
	}).Create(order).Error
	if err != nil {
		logger.Error(ctx, "order_repository.Save failed", "order_id", order.OrderID, "error", err)
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "order_repository.Get failed", "order_id", orderID, "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) GetByClientOrderID(ctx context.Context, accountID, clientOrderID string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND client_order_id = ?", accountID, clientOrderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "order_repository.GetByClientOrderID failed", "client_order_id", clientOrderID, "error", err)
		return nil, fmt.Errorf("failed to get order by client id: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) ListByAccount(ctx context.Context, accountID string, filter domain.OrderFilter) ([]*domain.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{}).Where("account_id = ?", accountID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var orders []*domain.Order
	err := query.Order("submitted_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&orders).Error
	if err != nil {
		logger.Error(ctx, "order_repository.ListByAccount failed", "account_id", accountID, "error", err)
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}
