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

type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates the GORM position repository.
func NewPositionRepository(db *gorm.DB) domain.PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Get(ctx context.Context, accountID, symbol string) (*domain.Position, error) {
	var position domain.Position
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND symbol = ?", accountID, symbol).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "position_repository.Get failed", "account_id", accountID, "symbol", symbol, "error", err)
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &position, nil
}

func (r *positionRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Position, error) {
	var positions []*domain.Position
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("symbol asc").
		Find(&positions).Error
	if err != nil {
		logger.Error(ctx, "position_repository.ListByAccount failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

func (r *positionRepository) Save(ctx context.Context, position *domain.Position) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "symbol"}},
		UpdateAll: true,
	}).Create(position).Error
	if err != nil {
		logger.Error(ctx, "position_repository.Save failed", "account_id", position.AccountID, "symbol", position.Symbol, "error", err)
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// AutoMigrate creates the trading tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Order{},
		&domain.Position{},
	)
}
