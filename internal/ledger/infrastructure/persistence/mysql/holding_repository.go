package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
)

type holdingRepository struct {
	db *gorm.DB
}

// NewHoldingRepository creates the GORM holding repository.
func NewHoldingRepository(db *gorm.DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

func (r *holdingRepository) Get(ctx context.Context, accountID, symbol string) (*domain.Holding, error) {
	var holding domain.Holding
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND symbol = ?", accountID, domain.NormalizeSymbol(symbol)).
		First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "holding_repository.Get failed", "account_id", accountID, "symbol", symbol, "error", err)
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &holding, nil
}

func (r *holdingRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Holding, error) {
	var holdings []*domain.Holding
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("symbol asc").
		Find(&holdings).Error
	if err != nil {
		logger.Error(ctx, "holding_repository.ListByAccount failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

func (r *holdingRepository) Save(ctx context.Context, holding *domain.Holding) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "symbol"}},
		UpdateAll: true,
	}).Create(holding).Error
	if err != nil {
		logger.Error(ctx, "holding_repository.Save failed", "account_id", holding.AccountID, "symbol", holding.Symbol, "error", err)
		return fmt.Errorf("failed to save holding: %w", err)
	}
	return nil
}
