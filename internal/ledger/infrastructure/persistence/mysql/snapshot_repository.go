package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
)

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates the GORM snapshot repository.
func NewSnapshotRepository(db *gorm.DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.PerformanceSnapshot) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_value", "cash_balance", "invested_amount", "day_gain_loss", "total_gain_loss", "updated_at",
		}),
	}).Create(snapshot).Error
	if err != nil {
		logger.Error(ctx, "snapshot_repository.Upsert failed", "account_id", snapshot.AccountID, "error", err)
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) ListByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]*domain.PerformanceSnapshot, error) {
	query := r.db.WithContext(ctx).Where("account_id = ?", accountID)
	if from != nil {
		query = query.Where("snapshot_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("snapshot_date <= ?", *to)
	}

	var snapshots []*domain.PerformanceSnapshot
	if err := query.Order("snapshot_date asc").Find(&snapshots).Error; err != nil {
		logger.Error(ctx, "snapshot_repository.ListByAccount failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}
