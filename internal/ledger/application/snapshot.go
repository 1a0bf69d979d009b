package application

import (
	"context"
	"time"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
)

// SnapshotService records the per-day valuation series the analytics are
// derived from.
type SnapshotService struct {
	ledger  *LedgerService
	uow     domain.UnitOfWork
	metrics *metrics.Metrics
}

// NewSnapshotService wires the snapshot use cases. m may be nil.
func NewSnapshotService(ledger *LedgerService, uow domain.UnitOfWork, m *metrics.Metrics) *SnapshotService {
	return &SnapshotService{ledger: ledger, uow: uow, metrics: m}
}

// RecordDaily values the account now and upserts today's snapshot. Running it
// twice on the same day updates the row instead of duplicating it.
func (s *SnapshotService) RecordDaily(ctx context.Context, accountID string) (*SnapshotDTO, error) {
	summary, err := s.ledger.GetSummary(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	snapshot := &domain.PerformanceSnapshot{
		AccountID:      accountID,
		SnapshotDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		TotalValue:     summary.CurrentValue,
		CashBalance:    summary.CashBalance,
		InvestedAmount: summary.InvestedAmount,
		DayGainLoss:    summary.DayGainLoss,
		TotalGainLoss:  summary.TotalGainLoss,
	}

	err = s.uow.Execute(ctx, func(r domain.Repositories) error {
		return r.Snapshots.Upsert(ctx, snapshot)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SnapshotsRecorded.Inc()
	}
	logger.Info(ctx, "performance snapshot recorded",
		"account_id", accountID,
		"date", snapshot.SnapshotDate.Format(time.DateOnly),
		"total_value", snapshot.TotalValue.String(),
	)
	return toSnapshotDTO(snapshot), nil
}

// List returns the snapshot series for an account, oldest first.
func (s *SnapshotService) List(ctx context.Context, accountID string, from, to *time.Time) ([]*SnapshotDTO, error) {
	var dtos []*SnapshotDTO
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		snapshots, err := r.Snapshots.ListByAccount(ctx, accountID, from, to)
		if err != nil {
			return err
		}
		dtos = make([]*SnapshotDTO, 0, len(snapshots))
		for _, snap := range snapshots {
			dtos = append(dtos, toSnapshotDTO(snap))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}
