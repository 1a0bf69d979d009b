package application

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
)

const (
	// riskFreeRate is the annual risk-free rate used in the Sharpe ratio.
	riskFreeRate = 0.02
	// tradingDays annualizes daily volatility.
	tradingDays = 252
	// daysPerYear annualizes the total return exponent.
	daysPerYear = 365.25
)

// AnalyticsService derives performance statistics from the snapshot series.
type AnalyticsService struct {
	uow domain.UnitOfWork
}

// NewAnalyticsService wires the analytics use case.
func NewAnalyticsService(uow domain.UnitOfWork) *AnalyticsService {
	return &AnalyticsService{uow: uow}
}

// GetAnalytics computes return, volatility, drawdown, Sharpe and the win-rate
// proxy for one account. Statistics that are undefined for the series (too few
// points, zero volatility) come back as 0.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, accountID string) (*domain.Analytics, error) {
	var snapshots []*domain.PerformanceSnapshot
	var wins, trades int64
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		account, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
		}
		snapshots, err = r.Snapshots.ListByAccount(ctx, accountID, nil, nil)
		if err != nil {
			return err
		}
		wins, trades, err = r.Transactions.CountTradeStats(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	analytics := &domain.Analytics{AccountID: accountID}
	if trades > 0 {
		analytics.WinRate = float64(wins) / float64(trades) * 100
	}
	if len(snapshots) < 2 {
		return analytics, nil
	}

	values := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		values[i] = snap.TotalValue.InexactFloat64()
	}

	first, last := values[0], values[len(values)-1]
	if first > 0 {
		analytics.TotalReturn = (last - first) / first * 100
	}

	days := snapshots[len(snapshots)-1].SnapshotDate.Sub(snapshots[0].SnapshotDate).Hours() / 24
	if days > 0 && first > 0 && last > 0 {
		analytics.AnnualizedReturn = (math.Pow(last/first, daysPerYear/days) - 1) * 100
	}

	analytics.Volatility = annualizedVolatility(values)
	analytics.MaxDrawdown = maxDrawdown(values)

	if analytics.Volatility != 0 {
		analytics.SharpeRatio = (analytics.AnnualizedReturn/100 - riskFreeRate) / (analytics.Volatility / 100)
	}
	return analytics, nil
}

// annualizedVolatility is the population standard deviation of daily returns
// scaled by sqrt(252), in percent.
func annualizedVolatility(values []float64) float64 {
	returns := dailyReturns(values)
	if len(returns) == 0 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(returns)
	if err != nil {
		return 0
	}
	return sd * math.Sqrt(tradingDays) * 100
}

// dailyReturns drops intervals whose starting value is non-positive.
func dailyReturns(values []float64) []float64 {
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			returns = append(returns, (values[i]-values[i-1])/values[i-1])
		}
	}
	return returns
}

// maxDrawdown is the largest peak-to-trough decline in percent. The running
// peak never decreases, so the result is always within [0, 100].
func maxDrawdown(values []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst * 100
}
