package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates the GORM journal repository.
func NewTransactionRepository(db *gorm.DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Save(ctx context.Context, transaction *domain.Transaction) error {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		logger.Error(ctx, "transaction_repository.Save failed", "transaction_id", transaction.TransactionID, "error", err)
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, accountID, transactionID string) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND transaction_id = ?", accountID, transactionID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "transaction_repository.Get failed", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

func (r *transactionRepository) Exists(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check transaction existence: %w", err)
	}
	return count > 0, nil
}

func (r *transactionRepository) List(ctx context.Context, accountID string, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Transaction{}).Where("account_id = ?", accountID)
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", domain.NormalizeSymbol(filter.Symbol))
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("executed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("executed_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var transactions []*domain.Transaction
	err := query.Order("executed_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&transactions).Error
	if err != nil {
		logger.Error(ctx, "transaction_repository.List failed", "account_id", accountID, "error", err)
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, total, nil
}

func (r *transactionRepository) Delete(ctx context.Context, transactionID string) error {
	result := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Delete(&domain.Transaction{})
	if result.Error != nil {
		logger.Error(ctx, "transaction_repository.Delete failed", "transaction_id", transactionID, "error", result.Error)
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, transactionID)
	}
	return nil
}

func (r *transactionRepository) CountTradeStats(ctx context.Context, accountID string) (int64, int64, error) {
	var wins, trades int64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("account_id = ? AND type = ? AND total_amount > 0", accountID, domain.TransactionSell).
		Count(&wins).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count winning sells: %w", err)
	}
	err = r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("account_id = ? AND type IN ?", accountID, []domain.TransactionType{domain.TransactionBuy, domain.TransactionSell}).
		Count(&trades).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return wins, trades, nil
}
