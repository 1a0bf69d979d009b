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

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates the GORM account repository.
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		logger.Error(ctx, "account_repository.Create failed", "account_id", account.AccountID, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "account_repository.Get failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&accounts).Error
	if err != nil {
		logger.Error(ctx, "account_repository.ListByUser failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Save(ctx context.Context, account *domain.Account) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		UpdateAll: true,
	}).Create(account).Error
	if err != nil {
		logger.Error(ctx, "account_repository.Save failed", "account_id", account.AccountID, "error", err)
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (r *accountRepository) ClearDefault(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
	if err != nil {
		logger.Error(ctx, "account_repository.ClearDefault failed", "user_id", userID, "error", err)
		return fmt.Errorf("failed to clear default account: %w", err)
	}
	return nil
}
