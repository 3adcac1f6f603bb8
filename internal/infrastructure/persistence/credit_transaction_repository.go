package persistence

import (
	"context"

	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/crediario/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditTransactionRepository implements credit.TransactionRepository.
// Rows are only ever inserted.
type GormCreditTransactionRepository struct {
	db *gorm.DB
}

// NewGormCreditTransactionRepository creates a new GormCreditTransactionRepository
func NewGormCreditTransactionRepository(db *gorm.DB) *GormCreditTransactionRepository {
	return &GormCreditTransactionRepository{db: db}
}

// Create appends a transaction
func (r *GormCreditTransactionRepository) Create(ctx context.Context, tx *credit.CreditTransaction) error {
	return conn(ctx, r.db).Create(models.CreditTransactionModelFromDomain(tx)).Error
}

// FindByID finds a transaction within a tenant
func (r *GormCreditTransactionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*credit.CreditTransaction, error) {
	var model models.CreditTransactionModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ListByAccount returns an account's transactions, newest first
func (r *GormCreditTransactionRepository) ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]credit.CreditTransaction, int64, error) {
	query := conn(ctx, r.db).
		Model(&models.CreditTransactionModel{}).
		Where("tenant_id = ? AND credit_account_id = ?", tenantID, accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("date DESC").Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.CreditTransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	txs := make([]credit.CreditTransaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, total, nil
}

var _ credit.TransactionRepository = (*GormCreditTransactionRepository)(nil)
