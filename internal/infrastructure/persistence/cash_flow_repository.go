package persistence

import (
	"context"
	"fmt"

	"github.com/crediario/backend/internal/domain/finance"
	"github.com/crediario/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashFlowRepository implements finance.CashFlowRepository using GORM
type GormCashFlowRepository struct {
	db *gorm.DB
}

// NewGormCashFlowRepository creates a new GormCashFlowRepository
func NewGormCashFlowRepository(db *gorm.DB) *GormCashFlowRepository {
	return &GormCashFlowRepository{db: db}
}

// PostEntry persists a new entry
func (r *GormCashFlowRepository) PostEntry(ctx context.Context, entry *finance.CashFlowEntry) error {
	return r.db.WithContext(ctx).Create(models.CashFlowEntryModelFromDomain(entry)).Error
}

// List returns a tenant's entries and the total count
func (r *GormCashFlowRepository) List(ctx context.Context, tenantID uuid.UUID, filter finance.CashFlowFilter) ([]finance.CashFlowEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CashFlowEntryModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CashFlowSortFields, "date")
	query = query.Order(fmt.Sprintf("%s %s", orderBy, ValidateSortOrder(filter.OrderDir)))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.CashFlowEntryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]finance.CashFlowEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, total, nil
}

var _ finance.CashFlowRepository = (*GormCashFlowRepository)(nil)
