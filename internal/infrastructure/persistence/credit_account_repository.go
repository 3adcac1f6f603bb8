package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/partner"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/crediario/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCreditAccountRepository implements credit.AccountRepository using
// GORM. Deleted accounts are invisible to every read.
type GormCreditAccountRepository struct {
	db *gorm.DB
}

// NewGormCreditAccountRepository creates a new GormCreditAccountRepository
func NewGormCreditAccountRepository(db *gorm.DB) *GormCreditAccountRepository {
	return &GormCreditAccountRepository{db: db}
}

func (r *GormCreditAccountRepository) active(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return conn(ctx, r.db).
		Model(&models.CreditAccountModel{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID)
}

func (r *GormCreditAccountRepository) findOne(query *gorm.DB) (*credit.CreditAccount, error) {
	var model models.CreditAccountModel
	if err := query.First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByID finds an active account within a tenant
func (r *GormCreditAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*credit.CreditAccount, error) {
	return r.findOne(r.active(ctx, tenantID).Where("id = ?", id))
}

// FindByPhone finds the active account for a canonical phone
func (r *GormCreditAccountRepository) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*credit.CreditAccount, error) {
	phone = partner.NormalizePhone(phone)
	if phone == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(r.active(ctx, tenantID).Where("customer_phone = ?", phone))
}

// FindByCustomerID finds the active account of a directory customer
func (r *GormCreditAccountRepository) FindByCustomerID(ctx context.Context, tenantID, customerID uuid.UUID) (*credit.CreditAccount, error) {
	return r.findOne(r.active(ctx, tenantID).Where("customer_id = ?", customerID))
}

// ExistsByPhone reports whether an active account uses the phone
func (r *GormCreditAccountRepository) ExistsByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (bool, error) {
	phone = partner.NormalizePhone(phone)
	if phone == "" {
		return false, nil
	}
	var count int64
	if err := r.active(ctx, tenantID).Where("customer_phone = ?", phone).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns active accounts and the total count. Search matches a
// name fragment case-insensitively or a phone fragment by digits.
func (r *GormCreditAccountRepository) List(ctx context.Context, tenantID uuid.UUID, filter credit.AccountFilter) ([]credit.CreditAccount, int64, error) {
	query := r.active(ctx, tenantID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		if digits := partner.NormalizePhone(search); digits != "" {
			query = query.Where("LOWER(customer_name) LIKE ? OR customer_phone LIKE ?", pattern, "%"+digits+"%")
		} else {
			query = query.Where("LOWER(customer_name) LIKE ?", pattern)
		}
	}
	if filter.HasDebt != nil {
		if *filter.HasDebt {
			query = query.Where("total_debt > 0")
		} else {
			query = query.Where("total_debt = 0")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CreditAccountSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir)).Order("id ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.CreditAccountModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	accounts := make([]credit.CreditAccount, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, total, nil
}

// Create persists a new account. The partial unique index on
// (tenant_id, customer_phone) turns a concurrent duplicate into
// credit.ErrDuplicateAccount.
func (r *GormCreditAccountRepository) Create(ctx context.Context, account *credit.CreditAccount) error {
	err := conn(ctx, r.db).Create(models.CreditAccountModelFromDomain(account)).Error
	if isUniqueViolation(err) {
		return credit.ErrDuplicateAccount.WithDetails(map[string]any{
			"customer_phone": account.CustomerPhone,
		})
	}
	return err
}

// SaveWithLock writes the mutable columns only if the stored version is
// the one the account was loaded with
func (r *GormCreditAccountRepository) SaveWithLock(ctx context.Context, account *credit.CreditAccount) error {
	result := conn(ctx, r.db).
		Model(&models.CreditAccountModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", account.ID, account.TenantID, account.Version-1).
		Updates(map[string]any{
			"customer_name": account.CustomerName,
			"total_debt":    account.TotalDebt,
			"deleted_at":    account.DeletedAt,
			"version":       account.Version,
			"updated_at":    account.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithDetails(map[string]any{
			"account_id": account.ID.String(),
		})
	}
	return nil
}

type accountSummaryRow struct {
	AccountCount     int64
	WithDebtCount    int64
	TotalOutstanding decimal.Decimal
}

// Summary aggregates the tenant's active accounts
func (r *GormCreditAccountRepository) Summary(ctx context.Context, tenantID uuid.UUID) (*credit.AccountSummary, error) {
	var row accountSummaryRow
	if err := r.active(ctx, tenantID).
		Select(`COUNT(*) AS account_count,
			COALESCE(SUM(CASE WHEN total_debt > 0 THEN 1 ELSE 0 END), 0) AS with_debt_count,
			COALESCE(SUM(total_debt), 0) AS total_outstanding`).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &credit.AccountSummary{
		AccountCount:     row.AccountCount,
		WithDebtCount:    row.WithDebtCount,
		TotalOutstanding: row.TotalOutstanding.Round(2),
	}, nil
}

var _ credit.AccountRepository = (*GormCreditAccountRepository)(nil)
