package persistence

import (
	"context"

	"github.com/crediario/backend/internal/domain/catalog"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/crediario/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db     *gorm.DB
	atomic bool
}

// ProductRepositoryOption configures a GormProductRepository
type ProductRepositoryOption func(*GormProductRepository)

// WithAtomicStockDecrement makes DecrementStock a single conditional
// UPDATE instead of a read followed by an absolute write
func WithAtomicStockDecrement(atomic bool) ProductRepositoryOption {
	return func(r *GormProductRepository) {
		r.atomic = atomic
	}
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB, opts ...ProductRepositoryOption) *GormProductRepository {
	r := &GormProductRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByIDs loads the given products of a tenant; missing ids are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// GetStock returns the current stock of a product
func (r *GormProductRepository) GetStock(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Select("stock").
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&model).Error; err != nil {
		return 0, notFound(err)
	}
	return model.Stock, nil
}

// DecrementStock removes quantity units from a product's stock.
//
// The default mode reads the product and writes back the computed value,
// so two concurrent sales of the last unit can both succeed. The atomic
// mode decrements in one statement guarded by stock >= quantity.
func (r *GormProductRepository) DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	if r.atomic {
		return r.decrementAtomic(ctx, tenantID, productID, quantity)
	}

	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&model).Error; err != nil {
		return notFound(err)
	}
	product := model.ToDomain()
	if err := product.Decrease(quantity); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(map[string]any{
			"stock":      product.Stock,
			"version":    product.Version,
			"updated_at": product.UpdatedAt,
		}).Error
}

func (r *GormProductRepository) decrementAtomic(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ? AND stock >= ?", tenantID, productID, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	available, err := r.GetStock(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	return shared.ErrInsufficientStock.WithDetails(map[string]any{
		"product_id": productID.String(),
		"available":  available,
		"requested":  quantity,
	})
}

// Create persists a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(models.ProductModelFromDomain(product)).Error
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
