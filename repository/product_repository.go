package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"order-service/models"
)

var (
	// ErrNotFound is returned when a product does not exist (or is inactive
	// where only active products are queried).
	ErrNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when a decrement would drive the
	// stock counter negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	// FindActiveByID behaves like FindByID but treats deactivated products
	// as missing; order placement only sees the live catalog.
	FindActiveByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	Deactivate(ctx context.Context, productID uuid.UUID) error
	SetStock(ctx context.Context, productID uuid.UUID, count int) error
	// AdjustStock applies count_in_stock += delta as one conditional UPDATE
	// so concurrent adjustments of the same product can neither lose
	// updates nor drive the counter negative.
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new instance of GormProductRepository.
func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts a new product.
func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update persists mutations to an existing product.
func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// FindByID retrieves a product regardless of its active flag.
func (r *GormProductRepository) FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindActiveByID retrieves an active product.
func (r *GormProductRepository) FindActiveByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll retrieves active products with pagination.
func (r *GormProductRepository) FindAll(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Deactivate soft-deletes a product by clearing its active flag.
func (r *GormProductRepository) Deactivate(ctx context.Context, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStock overwrites the stock counter for a product.
func (r *GormProductRepository) SetStock(ctx context.Context, productID uuid.UUID, count int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("count_in_stock", count)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock atomically applies a stock delta, guarded so the result can
// never go negative. A zero-row update means either the product is gone or
// the guard rejected the decrement; the follow-up lookup distinguishes the
// two.
func (r *GormProductRepository) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND count_in_stock + ? >= 0", productID, delta).
		UpdateColumn("count_in_stock", gorm.Expr("count_in_stock + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, productID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}
