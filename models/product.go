package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable SKU with a live stock counter. Products are never
// hard-deleted; deactivation hides them from the storefront instead.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	Description   string          `gorm:"type:varchar(1000)" json:"description"`
	Brand         string          `json:"brand"`
	Category      string          `gorm:"type:varchar(40);index" json:"category"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	OriginalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"original_price"`
	Discount      int             `gorm:"not null;default:0" json:"discount"`
	CountInStock  int             `gorm:"not null;default:0" json:"count_in_stock"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ApplyDiscount recomputes the selling price from the original price and
// discount percentage. Called explicitly on create/update; there is no
// save-hook magic.
func (p *Product) ApplyDiscount() {
	if p.OriginalPrice.IsPositive() && p.Discount > 0 {
		factor := decimal.NewFromInt(100 - int64(p.Discount)).Div(decimal.NewFromInt(100))
		p.Price = p.OriginalPrice.Mul(factor).Round(2)
	}
}

// InStock reports whether at least one unit is sellable.
func (p *Product) InStock() bool {
	return p.CountInStock > 0
}

// CreateProductRequest is the admin payload for adding a product.
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,max=100"`
	Description   string          `json:"description" binding:"max=1000"`
	Brand         string          `json:"brand"`
	Category      string          `json:"category" binding:"required"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Discount      int             `json:"discount" binding:"gte=0,lte=100"`
	CountInStock  int             `json:"count_in_stock" binding:"gte=0"`
}

// UpdateProductRequest is the admin payload for editing a product. Nil
// fields are left untouched.
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=100"`
	Description   *string          `json:"description" binding:"omitempty,max=1000"`
	Brand         *string          `json:"brand"`
	Category      *string          `json:"category"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Discount      *int             `json:"discount" binding:"omitempty,gte=0,lte=100"`
}

// SetStockRequest overwrites the sellable unit count for a product.
type SetStockRequest struct {
	CountInStock int `json:"count_in_stock" binding:"gte=0"`
}
