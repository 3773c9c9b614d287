package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-service/models"
	"order-service/repository"
)

// ProductListResponse is a page of products plus pagination metadata.
type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     ProductMetaData  `json:"meta"`
}

type ProductMetaData struct {
	Page          int   `json:"page"`
	Limit         int   `json:"limit"`
	TotalProducts int64 `json:"total_products"`
	TotalPages    int64 `json:"total_pages"`
	HasMore       bool  `json:"has_more"`
}

// ProductService defines the interface for catalog administration.
type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, productID uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, *ServiceError)
	ListProducts(ctx context.Context, page, limit int) (*ProductListResponse, *ServiceError)
	SetStock(ctx context.Context, productID uuid.UUID, req *models.SetStockRequest) (*models.Product, *ServiceError)
	DeactivateProduct(ctx context.Context, productID uuid.UUID) *ServiceError
}

type productServiceImpl struct {
	repo   repository.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productServiceImpl{repo: repo, logger: logger}
}

// CreateProduct adds a product to the catalog. The selling price is derived
// from original price and discount when both are set.
func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	if req.Price.IsNegative() {
		return nil, &ServiceError{StatusCode: 400, Message: "Price cannot be negative"}
	}

	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Brand:         req.Brand,
		Category:      req.Category,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Discount:      req.Discount,
		CountInStock:  req.CountInStock,
		IsActive:      true,
	}
	product.ApplyDiscount()

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)
	return product, nil
}

// UpdateProduct applies a partial edit and recomputes the discounted price.
func (s *productServiceImpl) UpdateProduct(ctx context.Context, productID uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, &ServiceError{StatusCode: 400, Message: "Price cannot be negative"}
		}
		product.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = *req.OriginalPrice
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
	}
	product.ApplyDiscount()

	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *productServiceImpl) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}
	return product, nil
}

// ListProducts returns paginated active products.
func (s *productServiceImpl) ListProducts(ctx context.Context, page, limit int) (*ProductListResponse, *ServiceError) {
	products, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to list products"}
	}
	return &ProductListResponse{
		Products: products,
		Meta: ProductMetaData{
			Page:          page,
			Limit:         limit,
			TotalProducts: total,
			TotalPages:    calculateTotalPages(total, limit),
			HasMore:       total > int64(page*limit),
		},
	}, nil
}

// SetStock overwrites the sellable unit count for a product.
func (s *productServiceImpl) SetStock(ctx context.Context, productID uuid.UUID, req *models.SetStockRequest) (*models.Product, *ServiceError) {
	if err := s.repo.SetStock(ctx, productID, req.CountInStock); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to set stock", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to set stock"}
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to re-fetch product", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}

	s.logger.Info("Stock set",
		zap.String("product_id", productID.String()),
		zap.Int("count_in_stock", product.CountInStock),
	)
	return product, nil
}

// DeactivateProduct soft-deletes a product; existing orders keep their
// snapshots and cancellation simply skips it when restoring stock.
func (s *productServiceImpl) DeactivateProduct(ctx context.Context, productID uuid.UUID) *ServiceError {
	if err := s.repo.Deactivate(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to deactivate product", zap.String("product_id", productID.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to deactivate product"}
	}

	s.logger.Info("Product deactivated", zap.String("product_id", productID.String()))
	return nil
}
