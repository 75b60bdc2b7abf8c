// Package catalog owns product variants and their stock levels.
package catalog

import (
	"context"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// VariantCatalog is the stock-keeping view of the catalog used by carts, orders and returns.
type VariantCatalog interface {
	// Product loads a product with colors, images, sizes and stock levels.
	Product(ctx context.Context, productID uint) (*models.Product, error)
	// Products loads the given products keyed by id. Missing ids are absent from the map.
	Products(ctx context.Context, productIDs []uint) (map[uint]*models.Product, error)
	// VariantStock returns 0 when the (color, size) combination does not exist.
	VariantStock(ctx context.Context, productID uint, color, size string) (int, error)
	DecrementStock(ctx context.Context, productID uint, color, size string, qty int) error
	IncrementStock(ctx context.Context, productID uint, color, size string, qty int) error
	IsValidVariant(p *models.Product, color, size string) bool
	// WithTx returns a catalog bound to tx.
	WithTx(tx *gorm.DB) VariantCatalog
}

// Store is the gorm implementation of VariantCatalog.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithTx(tx *gorm.DB) VariantCatalog {
	return &Store{db: tx}
}

func withVariants(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Colors.Images", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Stocks", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func (s *Store) Product(ctx context.Context, productID uint) (*models.Product, error) {
	var p models.Product
	if err := withVariants(s.db.WithContext(ctx)).First(&p, productID).Error; err != nil {
		return nil, apperror.FromDB(err, "product")
	}
	return &p, nil
}

func (s *Store) Products(ctx context.Context, productIDs []uint) (map[uint]*models.Product, error) {
	out := make(map[uint]*models.Product, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := withVariants(s.db.WithContext(ctx)).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "load products")
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (s *Store) VariantStock(ctx context.Context, productID uint, color, size string) (int, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return 0, err
	}
	var vs models.VariantStock
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND color = ? AND size = ?", productID, color, size).
		Take(&vs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "load variant stock")
	}
	return vs.Stock, nil
}

// DecrementStock subtracts qty in one conditional UPDATE so concurrent buyers cannot oversell.
func (s *Store) DecrementStock(ctx context.Context, productID uint, color, size string, qty int) error {
	if qty <= 0 {
		return apperror.Validation("quantity must be positive")
	}
	res := s.db.WithContext(ctx).Model(&models.VariantStock{}).
		Where("product_id = ? AND color = ? AND size = ? AND stock >= ?", productID, color, size, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return errors.Wrap(res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		if err := s.requireProduct(ctx, productID); err != nil {
			return err
		}
		return apperror.InsufficientStock("insufficient stock for %s / %s", color, size)
	}
	return s.recomputeTotal(ctx, productID)
}

// IncrementStock adds qty back to an existing variant. No upper cap is applied.
func (s *Store) IncrementStock(ctx context.Context, productID uint, color, size string, qty int) error {
	if qty <= 0 {
		return apperror.Validation("quantity must be positive")
	}
	res := s.db.WithContext(ctx).Model(&models.VariantStock{}).
		Where("product_id = ? AND color = ? AND size = ?", productID, color, size).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return errors.Wrap(res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		if err := s.requireProduct(ctx, productID); err != nil {
			return err
		}
		return apperror.NotFound("variant %s / %s not found", color, size)
	}
	return s.recomputeTotal(ctx, productID)
}

// IsValidVariant reports whether color and size are both offered and have a stock entry.
func (s *Store) IsValidVariant(p *models.Product, color, size string) bool {
	if p == nil {
		return false
	}
	return p.HasColor(color) && p.HasSize(size) && p.StockFor(color, size) != nil
}

func (s *Store) requireProduct(ctx context.Context, productID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return errors.Wrap(err, "look up product")
	}
	if count == 0 {
		return apperror.NotFound("product not found")
	}
	return nil
}

func (s *Store) recomputeTotal(ctx context.Context, productID uint) error {
	return recomputeTotal(s.db.WithContext(ctx), productID)
}

// recomputeTotal rewrites products.total_stock from the variant rows.
func recomputeTotal(db *gorm.DB, productID uint) error {
	err := db.Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn("total_stock", gorm.Expr(
			"(SELECT COALESCE(SUM(stock), 0) FROM variant_stocks WHERE product_id = ?)", productID)).
		Error
	return errors.Wrap(err, "recompute total stock")
}
