// Package wishlist keeps the variants a user has saved for later.
package wishlist

import (
	"context"
	"time"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Entry struct {
	ProductID uint            `json:"product_id"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Name      string          `json:"product_name"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Image     string          `json:"image"`
	InStock   bool            `json:"in_stock"`
	AddedAt   time.Time       `json:"added_at"`
}

type Service struct {
	db      *gorm.DB
	catalog catalog.VariantCatalog
	log     logrus.FieldLogger
}

func New(db *gorm.DB, cat catalog.VariantCatalog, log logrus.FieldLogger) *Service {
	return &Service{db: db, catalog: cat, log: log}
}

// Add saves a variant. The variant has to exist but may be out of stock.
func (s *Service) Add(ctx context.Context, userID string, key models.VariantKey) error {
	p, err := s.catalog.Product(ctx, key.ProductID)
	if err != nil {
		return err
	}
	if !s.catalog.IsValidVariant(p, key.Color, key.Size) {
		return apperror.Validation("%s is not offered in %s / %s", p.Name, key.Color, key.Size)
	}
	item := models.WishlistItem{
		UserID:    userID,
		ProductID: key.ProductID,
		Color:     key.Color,
		Size:      key.Size,
		Image:     p.MainImage(key.Color),
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if errors.Is(apperror.FromDB(err, "wishlist"), apperror.ErrConflict) {
			return apperror.Conflict("product already exists in wishlist")
		}
		return errors.Wrap(err, "add to wishlist")
	}
	return nil
}

// Remove deletes a saved variant if present.
func (s *Service) Remove(ctx context.Context, userID string, key models.VariantKey) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND color = ? AND size = ?", userID, key.ProductID, key.Color, key.Size).
		Delete(&models.WishlistItem{}).Error
	return errors.Wrap(err, "remove from wishlist")
}

// Contains reports whether any variant of productID is saved.
func (s *Service) Contains(ctx context.Context, userID string, productID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "look up wishlist")
	}
	return n > 0, nil
}

// List returns the saved variants. Entries whose product, color or size no longer exists are deleted.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	var items []models.WishlistItem
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "load wishlist")
	}
	out := make([]Entry, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.Products(ctx, ids)
	if err != nil {
		return nil, err
	}

	var stale []uint
	for _, it := range items {
		p := products[it.ProductID]
		if !s.catalog.IsValidVariant(p, it.Color, it.Size) {
			stale = append(stale, it.ID)
			continue
		}
		out = append(out, Entry{
			ProductID: it.ProductID,
			Color:     it.Color,
			Size:      it.Size,
			Name:      p.Name,
			Price:     p.Price,
			Discount:  p.Discount,
			Image:     p.MainImage(it.Color),
			InStock:   p.StockFor(it.Color, it.Size).Stock > 0,
			AddedAt:   it.CreatedAt,
		})
	}

	if len(stale) > 0 {
		if err := s.db.WithContext(ctx).Delete(&models.WishlistItem{}, stale).Error; err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("failed to drop stale wishlist entries")
		}
	}
	return out, nil
}
