// Package cart keeps one cart per user and reconciles its lines against the catalog on read.
package cart

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
	"gorm.io/gorm/clause"
)

// Line is a cart line joined with the current catalog state.
type Line struct {
	ProductID uint            `json:"product_id"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Category  string          `json:"category"`
	Stock     int             `json:"stock"`
	OwnerID   string          `json:"owner_id"`
	OwnerName string          `json:"owner_name"`
	AddedAt   time.Time       `json:"added_at"`
}

func (l Line) Key() models.VariantKey {
	return models.VariantKey{ProductID: l.ProductID, Color: l.Color, Size: l.Size}
}

type Service struct {
	db      *gorm.DB
	catalog catalog.VariantCatalog
	log     logrus.FieldLogger
	now     func() time.Time
}

func New(db *gorm.DB, cat catalog.VariantCatalog, log logrus.FieldLogger) *Service {
	return &Service{db: db, catalog: cat, log: log, now: time.Now}
}

// WithTx returns a service whose reads and writes go through tx.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx, catalog: s.catalog.WithTx(tx), log: s.log, now: s.now}
}

// UpsertLine sets the quantity of a line, replacing any previous quantity.
// The quantity must be positive and no more than the variant's current stock.
func (s *Service) UpsertLine(ctx context.Context, userID string, key models.VariantKey, qty int) error {
	p, err := s.catalog.Product(ctx, key.ProductID)
	if err != nil {
		return err
	}
	stock := 0
	if s.catalog.IsValidVariant(p, key.Color, key.Size) {
		stock = p.StockFor(key.Color, key.Size).Stock
	}
	if qty <= 0 || qty > stock {
		return apperror.InsufficientStock("quantity must be between 1 and %d for %s / %s", stock, key.Color, key.Size)
	}

	cart, err := s.cartFor(ctx, userID)
	if err != nil {
		return err
	}

	item := models.CartItem{
		CartID:    cart.CartID,
		ProductID: key.ProductID,
		Color:     key.Color,
		Size:      key.Size,
		Quantity:  qty,
		Image:     p.MainImage(key.Color),
		AddedAt:   s.now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "color"}, {Name: "size"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "image", "added_at"}),
	}).Create(&item).Error
	return errors.Wrap(err, "save cart line")
}

// RemoveLine deletes a line if present.
func (s *Service) RemoveLine(ctx context.Context, userID string, key models.VariantKey) error {
	err := s.db.WithContext(ctx).
		Where("cart_id IN (?) AND product_id = ? AND color = ? AND size = ?",
			s.cartIDs(userID), key.ProductID, key.Color, key.Size).
		Delete(&models.CartItem{}).Error
	return errors.Wrap(err, "remove cart line")
}

// Clear empties the user's cart. The cart row itself is kept.
func (s *Service) Clear(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Where("cart_id IN (?)", s.cartIDs(userID)).
		Delete(&models.CartItem{}).Error
	return errors.Wrap(err, "clear cart")
}

// FetchCart returns the lines that can be bought right now.
// Lines whose product, color, size or stock entry is gone are deleted. Lines asking for more than
// the current stock are left out of the result but kept, so they come back once restocked.
// Each line shows the current main image of its color.
func (s *Service) FetchCart(ctx context.Context, userID string) ([]Line, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Where("cart_id IN (?)", s.cartIDs(userID)).
		Order("added_at, id").
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	lines := make([]Line, 0, len(items))
	if len(items) == 0 {
		return lines, nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.Products(ctx, ids)
	if err != nil {
		return nil, err
	}
	owners, err := s.ownerNames(ctx, products)
	if err != nil {
		return nil, err
	}

	var invalid []uint
	for _, it := range items {
		p := products[it.ProductID]
		if !s.catalog.IsValidVariant(p, it.Color, it.Size) {
			invalid = append(invalid, it.ID)
			continue
		}
		stock := p.StockFor(it.Color, it.Size).Stock
		if stock < it.Quantity {
			continue
		}
		lines = append(lines, Line{
			ProductID: it.ProductID,
			Color:     it.Color,
			Size:      it.Size,
			Quantity:  it.Quantity,
			Image:     p.MainImage(it.Color),
			Name:      p.Name,
			Price:     p.Price,
			Discount:  p.Discount,
			Category:  p.Category,
			Stock:     stock,
			OwnerID:   p.OwnerID,
			OwnerName: owners[p.OwnerID],
			AddedAt:   it.AddedAt,
		})
	}

	if len(invalid) > 0 {
		if err := s.db.WithContext(ctx).Delete(&models.CartItem{}, invalid).Error; err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("failed to drop stale cart lines")
		} else {
			s.log.WithFields(logrus.Fields{"user_id": userID, "dropped": len(invalid)}).Debug("dropped stale cart lines")
		}
	}
	return lines, nil
}

func (s *Service) cartIDs(userID string) *gorm.DB {
	return s.db.Model(&models.Cart{}).Select("cart_id").Where("user_id = ?", userID)
}

// cartFor returns the user's cart, creating it on first use.
func (s *Service) cartFor(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent first insert
		err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	}
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return &cart, nil
}

func (s *Service) ownerNames(ctx context.Context, products map[uint]*models.Product) (map[string]string, error) {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		if p.OwnerID != "" {
			ids = append(ids, p.OwnerID)
		}
	}
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "load owners")
	}
	for _, u := range users {
		out[u.ID] = u.Name
	}
	return out, nil
}
