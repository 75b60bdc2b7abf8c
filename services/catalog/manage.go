package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Manager handles the editorial side of the catalog: products, their variant layout and categories.
type Manager struct {
	db    *gorm.DB
	media media.Store
	log   logrus.FieldLogger
}

func NewManager(db *gorm.DB, store media.Store, log logrus.FieldLogger) *Manager {
	return &Manager{db: db, media: store, log: log}
}

type ProductInput struct {
	Name         string
	Description  string
	Category     string
	Price        decimal.Decimal
	Discount     decimal.Decimal
	IsReturnable bool
	Layout       VariantLayout
}

// DetailsPatch updates the scalar fields of a product. Nil fields are left alone.
type DetailsPatch struct {
	Name         *string
	Description  *string
	Category     *string
	Price        *decimal.Decimal
	Discount     *decimal.Decimal
	IsReturnable *bool
}

var hundred = decimal.NewFromInt(100)

func validatePricing(price, discount decimal.Decimal) error {
	if !price.IsPositive() {
		return apperror.Validation("price must be greater than 0")
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return apperror.Validation("discount must be between 0 and 100")
	}
	return nil
}

func (m *Manager) requireCategory(tx *gorm.DB, name string) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return errors.Wrap(err, "look up category")
	}
	if count == 0 {
		return apperror.NotFound("category %q does not exist", name)
	}
	return nil
}

// CreateProduct stores a product with its full variant layout.
// Uploaded images referenced by the layout are deleted again when the product cannot be stored.
func (m *Manager) CreateProduct(ctx context.Context, ownerID string, in ProductInput) (p *models.Product, err error) {
	defer func() {
		if err != nil {
			m.discard(ctx, in.Layout.newAssets())
		}
	}()

	in.Name = models.NormalizeName(in.Name)
	in.Category = models.NormalizeName(in.Category)
	if in.Name == "" {
		return nil, apperror.Validation("name is required")
	}
	if err := validatePricing(in.Price, in.Discount); err != nil {
		return nil, err
	}
	if err := in.Layout.normalize(); err != nil {
		return nil, err
	}

	p = &models.Product{
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		Price:        in.Price,
		Discount:     in.Discount,
		IsReturnable: in.IsReturnable,
		OwnerID:      ownerID,
	}
	images := make([][]models.ProductImage, 0, len(in.Layout.Colors))
	for _, cl := range in.Layout.Colors {
		if len(cl.DropPublicIDs) > 0 {
			return nil, apperror.Validation("color %q has no images to drop", cl.Name)
		}
		arranged, _, err := arrangeImages(nil, cl)
		if err != nil {
			return nil, err
		}
		images = append(images, arranged)
		p.Colors = append(p.Colors, models.ProductColor{Name: cl.Name})
	}
	for _, s := range in.Layout.Sizes {
		p.Sizes = append(p.Sizes, models.ProductSize{Name: s})
	}
	for _, st := range in.Layout.Stocks {
		p.Stocks = append(p.Stocks, models.VariantStock{Color: st.Color, Size: st.Size, Stock: st.Stock})
	}
	p.TotalStock = p.SumStock()

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.requireCategory(tx, in.Category); err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return apperror.FromDB(err, "product name")
		}
		for ci := range p.Colors {
			for ii := range images[ci] {
				images[ci][ii].ProductID = p.ID
				images[ci][ii].ColorID = p.Colors[ci].ID
			}
			if err := tx.Create(&images[ci]).Error; err != nil {
				return errors.Wrap(err, "store images")
			}
			p.Colors[ci].Images = images[ci]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{"product_id": p.ID, "owner_id": ownerID}).Info("product created")
	return p, nil
}

func (m *Manager) UpdateDetails(ctx context.Context, productID uint, patch DetailsPatch) (*models.Product, error) {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, productID).Error; err != nil {
			return apperror.FromDB(err, "product")
		}

		updates := map[string]any{}
		if patch.Name != nil {
			name := models.NormalizeName(*patch.Name)
			if name == "" {
				return apperror.Validation("name is required")
			}
			updates["name"] = name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Category != nil {
			category := models.NormalizeName(*patch.Category)
			if err := m.requireCategory(tx, category); err != nil {
				return err
			}
			updates["category"] = category
		}
		price, discount := p.Price, p.Discount
		if patch.Price != nil {
			price = *patch.Price
			updates["price"] = price
		}
		if patch.Discount != nil {
			discount = *patch.Discount
			updates["discount"] = discount
		}
		if err := validatePricing(price, discount); err != nil {
			return err
		}
		if patch.IsReturnable != nil {
			updates["is_returnable"] = *patch.IsReturnable
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return apperror.FromDB(err, "product name")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.GetProduct(ctx, productID)
}

// ReplaceVariants swaps the colors, sizes and stock levels of a product for layout in one transaction.
// Images of removed colors and dropped images are deleted from media storage after commit.
func (m *Manager) ReplaceVariants(ctx context.Context, productID uint, layout VariantLayout) (p *models.Product, err error) {
	defer func() {
		if err != nil {
			m.discard(ctx, layout.newAssets())
		}
	}()

	if err := layout.normalize(); err != nil {
		return nil, err
	}

	var removed []string
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Product
		if err := withVariants(tx).First(&current, productID).Error; err != nil {
			return apperror.FromDB(err, "product")
		}

		existing := make(map[string]*models.ProductColor, len(current.Colors))
		for i := range current.Colors {
			existing[current.Colors[i].Name] = &current.Colors[i]
		}

		keep := make(map[string]bool, len(layout.Colors))
		for _, cl := range layout.Colors {
			keep[cl.Name] = true

			color, ok := existing[cl.Name]
			var images []models.ProductImage
			if ok {
				images = color.Images
			} else {
				color = &models.ProductColor{ProductID: current.ID, Name: cl.Name}
				if err := tx.Create(color).Error; err != nil {
					return errors.Wrap(err, "store color")
				}
			}

			arranged, dropped, err := arrangeImages(images, cl)
			if err != nil {
				return err
			}
			if len(dropped) > 0 {
				if err := tx.Where("color_id = ? AND public_id IN ?", color.ID, dropped).
					Delete(&models.ProductImage{}).Error; err != nil {
					return errors.Wrap(err, "drop images")
				}
				removed = append(removed, dropped...)
			}
			for i := range arranged {
				arranged[i].ProductID = current.ID
				arranged[i].ColorID = color.ID
				if err := tx.Save(&arranged[i]).Error; err != nil {
					return errors.Wrap(err, "store image")
				}
			}
		}

		for name, color := range existing {
			if keep[name] {
				continue
			}
			for _, img := range color.Images {
				removed = append(removed, img.PublicID)
			}
			if err := tx.Where("color_id = ?", color.ID).Delete(&models.ProductImage{}).Error; err != nil {
				return errors.Wrap(err, "delete color images")
			}
			if err := tx.Delete(&models.ProductColor{}, color.ID).Error; err != nil {
				return errors.Wrap(err, "delete color")
			}
		}

		if err := tx.Where("product_id = ?", current.ID).Delete(&models.ProductSize{}).Error; err != nil {
			return errors.Wrap(err, "clear sizes")
		}
		sizes := make([]models.ProductSize, 0, len(layout.Sizes))
		for _, s := range layout.Sizes {
			sizes = append(sizes, models.ProductSize{ProductID: current.ID, Name: s})
		}
		if err := tx.Create(&sizes).Error; err != nil {
			return errors.Wrap(err, "store sizes")
		}

		wanted := make(map[[2]string]bool, len(layout.Stocks))
		for _, st := range layout.Stocks {
			wanted[[2]string{st.Color, st.Size}] = true
		}
		var stale []uint
		for _, st := range current.Stocks {
			if !wanted[[2]string{st.Color, st.Size}] {
				stale = append(stale, st.ID)
			}
		}
		if len(stale) > 0 {
			if err := tx.Delete(&models.VariantStock{}, stale).Error; err != nil {
				return errors.Wrap(err, "delete stock entries")
			}
		}
		if len(layout.Stocks) > 0 {
			rows := make([]models.VariantStock, 0, len(layout.Stocks))
			for _, st := range layout.Stocks {
				rows = append(rows, models.VariantStock{ProductID: current.ID, Color: st.Color, Size: st.Size, Stock: st.Stock})
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}, {Name: "color"}, {Name: "size"}},
				DoUpdates: clause.AssignmentColumns([]string{"stock"}),
			}).Create(&rows).Error
			if err != nil {
				return errors.Wrap(err, "store stock entries")
			}
		}

		return recomputeTotal(tx, current.ID)
	})
	if err != nil {
		return nil, err
	}

	m.discard(ctx, assetsOf(removed))
	return m.GetProduct(ctx, productID)
}

// DeleteProduct removes a product with everything that hangs off it. Cart lines and past orders
// are left alone; carts drop the dangling lines on their next read.
func (m *Manager) DeleteProduct(ctx context.Context, productID uint) error {
	var images []string
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, productID).Error; err != nil {
			return apperror.FromDB(err, "product")
		}
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", productID).
			Pluck("public_id", &images).Error; err != nil {
			return errors.Wrap(err, "list images")
		}

		for _, model := range []any{
			&models.Review{},
			&models.WishlistItem{},
			&models.ProductImage{},
			&models.ProductColor{},
			&models.ProductSize{},
			&models.VariantStock{},
		} {
			if err := tx.Where("product_id = ?", productID).Delete(model).Error; err != nil {
				return errors.Wrapf(err, "delete %T", model)
			}
		}
		return errors.Wrap(tx.Delete(&p).Error, "delete product")
	})
	if err != nil {
		return err
	}

	m.discard(ctx, assetsOf(images))
	m.log.WithField("product_id", productID).Info("product deleted")
	return nil
}

func (m *Manager) GetProduct(ctx context.Context, productID uint) (*models.Product, error) {
	var p models.Product
	if err := withVariants(m.db.WithContext(ctx)).First(&p, productID).Error; err != nil {
		return nil, apperror.FromDB(err, "product")
	}
	return &p, nil
}

type Filter struct {
	Search      string
	Category    string
	OwnerID     string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinDiscount *decimal.Decimal
	InStock     bool
	SortBy      string
	Order       string
	Page        int
	Limit       int
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

var sortable = map[string]bool{
	"created_at":  true,
	"price":       true,
	"discount":    true,
	"name":        true,
	"total_stock": true,
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (m *Manager) ListProducts(ctx context.Context, f Filter) (*ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if !sortable[f.SortBy] {
		return nil, apperror.Validation("cannot sort by %q", f.SortBy)
	}
	order := strings.ToLower(f.Order)
	if order != "asc" {
		order = "desc"
	}

	query := m.db.WithContext(ctx).Model(&models.Product{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.OwnerID != "" {
		query = query.Where("owner_id = ?", f.OwnerID)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinDiscount != nil {
		query = query.Where("discount >= ?", *f.MinDiscount)
	}
	if f.InStock {
		query = query.Where("total_stock > 0")
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count products")
	}

	var products []models.Product
	err := withVariants(query).
		Order(fmt.Sprintf("%s %s, id %s", f.SortBy, order, order)).
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&products).Error
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	return &ProductPage{
		Products:   products,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}

// ExportStock writes one spreadsheet row per variant.
func (m *Manager) ExportStock(ctx context.Context, w io.Writer) error {
	var products []models.Product
	err := m.db.WithContext(ctx).
		Preload("Stocks", func(db *gorm.DB) *gorm.DB { return db.Order("color, size") }).
		Order("id").
		Find(&products).Error
	if err != nil {
		return errors.Wrap(err, "load products")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Stock")
	if err != nil {
		return errors.Wrap(err, "create sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Product ID", "Product", "Category", "Color", "Size", "Stock", "Total Stock"} {
		header.AddCell().SetValue(h)
	}
	for _, p := range products {
		for _, st := range p.Stocks {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Category)
			row.AddCell().SetValue(st.Color)
			row.AddCell().SetValue(st.Size)
			row.AddCell().SetValue(st.Stock)
			row.AddCell().SetValue(p.TotalStock)
		}
	}
	return errors.Wrap(file.Write(w), "write workbook")
}

func (m *Manager) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = models.NormalizeName(name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}
	c := &models.Category{Name: name}
	if err := m.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, apperror.FromDB(err, "category name")
	}
	return c, nil
}

func (m *Manager) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := m.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return out, nil
}

func assetsOf(publicIDs []string) []media.Asset {
	out := make([]media.Asset, 0, len(publicIDs))
	for _, id := range publicIDs {
		out = append(out, media.Asset{PublicID: id})
	}
	return out
}

// discard deletes stored files. Failures only leave orphans behind, so they are logged.
func (m *Manager) discard(ctx context.Context, assets []media.Asset) {
	for _, a := range assets {
		if err := m.media.Delete(ctx, a.PublicID); err != nil {
			m.log.WithError(err).WithField("public_id", a.PublicID).Warn("failed to delete image")
		}
	}
}
