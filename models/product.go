package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"uniqueIndex;not null" json:"name"`
	Description  string          `json:"description"`
	Category     string          `gorm:"index;not null" json:"category"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Discount     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount"` // percent
	TotalStock   int             `gorm:"not null" json:"total_stock"`
	IsReturnable bool            `gorm:"not null" json:"is_returnable"`
	OwnerID      string          `gorm:"index" json:"owner_id"`
	Colors       []ProductColor  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"colors"`
	Sizes        []ProductSize   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"sizes"`
	Stocks       []VariantStock  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"stocks"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductColor is one color a product is sold in. Images[0] is always the main image.
type ProductColor struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;uniqueIndex:idx_product_color" json:"product_id"`
	Name      string         `gorm:"not null;uniqueIndex:idx_product_color" json:"name"`
	Images    []ProductImage `gorm:"foreignKey:ColorID;constraint:OnDelete:CASCADE" json:"images"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	ColorID   uint   `gorm:"not null;index" json:"color_id"`
	URL       string `gorm:"not null" json:"url"`
	PublicID  string `gorm:"not null;index" json:"public_id"`
	IsMain    bool   `gorm:"not null" json:"is_main"`
	Position  int    `gorm:"not null" json:"position"`
}

type ProductSize struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;uniqueIndex:idx_product_size" json:"product_id"`
	Name      string `gorm:"not null;uniqueIndex:idx_product_size" json:"name"`
}

// VariantStock is the stock level of one (color, size) combination.
type VariantStock struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;uniqueIndex:idx_variant" json:"product_id"`
	Color     string `gorm:"not null;uniqueIndex:idx_variant" json:"color"`
	Size      string `gorm:"not null;uniqueIndex:idx_variant" json:"size"`
	Stock     int    `gorm:"not null;check:stock >= 0" json:"stock"`
}

// VariantKey identifies a variant of a product. It is the composite key of cart, order and wishlist lines.
type VariantKey struct {
	ProductID uint   `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

func (k VariantKey) Less(o VariantKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	if k.Color != o.Color {
		return k.Color < o.Color
	}
	return k.Size < o.Size
}

func (p *Product) HasColor(color string) bool {
	return p.color(color) != nil
}

func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s.Name == size {
			return true
		}
	}
	return false
}

// StockFor returns the stock entry for (color, size), or nil when the combination does not exist.
func (p *Product) StockFor(color, size string) *VariantStock {
	for i := range p.Stocks {
		if p.Stocks[i].Color == color && p.Stocks[i].Size == size {
			return &p.Stocks[i]
		}
	}
	return nil
}

// MainImage returns the URL of the main image of color, or "" when the color has none.
func (p *Product) MainImage(color string) string {
	c := p.color(color)
	if c == nil || len(c.Images) == 0 {
		return ""
	}
	return c.Images[0].URL
}

// SumStock adds up the per-variant stock levels.
func (p *Product) SumStock() int {
	total := 0
	for _, s := range p.Stocks {
		total += s.Stock
	}
	return total
}

// UnitDiscount is the discount amount taken off one unit.
func (p *Product) UnitDiscount() decimal.Decimal {
	return p.Price.Mul(p.Discount).Div(decimal.NewFromInt(100)).Round(2)
}

func (p *Product) color(name string) *ProductColor {
	for i := range p.Colors {
		if p.Colors[i].Name == name {
			return &p.Colors[i]
		}
	}
	return nil
}

// NormalizeName trims a color, size or category name.
func NormalizeName(s string) string {
	return strings.TrimSpace(s)
}
