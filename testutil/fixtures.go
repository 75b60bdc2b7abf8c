package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type Variant struct {
	Color string
	Size  string
	Stock int
}

// SeedProduct stores a returnable product with one main image per color.
func SeedProduct(t *testing.T, db *gorm.DB, name string, price int64, variants ...Variant) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:         name,
		Description:  name + " description",
		Category:     "shirts",
		Price:        decimal.NewFromInt(price),
		Discount:     decimal.Zero,
		IsReturnable: true,
		OwnerID:      "seller-1",
	}

	seenColor := map[string]bool{}
	seenSize := map[string]bool{}
	for _, v := range variants {
		if !seenColor[v.Color] {
			seenColor[v.Color] = true
			slug := strings.ReplaceAll(strings.ToLower(name+"-"+v.Color), " ", "-")
			p.Colors = append(p.Colors, models.ProductColor{
				Name: v.Color,
				Images: []models.ProductImage{{
					URL:      fmt.Sprintf("/uploads/%s.jpg", slug),
					PublicID: slug + ".jpg",
					IsMain:   true,
				}},
			})
		}
		if !seenSize[v.Size] {
			seenSize[v.Size] = true
			p.Sizes = append(p.Sizes, models.ProductSize{Name: v.Size})
		}
		p.Stocks = append(p.Stocks, models.VariantStock{Color: v.Color, Size: v.Size, Stock: v.Stock})
	}
	p.TotalStock = p.SumStock()

	require.NoError(t, db.Create(p).Error)
	for ci := range p.Colors {
		for ii := range p.Colors[ci].Images {
			p.Colors[ci].Images[ii].ProductID = p.ID
		}
	}
	require.NoError(t, db.Model(&models.ProductImage{}).Where("color_id IN (?)",
		db.Model(&models.ProductColor{}).Select("id").Where("product_id = ?", p.ID)).
		Update("product_id", p.ID).Error)
	return p
}

func SeedUser(t *testing.T, db *gorm.DB, id, name string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Email: id + "@example.com", Name: name, Role: "customer"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func SeedCategory(t *testing.T, db *gorm.DB, name string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Category{Name: name}).Error)
}

// StockOf reads the stored stock of one variant.
func StockOf(t *testing.T, db *gorm.DB, productID uint, color, size string) int {
	t.Helper()
	var vs models.VariantStock
	require.NoError(t, db.Where("product_id = ? AND color = ? AND size = ?", productID, color, size).First(&vs).Error)
	return vs.Stock
}

// TotalStockOf reads the denormalized total stored on the product row.
func TotalStockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.Select("total_stock").First(&p, productID).Error)
	return p.TotalStock
}
