package cart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/Raqibreyaz/EcommerceBackend/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB, *test.Hook) {
	t.Helper()
	db := testutil.DB(t)
	log, hook := testutil.Logger()
	return New(db, catalog.NewStore(db), log), db, hook
}

func key(p *models.Product, color, size string) models.VariantKey {
	return models.VariantKey{ProductID: p.ID, Color: color, Size: size}
}

func cartLines(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&n).Error)
	return n
}

func TestUpsertLineThenFetch(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	testutil.SeedUser(t, db, "seller-1", "Acme")
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 5})

	require.NoError(t, s.UpsertLine(ctx, "u1", key(p, "Red", "M"), 3))

	lines, err := s.FetchCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "Shirt", lines[0].Name)
	assert.Equal(t, "Acme", lines[0].OwnerName)
	assert.Equal(t, 5, lines[0].Stock)
	assert.Equal(t, "/uploads/shirt-red.jpg", lines[0].Image)
}

func TestUpsertLineLastWriteWins(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 5})

	require.NoError(t, s.UpsertLine(ctx, "u1", key(p, "Red", "M"), 2))
	require.NoError(t, s.UpsertLine(ctx, "u1", key(p, "Red", "M"), 4))

	lines, err := s.FetchCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.EqualValues(t, 1, cartLines(t, db))
}

func TestUpsertLineRejects(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 5})

	tests := []struct {
		name string
		key  models.VariantKey
		qty  int
		want error
	}{
		{"more than stock", key(p, "Red", "M"), 6, apperror.ErrInsufficientStock},
		{"zero quantity", key(p, "Red", "M"), 0, apperror.ErrInsufficientStock},
		{"unknown size", key(p, "Red", "XL"), 1, apperror.ErrInsufficientStock},
		{"missing product", models.VariantKey{ProductID: p.ID + 9, Color: "Red", Size: "M"}, 1, apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.UpsertLine(ctx, "u1", tt.key, tt.qty), tt.want)
		})
	}
	assert.Zero(t, cartLines(t, db))
}

func TestUpsertLineBoundary(t *testing.T) {
	s, db, _ := newService(t)
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 5})
	assert.NoError(t, s.UpsertLine(context.Background(), "u1", key(p, "Red", "M"), 5))
}

func TestRemoveLineIsIdempotent(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "Shirt", 100,
		testutil.Variant{Color: "Red", Size: "M", Stock: 5},
		testutil.Variant{Color: "Red", Size: "L", Stock: 5},
	)
	require.NoError(t, s.UpsertLine(ctx, "u1", key(p, "Red", "M"), 1))
	require.NoError(t, s.UpsertLine(ctx, "u1", key(p, "Red", "L"), 1))

	require.NoError(t, s.RemoveLine(ctx, "u1", key(p, "Red", "M")))
	require.NoError(t, s.RemoveLine(ctx, "u1", key(p, "Red", "M")))
	require.NoError(t, s.RemoveLine(ctx, "nobody", key(p, "Red", "M")))

	lines, err := s.FetchCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "L", lines[0].Size)
}

func TestFetchCartHidesLowStockLines(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 5})
	require.NoError(t, s.UpsertLine(ctx, "u1", key(p, "Red", "M"), 4))

	require.NoError(t, db.Model(&models.VariantStock{}).Where("product_id = ?", p.ID).Update("stock", 3).Error)

	lines, err := s.FetchCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.EqualValues(t, 1, cartLines(t, db), "line is hidden, not deleted")

	require.NoError(t, db.Model(&models.VariantStock{}).Where("product_id = ?", p.ID).Update("stock", 4).Error)
	lines, err = s.FetchCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lines, 1, "line reappears once restocked")
}

func TestFetchCartDropsStructurallyInvalidLines(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	shirt := testutil.SeedProduct(t, db, "Shirt", 100,
		testutil.Variant{Color: "Red", Size: "M", Stock: 5},
		testutil.Variant{Color: "Blue", Size: "M", Stock: 5},
	)
	hat := testutil.SeedProduct(t, db, "Hat", 20, testutil.Variant{Color: "Black", Size: "One", Stock: 5})
	require.NoError(t, s.UpsertLine(ctx, "u1", key(shirt, "Red", "M"), 1))
	require.NoError(t, s.UpsertLine(ctx, "u1", key(shirt, "Blue", "M"), 1))
	require.NoError(t, s.UpsertLine(ctx, "u1", key(hat, "Black", "One"), 1))

	// Blue is removed from the shirt and the hat is deleted outright.
	require.NoError(t, db.Where("product_id = ? AND name = ?", shirt.ID, "Blue").Delete(&models.ProductColor{}).Error)
	require.NoError(t, db.Where("product_id = ? AND color = ?", shirt.ID, "Blue").Delete(&models.VariantStock{}).Error)
	require.NoError(t, db.Delete(&models.Product{}, hat.ID).Error)

	lines, err := s.FetchCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Red", lines[0].Color)
	assert.EqualValues(t, 1, cartLines(t, db))
}

func TestClear(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 5})
	require.NoError(t, s.UpsertLine(ctx, "u1", key(p, "Red", "M"), 1))
	require.NoError(t, s.UpsertLine(ctx, "u2", key(p, "Red", "M"), 2))

	require.NoError(t, s.Clear(ctx, "u1"))

	lines, err := s.FetchCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	var carts int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", "u1").Count(&carts).Error)
	assert.EqualValues(t, 1, carts, "cart is emptied, not deleted")

	lines, err = s.FetchCart(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestFetchCartFollowsReplacedMainImage(t *testing.T) {
	s, db, _ := newService(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 5})
	require.NoError(t, s.UpsertLine(ctx, "u1", key(p, "Red", "M"), 1))

	store, err := media.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	src := filepath.Join(t.TempDir(), "red.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0o600))
	fresh, err := store.Upload(ctx, src)
	require.NoError(t, err)

	log, _ := testutil.Logger()
	_, err = catalog.NewManager(db, store, log).ReplaceVariants(ctx, p.ID, catalog.VariantLayout{
		Colors: []catalog.ColorLayout{{Name: "Red", NewImages: []media.Asset{fresh}, DropPublicIDs: []string{"shirt-red.jpg"}}},
		Sizes:  []string{"M"},
		Stocks: []catalog.StockLevel{{Color: "Red", Size: "M", Stock: 5}},
	})
	require.NoError(t, err)

	lines, err := s.FetchCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, fresh.URL, lines[0].Image)
}
