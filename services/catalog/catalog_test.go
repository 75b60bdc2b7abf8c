package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantStock(t *testing.T) {
	db := testutil.DB(t)
	p := testutil.SeedProduct(t, db, "Shirt", 100,
		testutil.Variant{Color: "Red", Size: "M", Stock: 5},
		testutil.Variant{Color: "Blue", Size: "L", Stock: 2},
	)
	store := NewStore(db)
	ctx := context.Background()

	n, err := store.VariantStock(ctx, p.ID, "Red", "M")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// Red/L is not a stocked combination even though both names exist.
	n, err = store.VariantStock(ctx, p.ID, "Red", "L")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = store.VariantStock(ctx, p.ID+100, "Red", "M")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDecrementStock(t *testing.T) {
	db := testutil.DB(t)
	p := testutil.SeedProduct(t, db, "Shirt", 100,
		testutil.Variant{Color: "Red", Size: "M", Stock: 5},
		testutil.Variant{Color: "Blue", Size: "L", Stock: 2},
	)
	store := NewStore(db)
	ctx := context.Background()

	require.NoError(t, store.DecrementStock(ctx, p.ID, "Red", "M", 2))
	assert.Equal(t, 3, testutil.StockOf(t, db, p.ID, "Red", "M"))
	assert.Equal(t, 2, testutil.StockOf(t, db, p.ID, "Blue", "L"))
	assert.Equal(t, 5, testutil.TotalStockOf(t, db, p.ID))

	// Taking the exact remaining amount is allowed and leaves zero.
	require.NoError(t, store.DecrementStock(ctx, p.ID, "Red", "M", 3))
	assert.Equal(t, 0, testutil.StockOf(t, db, p.ID, "Red", "M"))
	assert.Equal(t, 2, testutil.TotalStockOf(t, db, p.ID))
}

func TestDecrementStockFailures(t *testing.T) {
	db := testutil.DB(t)
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 1})
	store := NewStore(db)
	ctx := context.Background()

	tests := []struct {
		name      string
		productID uint
		color     string
		size      string
		qty       int
		want      error
	}{
		{"more than available", p.ID, "Red", "M", 2, apperror.ErrInsufficientStock},
		{"absent combination", p.ID, "Red", "XL", 1, apperror.ErrInsufficientStock},
		{"missing product", p.ID + 100, "Red", "M", 1, apperror.ErrNotFound},
		{"zero quantity", p.ID, "Red", "M", 0, apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.DecrementStock(ctx, tt.productID, tt.color, tt.size, tt.qty)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, testutil.StockOf(t, db, p.ID, "Red", "M"))
			assert.Equal(t, 1, testutil.TotalStockOf(t, db, p.ID))
		})
	}
}

func TestDecrementStockConcurrent(t *testing.T) {
	db := testutil.DB(t)
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 5})
	store := NewStore(db)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, failed := 0, 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.DecrementStock(context.Background(), p.ID, "Red", "M", 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, apperror.ErrInsufficientStock) {
				failed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 7, failed)
	assert.Equal(t, 0, testutil.StockOf(t, db, p.ID, "Red", "M"))
	assert.Equal(t, 0, testutil.TotalStockOf(t, db, p.ID))
}

func TestIncrementStock(t *testing.T) {
	db := testutil.DB(t)
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 1})
	store := NewStore(db)
	ctx := context.Background()

	require.NoError(t, store.IncrementStock(ctx, p.ID, "Red", "M", 4))
	assert.Equal(t, 5, testutil.StockOf(t, db, p.ID, "Red", "M"))
	assert.Equal(t, 5, testutil.TotalStockOf(t, db, p.ID))

	assert.ErrorIs(t, store.IncrementStock(ctx, p.ID, "Green", "M", 1), apperror.ErrNotFound)
	assert.ErrorIs(t, store.IncrementStock(ctx, p.ID+1, "Red", "M", 1), apperror.ErrNotFound)
	assert.ErrorIs(t, store.IncrementStock(ctx, p.ID, "Red", "M", -1), apperror.ErrValidation)
}

func TestIsValidVariant(t *testing.T) {
	db := testutil.DB(t)
	seeded := testutil.SeedProduct(t, db, "Shirt", 100,
		testutil.Variant{Color: "Red", Size: "M", Stock: 0},
		testutil.Variant{Color: "Blue", Size: "L", Stock: 3},
	)
	store := NewStore(db)

	p, err := store.Product(context.Background(), seeded.ID)
	require.NoError(t, err)

	assert.True(t, store.IsValidVariant(p, "Red", "M"), "zero stock is still a valid variant")
	assert.True(t, store.IsValidVariant(p, "Blue", "L"))
	assert.False(t, store.IsValidVariant(p, "Red", "L"))
	assert.False(t, store.IsValidVariant(p, "Green", "M"))
	assert.False(t, store.IsValidVariant(nil, "Red", "M"))
}

func TestProducts(t *testing.T) {
	db := testutil.DB(t)
	a := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 1})
	b := testutil.SeedProduct(t, db, "Trousers", 200, testutil.Variant{Color: "Black", Size: "32", Stock: 1})

	got, err := NewStore(db).Products(context.Background(), []uint{a.ID, b.ID, b.ID + 50})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Trousers", got[b.ID].Name)
	assert.Equal(t, "/uploads/shirt-red.jpg", got[a.ID].MainImage("Red"))
}
