package review

import (
	"context"
	"testing"
	"time"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB, *models.Product) {
	t.Helper()
	db := testutil.DB(t)
	log, _ := testutil.Logger()
	p := testutil.SeedProduct(t, db, "Shirt", 100, testutil.Variant{Color: "Red", Size: "M", Stock: 1})
	return New(db, log), db, p
}

var good = Input{Headline: "Great", Body: "Fits well and the colour holds.", Rating: 5}

func TestCreateReview(t *testing.T) {
	s, _, p := newService(t)
	ctx := context.Background()

	r, err := s.Create(ctx, "u1", p.ID, Input{Headline: " Great ", Body: good.Body, Rating: 4})
	require.NoError(t, err)
	assert.NotZero(t, r.ID)
	assert.Equal(t, "Great", r.Headline)
	assert.Equal(t, "u1", r.UserID)

	_, err = s.Create(ctx, "u1", p.ID, good)
	assert.ErrorIs(t, err, apperror.ErrConflict, "one review per user and product")

	_, err = s.Create(ctx, "u2", p.ID, good)
	assert.NoError(t, err)

	_, err = s.Create(ctx, "u1", p.ID+100, good)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateReviewValidation(t *testing.T) {
	s, db, p := newService(t)
	ctx := context.Background()

	for name, in := range map[string]Input{
		"no headline":  {Headline: "  ", Body: good.Body, Rating: 3},
		"short body":   {Headline: "Meh", Body: "too short", Rating: 3},
		"rating low":   {Headline: "Meh", Body: good.Body, Rating: 0},
		"rating high":  {Headline: "Meh", Body: good.Body, Rating: 6},
		"padded short": {Headline: "Meh", Body: "   short    ", Rating: 3},
	} {
		_, err := s.Create(ctx, "u1", p.ID, in)
		assert.ErrorIs(t, err, apperror.ErrValidation, name)
	}

	var n int64
	require.NoError(t, db.Model(&models.Review{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListReviews(t *testing.T) {
	s, db, p := newService(t)
	ctx := context.Background()
	other := testutil.SeedProduct(t, db, "Jeans", 200, testutil.Variant{Color: "Blue", Size: "L", Stock: 1})

	base := time.Now().Add(-time.Hour)
	for i, user := range []string{"u1", "u2", "u3"} {
		r, err := s.Create(ctx, user, p.ID, Input{Headline: user, Body: good.Body, Rating: i + 1})
		require.NoError(t, err)
		require.NoError(t, db.Model(r).UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
	_, err := s.Create(ctx, "u1", other.ID, good)
	require.NoError(t, err)

	got, err := s.List(ctx, p.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u3", got[0].UserID)
	assert.Equal(t, "u2", got[1].UserID)

	got, err = s.List(ctx, p.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UserID)

	got, err = s.List(ctx, p.ID, 3, 2)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateOwnReview(t *testing.T) {
	s, _, p := newService(t)
	ctx := context.Background()

	r, err := s.Create(ctx, "u1", p.ID, good)
	require.NoError(t, err)

	edited := Input{Headline: "Faded", Body: "Colour faded after a few washes.", Rating: 2}
	_, err = s.UpdateOwn(ctx, "u2", p.ID, r.ID, edited)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "only the author can edit")

	_, err = s.UpdateOwn(ctx, "u1", p.ID+1, r.ID, edited)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = s.UpdateOwn(ctx, "u1", p.ID, r.ID, Input{Headline: "Faded", Body: good.Body, Rating: 9})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	got, err := s.UpdateOwn(ctx, "u1", p.ID, r.ID, edited)
	require.NoError(t, err)
	assert.Equal(t, "Faded", got.Headline)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, r.CreatedAt.Unix(), got.CreatedAt.Unix())

	list, err := s.List(ctx, p.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, edited.Body, list[0].Body)
}
