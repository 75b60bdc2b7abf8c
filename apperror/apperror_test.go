package apperror

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestSentinelsMatchByKind(t *testing.T) {
	err := errors.Wrap(InsufficientStock("only %d left", 2), "checkout")

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.Equal(t, "only 2 left", PublicMessage(err))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, Status(KindNotFound))
	assert.Equal(t, http.StatusBadRequest, Status(KindConflict))
	assert.Equal(t, http.StatusBadRequest, Status(KindOrderNotCancellable))
	assert.Equal(t, http.StatusInternalServerError, Status(KindInternal))
}

func TestPublicMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "internal server error", PublicMessage(errors.New("pq: connection refused")))
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "product"))

	err := FromDB(gorm.ErrRecordNotFound, "product")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "product not found", PublicMessage(err))

	err = FromDB(errors.New("UNIQUE constraint failed: products.name"), "product name")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "duplicate key found: product name", PublicMessage(err))

	other := errors.New("boom")
	assert.Equal(t, other, FromDB(other, "product"))
}
