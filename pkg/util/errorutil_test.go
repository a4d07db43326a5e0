package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := NewInsufficientStock("product-1", 1, 3)
	assert.True(t, HasCode(err, CodeInsufficientStock))
	assert.False(t, HasCode(err, CodeConflict))

	wrapped := fmt.Errorf("placing order: %w", err)
	assert.True(t, HasCode(wrapped, CodeInsufficientStock))

	assert.False(t, HasCode(errors.New("plain"), CodeInsufficientStock))
	assert.False(t, HasCode(nil, CodeInsufficientStock))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(NewConflict("try again", nil)))
	assert.False(t, IsConflict(NewLastAdminProtected()))
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, de)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewPrimaryAdminProtected()
	de := ToDomainError(original)
	assert.Equal(t, CodePrimaryAdminProtected, de.Code)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	require.NotNil(t, de)
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	// The underlying cause stays attached for logging.
	assert.EqualError(t, de.Unwrap(), "boom")
}

func TestInsufficientStockDetails(t *testing.T) {
	de := ToDomainError(NewInsufficientStock("product-1", 2, 5))
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "product-1", de.Details["product_id"])
	assert.Equal(t, 2, de.Details["available"])
	assert.Equal(t, 5, de.Details["requested"])
}
