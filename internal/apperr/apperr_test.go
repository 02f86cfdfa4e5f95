package apperr

import (
	"net/http"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	nf := NotFoundf("Fruit with ID %s not found", "abc")
	wrapped := errors.Wrap(nf, "create order")

	assert.Equal(t, NotFound, KindOf(nf))
	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.Equal(t, Unexpected, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, Unexpected))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, InvalidInput.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, InsufficientStock.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Unexpected.HTTPStatus())
}

func TestPublicMessage(t *testing.T) {
	cause := errors.New("connection reset by peer")
	unexpected := Wrap(cause, "find fruit")

	assert.Equal(t, "internal server error", PublicMessage(unexpected, false))
	assert.Equal(t, "find fruit: connection reset by peer", PublicMessage(unexpected, true))
	assert.ErrorIs(t, unexpected, cause)

	stock := InsufficientStockf("Insufficient stock for %s. Available: %dkg", "Mango", 3)
	assert.Equal(t, "Insufficient stock for Mango. Available: 3kg", PublicMessage(stock, false))
}
