package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/marketfresh/internal/apperror"
	"github.com/vasiliy-maslov/marketfresh/internal/cart"
)

func TestStatusByCode_CoversEveryCode(t *testing.T) {
	for _, code := range apperror.Codes() {
		status, ok := statusByCode[code]
		if assert.True(t, ok, "no HTTP status for %s", code) {
			assert.True(t, status == http.StatusNotFound || status == http.StatusConflict, "unexpected status %d for %s", status, code)
		}
	}
	assert.Len(t, statusByCode, len(apperror.Codes()))
}

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"business error", cart.ErrCartNotOpen, http.StatusConflict, "CART_NOT_OPEN"},
		{"wrapped business error", fmt.Errorf("service: %w", cart.ErrCartNotFound), http.StatusNotFound, "CART_NOT_FOUND"},
		{"unexpected error", errors.New("pool closed"), http.StatusInternalServerError, CodeInternal},
		{"unknown code", apperror.New("SOMETHING_ELSE", "x"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := mapErrorToStatusCode(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
