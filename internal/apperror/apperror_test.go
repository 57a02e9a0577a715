package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/marketfresh/internal/apperror"
)

func TestCodeOf(t *testing.T) {
	sentinel := apperror.New(apperror.CartEmpty, "cart is empty")

	code, ok := apperror.CodeOf(fmt.Errorf("service: checkout: %w", sentinel))
	assert.True(t, ok)
	assert.Equal(t, apperror.CartEmpty, code)

	_, ok = apperror.CodeOf(errors.New("connection refused"))
	assert.False(t, ok)
}

func TestCodes_Unique(t *testing.T) {
	seen := make(map[apperror.Code]bool)
	for _, c := range apperror.Codes() {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 9)
}
