package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrorf(t *testing.T) {
	orig := errors.New("vertex X missing")
	err := WrapErrorf(orig, ErrNotFound, "vertex %s not found in graph %s", "X", "solo")

	assert.Equal(t, "vertex X not found in graph solo", err.Error())
	assert.ErrorIs(t, err, orig)

	var serr *Error
	wrapped := fmt.Errorf("search: %w", err)
	assert.True(t, errors.As(wrapped, &serr))
	assert.Equal(t, ErrNotFound, serr.Code())
}
