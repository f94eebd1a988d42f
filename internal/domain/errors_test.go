package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCauseOf(t *testing.T) {
	err := NewProviderError(CauseNotFound, "fuz: request metadata", errors.New("status code 404"))
	assert.Equal(t, CauseNotFound, ErrorCauseOf(err))

	wrapped := fmt.Errorf("resolving: %w", err)
	assert.Equal(t, CauseNotFound, ErrorCauseOf(wrapped))

	// untyped errors count as transport failures
	assert.Equal(t, CauseNetwork, ErrorCauseOf(errors.New("connection reset")))
}

func TestProviderErrorMessage(t *testing.T) {
	err := NewProviderError(CauseAuthRequired, "fuz: request metadata", errors.New("status code 402"))
	assert.Equal(t, "fuz: request metadata: auth required: status code 402", err.Error())

	err = NewProviderError(CauseSchema, "fuz: decode response", nil)
	assert.Equal(t, "fuz: decode response: schema", err.Error())
}
