package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "Ch. 001 - Title", Filename("Ch. 001 - Title"))
	assert.Equal(t, "Ch. 001 - WhatWhy", Filename("Ch. 001 - What?Why*"))
	assert.Equal(t, "ab", Filename(`a\b`))
	assert.Equal(t, "trimmed", Filename(" trimmed. "))
}
