package sharedhttp

import (
	"net/http"
	"testing"

	"tankobon/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestCheckStatusCode(t *testing.T) {
	assert.NoError(t, CheckStatusCode("op", http.StatusOK))

	tests := []struct {
		code int
		want domain.ErrorCause
	}{
		{http.StatusUnauthorized, domain.CauseAuthRequired},
		{http.StatusPaymentRequired, domain.CauseAuthRequired},
		{http.StatusForbidden, domain.CauseAuthRequired},
		{http.StatusNotFound, domain.CauseNotFound},
		{http.StatusGone, domain.CauseNotFound},
		{http.StatusInternalServerError, domain.CauseNetwork},
		{http.StatusBadGateway, domain.CauseNetwork},
		{http.StatusTooManyRequests, domain.CauseNetwork},
	}

	for _, tt := range tests {
		err := CheckStatusCode("op", tt.code)
		assert.Error(t, err)
		assert.Equal(t, tt.want, domain.ErrorCauseOf(err))
	}
}
