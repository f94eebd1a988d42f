package sharedhttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"tankobon/internal/domain"

	"github.com/avast/retry-go"
)

// Transport is shared by every provider for one program invocation so
// connections to the same host are pooled.
var Transport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ReadBufferSize:        65536,
	WriteBufferSize:       65536,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// NewClient returns a client backed by the shared transport.
func NewClient() *http.Client {
	return &http.Client{
		Timeout:   60 * time.Second,
		Transport: Transport,
	}
}

// CheckStatusCode classifies a response status into the provider error
// taxonomy. Callers decide which causes are worth retrying.
func CheckStatusCode(op string, statusCode int) error {
	switch statusCode {
	case http.StatusOK:
		return nil

	case http.StatusUnauthorized, http.StatusForbidden, http.StatusPaymentRequired:
		return domain.NewProviderError(domain.CauseAuthRequired, op, fmt.Errorf("status code %d", statusCode))

	case http.StatusNotFound, http.StatusGone:
		return domain.NewProviderError(domain.CauseNotFound, op, fmt.Errorf("status code %d", statusCode))

	default:
		return domain.NewProviderError(domain.CauseNetwork, op, fmt.Errorf("status code %d", statusCode))
	}
}

// RetryOptions is the provider-layer retry policy. Only transient
// network causes are retried; schema, not-found and auth failures
// surface immediately. The fetch scheduler never retries on its own.
func RetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Delay(time.Second * 3),
		retry.Attempts(3),
		retry.MaxJitter(time.Second * 1),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if ctx != nil && ctx.Err() != nil {
				return false
			}
			return domain.ErrorCauseOf(err) == domain.CauseNetwork
		}),
	}
}
