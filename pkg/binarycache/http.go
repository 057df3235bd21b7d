package binarycache

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pygr-project/pygr/pkg/observability"
)

// HTTPClient fetches `GET {base}/{fingerprint}.tar.gz` over an
// otelhttp-instrumented client, matching the source fetcher's
// tracing discipline for outbound calls.
type HTTPClient struct {
	base   string
	client *http.Client
	log    *observability.Logger
}

// NewHTTPClient builds an HTTPClient against baseURL.
func NewHTTPClient(baseURL string, log *observability.Logger) *HTTPClient {
	return &HTTPClient{
		base:   baseURL,
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:    log,
	}
}

// Fetch implements Client.
func (c *HTTPClient) Fetch(ctx context.Context, fingerprint, destStorePath string) (bool, error) {
	url := fmt.Sprintf("%s/%s.tar.gz", c.base, fingerprint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.WithError(err).Warn("binarycache: building request failed, treating as miss")
		return false, nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("binarycache: request failed, treating as miss")
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	if err := extractAndPlace(resp.Body, destStorePath); err != nil {
		c.log.WithError(err).Warn("binarycache: extraction failed, treating as miss")
		return false, nil
	}
	return true, nil
}
