package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"promo_scraper/pkg/httpclient"
)

// PortalRepository defines the contract for fetching portal documents.
// This is the interface you would mock for testing.
type PortalRepository interface {
	Fetch(ctx context.Context, url string) (io.Reader, error)
}

// portalRepositoryImpl is the concrete implementation that performs HTTP requests.
type portalRepositoryImpl struct {
	client httpclient.Client
}

// NewPortalRepository creates a repository over the given HTTP client. A nil
// client gets a default resty client with the provided timeout.
func NewPortalRepository(client httpclient.Client, timeout time.Duration) PortalRepository {
	if client == nil {
		client = httpclient.NewRestyClient(timeout)
	}
	return &portalRepositoryImpl{client: client}
}

// Fetch retrieves a portal document. Non-success responses surface as errors;
// callers degrade those to empty results rather than aborting the run.
func (r *portalRepositoryImpl) Fetch(ctx context.Context, url string) (io.Reader, error) {
	resp, err := r.client.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode())
	}
	return bytes.NewReader(resp.Body()), nil
}
