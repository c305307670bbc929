package httpclient

import (
	"context"
	"time"

	"github.com/DataHenHQ/useragent"
	"github.com/go-resty/resty/v2"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout and a
// random desktop User-Agent.
func NewRestyClient(timeout time.Duration) *RestyClient {
	c := resty.New()
	c.SetTimeout(timeout)
	if ua, err := useragent.Desktop(); err == nil {
		c.SetHeader("User-Agent", ua)
	}
	return &RestyClient{client: c}
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
