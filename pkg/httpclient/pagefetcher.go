package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// PageClient adapts Client to the crawler's page-fetching session contract
// for runs where no browser is available. There is no external resource to
// acquire, but the Unstarted -> Started -> Stopped lifecycle is still
// enforced so both fetcher kinds behave alike.
type PageClient struct {
	client  Client
	headers map[string]string

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewPageClient wraps the given client. userAgent may be empty.
func NewPageClient(client Client, userAgent string) *PageClient {
	headers := map[string]string{}
	if ua := strings.TrimSpace(userAgent); ua != "" {
		headers["User-Agent"] = ua
	}
	return &PageClient{client: client, headers: headers}
}

// Start marks the session active.
func (p *PageClient) Start(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return errors.New("http page session already stopped, create a new one")
	}
	if p.started {
		return errors.New("http page session already started")
	}
	p.started = true
	return nil
}

// FetchHTML performs a plain GET and returns the raw body on a 200.
func (p *PageClient) FetchHTML(ctx context.Context, url string) (string, error) {
	p.mu.Lock()
	active := p.started && !p.stopped
	p.mu.Unlock()
	if !active {
		return "", errors.New("http page session is not started")
	}

	resp, err := p.client.Get(ctx, url, p.headers)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}
	return string(resp.Body()), nil
}

// Stop marks the session stopped. No-op when never started.
func (p *PageClient) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.started = false
	return nil
}
