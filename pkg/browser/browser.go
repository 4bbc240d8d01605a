// Package browser provides a headless-Chrome page fetcher driven through
// the Chrome DevTools protocol. One Session maps to one browser process;
// every fetch renders the page in its own tab.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/fxwire-hq/fxwire-news-harvester/internal/logger"
)

// defaultUserAgent is a realistic desktop Chrome user agent; the site
// serves stripped-down markup to obvious bots.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Session lifecycle states.
const (
	stateUnstarted = iota
	stateStarted
	stateStopped
)

// Config holds browser launch and navigation settings.
type Config struct {
	Headless   bool
	NoSandbox  bool
	UserAgent  string
	BrowserBin string
	// NavTimeout bounds a single page load including render.
	NavTimeout time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Headless:   true,
		NoSandbox:  true,
		UserAgent:  defaultUserAgent,
		NavTimeout: 30 * time.Second,
	}
}

// Session owns one headless browser process. It moves strictly through
// Unstarted -> Started -> Stopped; a stopped session cannot be restarted.
type Session struct {
	cfg Config
	log logger.Logger

	mu            sync.Mutex
	state         int
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewSession creates an unstarted browser session.
func NewSession(cfg Config, log logger.Logger) *Session {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = DefaultConfig().NavTimeout
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Session{cfg: cfg, log: log}
}

// Start launches the browser process. The process lives until Stop; if the
// given context is cancelled the browser dies with it.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateStarted:
		return errors.New("browser session already started")
	case stateStopped:
		return errors.New("browser session already stopped, create a new one")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.UserAgent(s.cfg.UserAgent),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	if s.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if s.cfg.BrowserBin != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.BrowserBin))
	}
	if !s.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	// chromedp's own logging is noisy on CDP protocol mismatches; drop it.
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...any) {}),
	)

	// Run with no actions forces the browser process to launch now, so a
	// broken Chrome install fails Start instead of the first fetch.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("launch browser: %w", err)
	}

	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	s.allocCancel = allocCancel
	s.state = stateStarted

	s.log.DebugObj("browser session started", "browser_start", map[string]any{
		"headless": s.cfg.Headless,
	})
	return nil
}

// FetchHTML navigates a fresh tab to url and returns the rendered markup.
func (s *Session) FetchHTML(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	if s.state != stateStarted {
		s.mu.Unlock()
		return "", errors.New("browser session is not started")
	}
	browserCtx := s.browserCtx
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	tabCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, s.cfg.NavTimeout)
	defer timeoutCancel()

	var html string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return html, nil
}

// Stop releases the browser process. Safe to call on an unstarted session
// and a no-op once stopped; either way the session ends up Stopped.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateStarted {
		s.browserCancel()
		s.allocCancel()
		s.browserCtx = nil
		s.browserCancel = nil
		s.allocCancel = nil
		s.log.DebugObj("browser session stopped", "browser_stop", nil)
	}
	s.state = stateStopped
	return nil
}
