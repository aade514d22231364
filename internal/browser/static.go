package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/internal/proxy"
)

// staticSession fetches a page over HTTP without running its scripts
type staticSession struct {
	client    *http.Client
	userAgent string
	doc       *goquery.Document
}

// NewStaticFactory returns a Factory for sessions that load pages with a
// plain HTTP GET. Each session gets its own transport.
func NewStaticFactory(cfg config.BrowserConfig, proxies *proxy.Manager) Factory {
	return func(ctx context.Context) (Session, error) {
		transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
		if _, err := proxies.ApplyToTransport(transport); err != nil {
			return nil, fmt.Errorf("browser: proxy: %w", err)
		}
		return &staticSession{
			client:    &http.Client{Transport: transport},
			userAgent: cfg.UserAgent,
		}, nil
	}
}

func (s *staticSession) Navigate(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("browser: navigate %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("browser: parse %s: %w", url, err)
	}
	s.doc = doc
	return nil
}

// WaitFor checks the loaded document once. A static page does not change
// after it has been parsed, so a missing marker is reported immediately.
func (s *staticSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if s.doc == nil {
		return errors.New("browser: no page loaded")
	}
	if s.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("browser: %w: %q after %s", ErrWaitTimeout, selector, timeout)
	}
	return nil
}

func (s *staticSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	if s.doc == nil {
		return nil, errors.New("browser: no page loaded")
	}

	var elements []Element
	s.doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		elements = append(elements, staticElement{sel: sel})
	})
	return elements, nil
}

func (s *staticSession) Close() error {
	s.client.CloseIdleConnections()
	s.doc = nil
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (e staticElement) Text(ctx context.Context, selector string) (string, error) {
	found := e.sel.Find(selector).First()
	if found.Length() == 0 {
		return "", fmt.Errorf("browser: %w: %q", ErrElementNotFound, selector)
	}
	return strings.TrimSpace(found.Text()), nil
}
