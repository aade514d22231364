package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/internal/proxy"
)

// chromeSession is a headless Chrome process with a single tab
type chromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	closeOnce   sync.Once
	closeErr    error
}

// NewChromeFactory returns a Factory that launches a new Chrome process for
// every session.
func NewChromeFactory(cfg config.BrowserConfig, proxies *proxy.Manager) Factory {
	return func(ctx context.Context) (Session, error) {
		opts, err := chromeOptions(cfg, proxies)
		if err != nil {
			return nil, err
		}

		allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
		browserCtx, cancel := chromedp.NewContext(allocCtx)

		// Running with no actions starts the browser and opens the tab.
		if err := chromedp.Run(browserCtx); err != nil {
			cancel()
			allocCancel()
			return nil, fmt.Errorf("browser: start chrome: %w", err)
		}

		return &chromeSession{
			ctx:         browserCtx,
			cancel:      cancel,
			allocCancel: allocCancel,
		}, nil
	}
}

func chromeOptions(cfg config.BrowserConfig, proxies *proxy.Manager) ([]chromedp.ExecAllocatorOption, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	server, err := proxies.ServerFlag()
	if err != nil {
		return nil, fmt.Errorf("browser: proxy: %w", err)
	}
	if server != "" {
		opts = append(opts, chromedp.ProxyServer(server))
	}
	return opts, nil
}

// bind derives a context for one chromedp action. It carries the tab from
// the session and the deadline and cancellation of ctx.
func (s *chromeSession) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.ctx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		parent := cancel
		cancel = func() {
			cancelDeadline()
			parent()
		}
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.bind(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	runCtx, cancel := s.bind(ctx)
	defer cancel()
	waitCtx, cancelWait := context.WithTimeout(runCtx, timeout)
	defer cancelWait()

	err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
	return waitError(ctx, err, selector, timeout)
}

// waitError classifies the result of a wait. Only the wait's own deadline
// is a timeout; a cancelled or expired caller context is passed through.
func waitError(ctx context.Context, err error, selector string, timeout time.Duration) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return fmt.Errorf("browser: %w: %q after %s", ErrWaitTimeout, selector, timeout)
	default:
		return fmt.Errorf("browser: wait for %q: %w", selector, err)
	}
}

func (s *chromeSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	runCtx, cancel := s.bind(ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(runCtx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("browser: find %q: %w", selector, err)
	}

	elements := make([]Element, len(nodes))
	for i, node := range nodes {
		elements[i] = &chromeElement{session: s, node: node}
	}
	return elements, nil
}

func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		// Cancel asks Chrome to shut down; the allocator cancel then makes
		// sure the process is gone even if that request failed.
		err := chromedp.Cancel(s.ctx)
		s.cancel()
		s.allocCancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("browser: close chrome: %w", err)
		}
	})
	return s.closeErr
}

type chromeElement struct {
	session *chromeSession
	node    *cdp.Node
}

func (e *chromeElement) Text(ctx context.Context, selector string) (string, error) {
	runCtx, cancel := e.session.bind(ctx)
	defer cancel()

	var found []*cdp.Node
	err := chromedp.Run(runCtx, chromedp.Nodes(selector, &found,
		chromedp.ByQuery, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return "", fmt.Errorf("browser: find %q: %w", selector, err)
	}
	if len(found) == 0 {
		return "", fmt.Errorf("browser: %w: %q", ErrElementNotFound, selector)
	}

	var text string
	err = chromedp.Run(runCtx, chromedp.TextContent([]cdp.NodeID{found[0].NodeID}, &text, chromedp.ByNodeID))
	if err != nil {
		return "", fmt.Errorf("browser: read %q: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}
