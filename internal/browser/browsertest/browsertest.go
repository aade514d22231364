// Package browsertest provides an in-memory browser.Factory for tests. It
// serves canned pages by URL and counts the sessions it opens and closes.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/williampepple1/member-scraper/internal/browser"
)

// Row maps a nested selector to its text. A selector missing from the map
// is reported as browser.ErrElementNotFound.
type Row map[string]string

// Page is the canned content served for one URL.
type Page struct {
	// Rows are returned by FindAll for any selector.
	Rows []Row

	// NoMarker makes WaitFor fail with browser.ErrWaitTimeout.
	NoMarker bool

	// Delay is spent in Navigate before the page is loaded.
	Delay time.Duration

	// NavigateErr is returned by Navigate.
	NavigateErr error

	// WaitErr is returned by WaitFor when NoMarker is not set.
	WaitErr error

	// FindErr is returned by FindAll.
	FindErr error

	// PanicOnText makes every Element.Text call panic.
	PanicOnText bool
}

// Factory hands out fake sessions. Unknown URLs fail navigation.
type Factory struct {
	Pages map[string]Page

	// StartErr makes New fail without opening a session.
	StartErr error

	// Rendezvous, when > 0, holds each Navigate until that many sessions
	// are open at the same time, or fails it after one second.
	Rendezvous int

	mu        sync.Mutex
	cond      *sync.Cond
	opened    int
	closed    int
	active    int
	maxActive int
}

// New opens a session. Its signature matches browser.Factory.
func (f *Factory) New(ctx context.Context) (browser.Session, error) {
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cond == nil {
		f.cond = sync.NewCond(&f.mu)
	}
	f.opened++
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.cond.Broadcast()
	return &session{factory: f}, nil
}

// Opened returns the number of sessions opened so far.
func (f *Factory) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

// Closed returns the number of sessions closed so far.
func (f *Factory) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// MaxActive returns the largest number of sessions open at once.
func (f *Factory) MaxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

func (f *Factory) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	f.active--
}

func (f *Factory) rendezvous() error {
	if f.Rendezvous <= 0 {
		return nil
	}
	deadline := time.Now().Add(time.Second)
	timer := time.AfterFunc(time.Second, func() {
		f.mu.Lock()
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer timer.Stop()

	f.mu.Lock()
	defer f.mu.Unlock()
	for f.maxActive < f.Rendezvous {
		if time.Now().After(deadline) {
			return fmt.Errorf("only %d of %d sessions open together", f.maxActive, f.Rendezvous)
		}
		f.cond.Wait()
	}
	return nil
}

type session struct {
	factory *Factory
	page    *Page
	once    sync.Once
}

func (s *session) Navigate(ctx context.Context, url string) error {
	if err := s.factory.rendezvous(); err != nil {
		return err
	}
	page, ok := s.factory.Pages[url]
	if !ok {
		return fmt.Errorf("browsertest: navigate %s: no such page", url)
	}
	if page.Delay > 0 {
		select {
		case <-time.After(page.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if page.NavigateErr != nil {
		return page.NavigateErr
	}
	s.page = &page
	return nil
}

func (s *session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if s.page == nil {
		return errors.New("browsertest: no page loaded")
	}
	if s.page.NoMarker {
		return fmt.Errorf("browsertest: %w: %q after %s", browser.ErrWaitTimeout, selector, timeout)
	}
	return s.page.WaitErr
}

func (s *session) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if s.page == nil {
		return nil, errors.New("browsertest: no page loaded")
	}
	if s.page.FindErr != nil {
		return nil, s.page.FindErr
	}
	elements := make([]browser.Element, len(s.page.Rows))
	for i, row := range s.page.Rows {
		elements[i] = element{row: row, panics: s.page.PanicOnText}
	}
	return elements, nil
}

func (s *session) Close() error {
	s.once.Do(s.factory.release)
	return nil
}

type element struct {
	row    Row
	panics bool
}

func (e element) Text(ctx context.Context, selector string) (string, error) {
	if e.panics {
		panic("browsertest: element detached")
	}
	text, ok := e.row[selector]
	if !ok {
		return "", fmt.Errorf("browsertest: %w: %q", browser.ErrElementNotFound, selector)
	}
	return text, nil
}
