package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/internal/scraper"
	"github.com/williampepple1/member-scraper/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Pool runs page scrapes concurrently and collects their outcomes
type Pool struct {
	Config  *config.ScraperConfig
	Scraper scraper.Scraper
	Logger  *slog.Logger
}

// NewPool creates a new worker pool
func NewPool(config *config.ScraperConfig, s scraper.Scraper) *Pool {
	return &Pool{
		Config:  config,
		Scraper: s,
		Logger:  slog.Default(),
	}
}

// ScrapeAll scrapes every URL and returns once all of them have finished.
// Result i always belongs to urls[i]. A failing or panicking task only
// affects its own slot.
//
// With Config.Workers == 0 every URL gets its own goroutine; otherwise at
// most Workers scrapes run at once.
func (p *Pool) ScrapeAll(ctx context.Context, urls []string) models.BatchResult {
	results := make(models.BatchResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	var g errgroup.Group
	if p.Config.Workers > 0 {
		g.SetLimit(p.Config.Workers)
	}

	for i, url := range urls {
		g.Go(func() error {
			results[i] = p.run(ctx, i, url)
			return nil
		})
	}
	// Tasks report failures through their outcome, never through the group.
	_ = g.Wait()

	succeeded, failed := results.Counts()
	p.Logger.Info("batch finished", "total", len(urls), "succeeded", succeeded, "failed", failed)
	return results
}

// run scrapes one URL, turning a panic into a failed outcome for that URL
func (p *Pool) run(ctx context.Context, index int, url string) (outcome models.PageOutcome) {
	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("scrape task panicked", "index", index, "url", url, "panic", r, "stack", string(debug.Stack()))
			outcome = models.Failure(url, models.ErrCodeUnexpected, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	p.Logger.Debug("processing URL", "index", index, "url", url)
	return p.Scraper.Scrape(ctx, url)
}
