package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/williampepple1/member-scraper/internal/browser"
	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/internal/extraction"
	"github.com/williampepple1/member-scraper/internal/proxy"
	"github.com/williampepple1/member-scraper/pkg/models"
)

// Scraper defines the interface for a single-page scraper
type Scraper interface {
	Scrape(ctx context.Context, url string) models.PageOutcome
}

// PageScraper scrapes one URL per call in a session of its own
type PageScraper struct {
	Config    *config.AppConfig
	Sessions  browser.Factory
	Extractor *extraction.Extractor
	Logger    *slog.Logger
}

// New creates a page scraper based on the configuration: headless Chrome
// when the browser is enabled, plain HTTP otherwise.
func New(config *config.AppConfig) *PageScraper {
	proxies := proxy.NewManager(&config.Proxies)
	if config.Browser.Enabled {
		return NewPageScraper(config, browser.NewChromeFactory(config.Browser, proxies))
	}
	return NewPageScraper(config, browser.NewStaticFactory(config.Browser, proxies))
}

// NewPageScraper creates a page scraper that opens sessions with factory
func NewPageScraper(config *config.AppConfig, factory browser.Factory) *PageScraper {
	return &PageScraper{
		Config:    config,
		Sessions:  factory,
		Extractor: extraction.NewExtractor(&config.Selectors),
		Logger:    slog.Default(),
	}
}

// Scrape loads url, waits for the content marker and extracts its records.
// Every error is reported in the returned outcome. The session opened for
// the call is closed before Scrape returns, including when it panics.
func (s *PageScraper) Scrape(ctx context.Context, url string) models.PageOutcome {
	start := time.Now()
	log := s.Logger.With("url", url)

	session, err := s.Sessions(ctx)
	if err != nil {
		log.Error("failed to start session", "error", err)
		return models.FailureFromError(url,
			models.NewScrapeError(models.ErrCodeUnexpected, "failed to start browser session", err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("failed to close session", "error", err)
		}
	}()

	records, err := s.scrape(ctx, session, url)
	if err != nil {
		se := models.AsScrapeError(err)
		log.Warn("scrape failed", "code", se.Code, "error", se.Error(), "duration", time.Since(start))
		return models.Failure(url, se.Code, se.Error())
	}

	log.Info("scrape finished", "records", len(records), "duration", time.Since(start))
	return models.Success(records)
}

func (s *PageScraper) scrape(ctx context.Context, session browser.Session, url string) ([]models.Record, error) {
	navCtx := ctx
	if timeout := s.Config.Scraper.NavigationTimeout; timeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := session.Navigate(navCtx, url); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeNavigation, "failed to load page", err)
	}

	marker := s.Config.Selectors.WaitSelector()
	if err := session.WaitFor(ctx, marker, s.Config.Scraper.WaitTimeout); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return nil, models.NewScrapeError(models.ErrCodeTimeout,
				fmt.Sprintf("content marker %q did not appear", marker), err)
		}
		return nil, models.NewScrapeError(models.ErrCodeUnexpected, "failed waiting for content", err)
	}

	records, err := s.Extractor.Extract(ctx, session)
	if err != nil {
		if errors.Is(err, browser.ErrElementNotFound) {
			return nil, models.NewScrapeError(models.ErrCodeExtraction, "failed to extract records", err)
		}
		return nil, models.NewScrapeError(models.ErrCodeUnexpected, "failed to extract records", err)
	}
	return records, nil
}
