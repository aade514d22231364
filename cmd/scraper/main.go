package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/internal/io"
	"github.com/williampepple1/member-scraper/internal/logging"
	"github.com/williampepple1/member-scraper/internal/scraper"
	"github.com/williampepple1/member-scraper/internal/worker"
)

func main() {
	// Define command-line flags
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	inputFile := flag.String("input", "", "File containing URLs to scrape (one per line)")
	outputFile := flag.String("output", "", "File to save results to (default results.<format>)")
	outputFormat := flag.String("format", "json", "Output format: json or csv")
	numWorkers := flag.Int("workers", 0, "Maximum concurrent pages (0 = one per URL)")
	waitTimeout := flag.Duration("wait-timeout", config.DefaultWaitTimeout, "How long to wait for member rows on each page")
	enableBrowser := flag.Bool("browser", true, "Render pages in headless Chrome (false = plain HTTP)")
	headless := flag.Bool("headless", true, "Run Chrome headless")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	// Load configuration
	appConfig := config.Default()
	if *configFile != "" {
		var err error
		appConfig, err = config.Load(*configFile)
		if err != nil {
			slog.Error("error loading configuration", "file", *configFile, "error", err)
			os.Exit(1)
		}
	}

	// Command-line flags override the file, but only when given explicitly
	outputGiven := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			appConfig.IO.InputFile = *inputFile
		case "output":
			appConfig.IO.OutputFile = *outputFile
			outputGiven = true
		case "format":
			appConfig.IO.OutputFormat = *outputFormat
		case "workers":
			appConfig.Scraper.Workers = *numWorkers
		case "wait-timeout":
			appConfig.Scraper.WaitTimeout = *waitTimeout
		case "browser":
			appConfig.Browser.Enabled = *enableBrowser
		case "headless":
			appConfig.Browser.Headless = *headless
		case "log-level":
			appConfig.Log.Level = *logLevel
		}
	})
	if !outputGiven {
		appConfig.IO.OutputFile = io.OutputPath(appConfig.IO.OutputFile, appConfig.IO.OutputFormat)
	}
	if err := appConfig.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logging.Init(appConfig.Log, os.Stderr)
	if *configFile != "" {
		log.Info("loaded configuration", "file", *configFile)
	}

	// Get URLs to scrape
	urlReader := io.NewURLReader(&appConfig.IO)
	urls, err := urlReader.GetURLs(appConfig.Scraper.Targets)
	if err != nil {
		log.Error("error reading URLs", "error", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		log.Error("no URLs to scrape")
		os.Exit(1)
	}

	log.Info("preparing to scrape",
		"urls", len(urls),
		"workers", appConfig.Scraper.Workers,
		"browser", appConfig.Browser.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	pool := worker.NewPool(&appConfig.Scraper, scraper.New(appConfig))
	results := pool.ScrapeAll(ctx, urls)

	for i, result := range results {
		if !result.OK() {
			log.Warn("error scraping page", "url", urls[i], "code", result.Code(), "error", result.Message())
			continue
		}
		log.Info("scraped page", "url", urls[i], "records", len(result.Records()))
	}

	// Save results to file
	resultWriter := io.NewResultWriter(&appConfig.IO)
	if err := resultWriter.SaveToFile(urls, results); err != nil {
		log.Error("error saving results", "file", appConfig.IO.OutputFile, "error", err)
		os.Exit(1)
	}

	succeeded, failed := results.Counts()
	log.Info("all URLs have been processed",
		"success", succeeded,
		"failures", failed,
		"duration", time.Since(start).Round(time.Millisecond),
		"output", appConfig.IO.OutputFile,
	)
}
