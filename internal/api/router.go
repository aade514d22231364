package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/internal/scraper"
	"github.com/williampepple1/member-scraper/internal/worker"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
//	GET  /health          liveness
//	GET  /scrape/knesset  scrape the configured targets
//	POST /scrape          scrape the URLs in the request body
//
// The configured targets run under scraper.workers. Caller-supplied batches
// get their own pool capped at server.batch_workers.
func NewRouter(cfg *config.AppConfig, s scraper.Scraper, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	targets := worker.NewPool(&cfg.Scraper, s)

	batchCfg := cfg.Scraper
	batchCfg.Workers = cfg.Server.BatchWorkers
	batches := worker.NewPool(&batchCfg, s)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", Health(startTime))
	r.GET("/scrape/knesset", ScrapeTargets(targets, cfg.Scraper.Targets))
	r.POST("/scrape", ScrapeURLs(batches))

	return r
}
