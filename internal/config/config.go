package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Scraper   ScraperConfig  `yaml:"scraper"`
	Browser   BrowserConfig  `yaml:"browser"`
	Selectors SelectorConfig `yaml:"selectors"`
	Proxies   ProxyConfig    `yaml:"proxies"`
	IO        IOConfig       `yaml:"io"`
	Server    ServerConfig   `yaml:"server"`
	Log       LogConfig      `yaml:"log"`
}

// ScraperConfig holds the scraper configuration
type ScraperConfig struct {
	// Workers caps the number of pages scraped at once. 0 runs one task per URL.
	Workers int `yaml:"workers"`

	// WaitTimeout bounds the wait for the content marker on each page.
	WaitTimeout time.Duration `yaml:"wait_timeout"`

	// NavigationTimeout bounds page navigation. 0 disables it.
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`

	Targets []string `yaml:"targets,omitempty"`
}

// BrowserConfig holds the browser configuration for JavaScript rendering
type BrowserConfig struct {
	// Enabled selects headless Chrome; when false pages are fetched over
	// plain HTTP and queried without script execution.
	Enabled   bool   `yaml:"enabled"`
	Headless  bool   `yaml:"headless"`
	NoSandbox bool   `yaml:"no_sandbox"`
	ExecPath  string `yaml:"exec_path,omitempty"`
	UserAgent string `yaml:"user_agent"`
}

// SelectorConfig holds the CSS selectors used to locate member rows
type SelectorConfig struct {
	// Marker is the element waited for before extraction. Defaults to Row.
	Marker      string `yaml:"marker"`
	Row         string `yaml:"row"`
	Name        string `yaml:"name"`
	Role        string `yaml:"role"`
	Affiliation string `yaml:"affiliation"`
}

// WaitSelector returns the selector waited for before extraction
func (s SelectorConfig) WaitSelector() string {
	if s.Marker != "" {
		return s.Marker
	}
	return s.Row
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// IOConfig holds the input/output configuration
type IOConfig struct {
	InputFile    string `yaml:"input_file"`
	OutputFile   string `yaml:"output_file"`
	OutputFormat string `yaml:"output_format"`
}

// ServerConfig controls the HTTP server
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // "debug", "release", "test"

	// BatchWorkers caps the pages scraped at once for a POST /scrape batch.
	// The configured targets still run under scraper.workers.
	BatchWorkers int `yaml:"batch_workers"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// Load loads the configuration from a YAML file on top of Default
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", filename, err)
	}

	if len(config.Scraper.Targets) == 0 {
		config.Scraper.Targets = DefaultTargets
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default creates the default configuration
func Default() *AppConfig {
	return &AppConfig{
		Scraper: ScraperConfig{
			Workers:     0,
			WaitTimeout: DefaultWaitTimeout,
			Targets:     DefaultTargets,
		},
		Browser: BrowserConfig{
			Enabled:   true,
			Headless:  true,
			UserAgent: DefaultUserAgent,
		},
		Selectors: DefaultSelectors,
		Proxies: ProxyConfig{
			Rotate: true,
			List:   []string{},
		},
		IO: IOConfig{
			OutputFile:   "results.json",
			OutputFormat: "json",
		},
		Server: ServerConfig{
			Addr:         ":3000",
			Mode:         "release",
			BatchWorkers: DefaultBatchWorkers,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate reports configuration values the scraper cannot run with
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Scraper.Workers < 0 {
		errs = append(errs, fmt.Errorf("scraper.workers must be >= 0, got %d", c.Scraper.Workers))
	}
	if c.Server.BatchWorkers <= 0 {
		errs = append(errs, fmt.Errorf("server.batch_workers must be positive, got %d", c.Server.BatchWorkers))
	}
	if c.Scraper.WaitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("scraper.wait_timeout must be positive, got %s", c.Scraper.WaitTimeout))
	}
	if c.Scraper.NavigationTimeout < 0 {
		errs = append(errs, fmt.Errorf("scraper.navigation_timeout must be >= 0, got %s", c.Scraper.NavigationTimeout))
	}
	for name, sel := range map[string]string{
		"row":         c.Selectors.Row,
		"name":        c.Selectors.Name,
		"role":        c.Selectors.Role,
		"affiliation": c.Selectors.Affiliation,
	} {
		if sel == "" {
			errs = append(errs, fmt.Errorf("selectors.%s must not be empty", name))
		}
	}
	switch c.IO.OutputFormat {
	case "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("io.output_format must be json or csv, got %q", c.IO.OutputFormat))
	}
	return errors.Join(errs...)
}
