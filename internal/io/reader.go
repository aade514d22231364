package io

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/williampepple1/member-scraper/internal/config"
)

// URLReader reads URLs from various sources
type URLReader struct {
	Config *config.IOConfig
}

// NewURLReader creates a new URL reader
func NewURLReader(config *config.IOConfig) *URLReader {
	return &URLReader{
		Config: config,
	}
}

// ReadFromFile reads page URLs from a file, one per line. Blank lines and
// lines starting with # are skipped and duplicates are kept. A line that is
// not an absolute http(s) URL fails the whole read with its line number.
func (r *URLReader) ReadFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := checkPageURL(line); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filename, n, err)
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

func checkPageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// GetURLs returns URLs from the configured input file, or defaults when no
// file is configured
func (r *URLReader) GetURLs(defaults []string) ([]string, error) {
	if r.Config.InputFile != "" {
		return r.ReadFromFile(r.Config.InputFile)
	}

	return defaults, nil
}
