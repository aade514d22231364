package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/pkg/models"
)

// ResultWriter writes results to various outputs
type ResultWriter struct {
	Config *config.IOConfig
}

// NewResultWriter creates a new result writer
func NewResultWriter(config *config.IOConfig) *ResultWriter {
	return &ResultWriter{
		Config: config,
	}
}

// OutputPath gives path the extension of format when it carries the
// extension of another supported format, so "results.json" becomes
// "results.csv" for CSV output. Other paths are returned unchanged.
func OutputPath(path, format string) string {
	ext := filepath.Ext(path)
	switch ext {
	case ".json", ".csv":
	default:
		return path
	}
	if ext == "."+format {
		return path
	}
	return strings.TrimSuffix(path, ext) + "." + format
}

// SaveToFile saves the results to a file in the configured format
func (w *ResultWriter) SaveToFile(urls []string, results models.BatchResult) error {
	file, err := os.Create(w.Config.OutputFile)
	if err != nil {
		return err
	}
	if err := w.Write(file, urls, results); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write encodes the results to out. urls must be the input the results were
// produced from, so that CSV rows can name the page each record came from.
func (w *ResultWriter) Write(out io.Writer, urls []string, results models.BatchResult) error {
	switch w.Config.OutputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)

	case "csv":
		return writeCSV(out, urls, results)

	default:
		return fmt.Errorf("unsupported output format: %s", w.Config.OutputFormat)
	}
}

// writeCSV flattens the batch to one line per record, and one line per
// failed page carrying its error.
func writeCSV(out io.Writer, urls []string, results models.BatchResult) error {
	if len(urls) != len(results) {
		return fmt.Errorf("csv: %d urls for %d results", len(urls), len(results))
	}

	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"url", "name", "role", "affiliation", "error"}); err != nil {
		return err
	}
	for i, outcome := range results {
		if !outcome.OK() {
			if err := cw.Write([]string{urls[i], "", "", "", outcome.Message()}); err != nil {
				return err
			}
			continue
		}
		for _, r := range outcome.Records() {
			if err := cw.Write([]string{urls[i], r.Name, r.Role, r.Affiliation, ""}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
