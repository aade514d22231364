package extraction

import (
	"context"
	"fmt"

	"github.com/williampepple1/member-scraper/internal/browser"
	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/pkg/models"
)

// Extractor reads member records out of a loaded page
type Extractor struct {
	Config *config.SelectorConfig
}

// NewExtractor creates a new record extractor
func NewExtractor(config *config.SelectorConfig) *Extractor {
	return &Extractor{
		Config: config,
	}
}

// Extract returns one record per row in the session's current page. It fails
// as a whole if any row lacks one of its fields; no partial record is kept.
func (e *Extractor) Extract(ctx context.Context, session browser.Session) ([]models.Record, error) {
	rows, err := session.FindAll(ctx, e.Config.Row)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		record, err := e.extractRow(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (e *Extractor) extractRow(ctx context.Context, row browser.Element) (models.Record, error) {
	var (
		record models.Record
		err    error
	)
	if record.Name, err = row.Text(ctx, e.Config.Name); err != nil {
		return models.Record{}, err
	}
	if record.Role, err = row.Text(ctx, e.Config.Role); err != nil {
		return models.Record{}, err
	}
	if record.Affiliation, err = row.Text(ctx, e.Config.Affiliation); err != nil {
		return models.Record{}, err
	}
	return record, nil
}
