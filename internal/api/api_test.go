package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/williampepple1/member-scraper/internal/browser/browsertest"
	"github.com/williampepple1/member-scraper/internal/config"
	"github.com/williampepple1/member-scraper/internal/scraper"
	"github.com/williampepple1/member-scraper/pkg/models"
)

var testTargets = []string{"https://site/view=0", "https://site/view=1"}

func member(name string) browsertest.Row {
	return browsertest.Row{".mk-name": name, ".mk-position": "MK", ".mk-party": "PartyX"}
}

func testPages() map[string]browsertest.Page {
	return map[string]browsertest.Page{
		testTargets[0]: {Rows: []browsertest.Row{member("A")}},
		testTargets[1]: {NoMarker: true},
	}
}

func newTestRouter(cfg *config.AppConfig, f *browsertest.Factory) *gin.Engine {
	cfg.Server.Mode = gin.TestMode
	cfg.Scraper.Targets = testTargets

	s := scraper.NewPageScraper(cfg, f.New)
	s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, s, time.Now())
}

func TestScrapeTargets(t *testing.T) {
	f := &browsertest.Factory{Pages: testPages()}
	r := newTestRouter(config.Default(), f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scrape/knesset", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]any{
		"records": []any{map[string]any{"name": "A", "role": "MK", "affiliation": "PartyX"}},
	}, got[0])
	assert.Equal(t, "https://site/view=1", got[1]["url"])
	assert.Equal(t, models.ErrCodeTimeout, got[1]["code"])
	assert.Contains(t, got[1]["error"], "did not appear")
	assert.Equal(t, 2, f.Closed())
}

func TestScrapeTargets_Unbounded(t *testing.T) {
	// Both target navigations wait until both sessions are open together.
	f := &browsertest.Factory{Pages: testPages(), Rendezvous: len(testTargets)}
	r := newTestRouter(config.Default(), f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scrape/knesset", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, len(testTargets), f.MaxActive())
	assert.NotContains(t, w.Body.String(), models.ErrCodeNavigation)
}

func TestScrapeURLs(t *testing.T) {
	f := &browsertest.Factory{Pages: testPages()}
	r := newTestRouter(config.Default(), f)

	body := `{"urls":["https://site/view=0","https://site/view=0"]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var got models.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	for _, o := range got {
		assert.True(t, o.OK(), o.Message())
	}
}

func TestScrapeURLs_BoundedConcurrency(t *testing.T) {
	cfg := config.Default()
	cfg.Server.BatchWorkers = 3

	pages := make(map[string]browsertest.Page)
	urls := make([]string, 100)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://10.0.0.%d/admin", i)
		pages[urls[i]] = browsertest.Page{Rows: []browsertest.Row{member("A")}, Delay: 5 * time.Millisecond}
	}
	f := &browsertest.Factory{Pages: pages}
	r := newTestRouter(cfg, f)

	body, err := json.Marshal(ScrapeRequest{URLs: urls})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(string(body))))

	require.Equal(t, http.StatusOK, w.Code)
	var got models.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, len(urls))
	assert.Equal(t, len(urls), f.Closed())
	assert.LessOrEqual(t, f.MaxActive(), cfg.Server.BatchWorkers)
}

func TestScrapeURLs_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `urls`},
		{"missing urls", `{}`},
		{"empty list", `{"urls":[]}`},
		{"empty url", `{"urls":[""]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &browsertest.Factory{Pages: testPages()}
			r := newTestRouter(config.Default(), f)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), models.ErrCodeInvalidInput)
			assert.Equal(t, 0, f.Opened())
		})
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(config.Default(), &browsertest.Factory{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "healthy", got.Status)
}
