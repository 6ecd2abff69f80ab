package crawl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/internal/common"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/db"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/enrich"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/manifest"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/storage"
)

const seedPage = `<html><body>
<a href="/forms/01-114.pdf">Texas Sales and Use Tax Return 01-114</a>
<a href="/forms/01-114.pdf">Texas Sales and Use Tax Return 01-114</a>
<a href="/forms/05-102.pdf">Franchise Tax Public Information Report 05-102</a>
<a href="/forms/missing.pdf">Natural Gas Tax Report 10-157</a>
<a href="/about.html">About the agency</a>
</body></html>`

var (
	salesPayload     = []byte("%PDF-1.4 sales and use tax return")
	franchisePayload = []byte("%PDF-1.4 franchise tax public information report")
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(seedPage))
	})
	mux.HandleFunc("/forms/01-114.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(salesPayload)
	})
	mux.HandleFunc("/forms/05-102.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(franchisePayload)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, seedURL string) *models.CrawlConfig {
	t.Helper()

	cfg := models.DefaultConfig()
	cfg.SeedURL = seedURL
	cfg.OutputDir = t.TempDir()
	cfg.WorkerCount = 2
	cfg.RequestDelay = 0
	cfg.Enrich = false
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipelineRun(t *testing.T) {
	server := newTestServer(t)
	cfg := testConfig(t, server.URL+"/")

	pipeline, err := NewPipeline(cfg, testLogger(), nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	m, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if m.TotalDiscovered != 3 {
		t.Errorf("TotalDiscovered = %d, want 3", m.TotalDiscovered)
	}
	if m.TotalDownloaded != 2 {
		t.Errorf("TotalDownloaded = %d, want 2", m.TotalDownloaded)
	}
	if m.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", m.TotalErrors)
	}

	wantOrder := []struct {
		identifier string
		category   string
		status     string
	}{
		{"01-114", "sales", "downloaded"},
		{"05-102", "franchise", "downloaded"},
		{"10-157", "natural gas", "failed"},
	}
	if len(m.Forms) != len(wantOrder) {
		t.Fatalf("len(Forms) = %d, want %d", len(m.Forms), len(wantOrder))
	}
	for i, want := range wantOrder {
		form := m.Forms[i]
		if form.Identifier != want.identifier {
			t.Errorf("Forms[%d].Identifier = %q, want %q", i, form.Identifier, want.identifier)
		}
		if form.Category != want.category {
			t.Errorf("Forms[%d].Category = %q, want %q", i, form.Category, want.category)
		}
		if form.Status != want.status {
			t.Errorf("Forms[%d].Status = %q, want %q", i, form.Status, want.status)
		}
	}

	if m.Forms[0].Digest == "" {
		t.Error("downloaded form has no digest")
	}
	if m.Forms[2].Error == "" {
		t.Error("failed form has no error text")
	}
	if m.Forms[2].Digest != "" {
		t.Errorf("failed form has digest %q, want empty", m.Forms[2].Digest)
	}
	if got := m.CategoryCounts["sales"]; got != 1 {
		t.Errorf("CategoryCounts[sales] = %d, want 1", got)
	}

	// The payload must be on disk under its digest-suffixed name.
	digest := common.ContentHash(salesPayload)
	name := storage.PayloadName("01-114", digest, PayloadExt)
	saved, err := os.ReadFile(filepath.Join(cfg.OutputDir, name))
	if err != nil {
		t.Fatalf("reading stored payload: %v", err)
	}
	if string(saved) != string(salesPayload) {
		t.Error("stored payload does not match served payload")
	}

	// The manifest on disk must match what Run returned.
	data, err := os.ReadFile(pipeline.ManifestPath())
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var onDisk manifest.Manifest
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("unmarshaling manifest: %v", err)
	}
	if onDisk.TotalDownloaded != m.TotalDownloaded {
		t.Errorf("manifest on disk TotalDownloaded = %d, want %d", onDisk.TotalDownloaded, m.TotalDownloaded)
	}
}

func TestPipelineRunSeedUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	cfg := testConfig(t, server.URL+"/")
	pipeline, err := NewPipeline(cfg, testLogger(), nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	m, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, want nil on failed discovery", err)
	}
	if m.TotalDiscovered != 0 || m.TotalDownloaded != 0 || m.TotalErrors != 0 {
		t.Errorf("totals = %d/%d/%d, want 0/0/0",
			m.TotalDiscovered, m.TotalDownloaded, m.TotalErrors)
	}
	if _, err := os.Stat(pipeline.ManifestPath()); err != nil {
		t.Errorf("manifest not written after empty run: %v", err)
	}
}

func TestPipelineRunMaxForms(t *testing.T) {
	server := newTestServer(t)
	cfg := testConfig(t, server.URL+"/")
	cfg.MaxForms = 1

	pipeline, err := NewPipeline(cfg, testLogger(), nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	m, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(m.Forms) != 1 {
		t.Fatalf("len(Forms) = %d, want 1", len(m.Forms))
	}
	if m.Forms[0].Identifier != "01-114" {
		t.Errorf("Forms[0].Identifier = %q, want %q", m.Forms[0].Identifier, "01-114")
	}
}

func TestPipelineRunRecordsHistory(t *testing.T) {
	server := newTestServer(t)
	cfg := testConfig(t, server.URL+"/")
	cfg.Enrich = true

	database, err := db.Open(filepath.Join(t.TempDir(), db.DefaultDBName))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	defer database.Close()

	pipeline, err := NewPipeline(cfg, testLogger(), database, enrich.NewLocalEnricher())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	m, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runs, err := database.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	run := runs[0]
	if run.FinishedAt == nil {
		t.Error("run not marked finished")
	}
	if run.TotalDiscovered != m.TotalDiscovered || run.TotalDownloaded != m.TotalDownloaded {
		t.Errorf("recorded totals = %d/%d, want %d/%d",
			run.TotalDiscovered, run.TotalDownloaded, m.TotalDiscovered, m.TotalDownloaded)
	}

	digest := common.ContentHash(salesPayload)
	urls, err := database.FindFormsByDigest(digest)
	if err != nil {
		t.Fatalf("FindFormsByDigest() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != server.URL+"/forms/01-114.pdf" {
		t.Errorf("FindFormsByDigest() = %v, want the sales form URL", urls)
	}
}
