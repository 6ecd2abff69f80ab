// Package crawl drives the discover → classify → dedup → fetch →
// fingerprint → manifest pipeline for one seed URL.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/internal/common"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/classify"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/db"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/enrich"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/fetcher"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/links"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/manifest"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/storage"
)

// PayloadExt is the extension given to stored payloads.
const PayloadExt = ".pdf"

// Pipeline wires the crawl stages together. The database and enricher are
// optional; a nil database skips history recording and a nil enricher
// skips the enrichment pass.
type Pipeline struct {
	cfg        *models.CrawlConfig
	logger     *slog.Logger
	fetcher    *fetcher.Fetcher
	classifier *classify.Classifier
	store      *storage.Store
	database   *db.DB
	enricher   enrich.Enricher
	limiter    *rate.Limiter
}

// NewPipeline validates the config and prepares every stage, including the
// content store directory. A store that cannot be created is a hard error:
// with no durable location there is nowhere to record results.
func NewPipeline(cfg *models.CrawlConfig, logger *slog.Logger, database *db.DB, enricher enrich.Enricher) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crawl config: %w", err)
	}

	classifier, err := classify.New(cfg.SeedURL, cfg.Categories, cfg.Extensions, cfg.IdentifierExpr)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	store, err := storage.NewStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:        cfg,
		logger:     logger,
		fetcher:    fetcher.NewFetcher(cfg.UserAgent),
		classifier: classifier,
		store:      store,
		database:   database,
		enricher:   enricher,
		limiter:    rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
	}, nil
}

// ManifestPath returns the configured manifest location, defaulting to
// the output directory.
func (p *Pipeline) ManifestPath() string {
	if p.cfg.ManifestPath != "" {
		return p.cfg.ManifestPath
	}
	return filepath.Join(p.cfg.OutputDir, models.DefaultManifestName)
}

// Run executes one full crawl and returns the written manifest. Per-item
// fetch failures are captured in the descriptors; only infrastructure
// failures (content store, manifest write) return an error.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	var runID int64
	if p.database != nil {
		id, err := p.database.InsertRun(p.cfg.SeedURL)
		if err != nil {
			return nil, err
		}
		runID = id
	}

	forms := p.discover(ctx)
	p.logger.Info("discovery complete", "seed_url", p.cfg.SeedURL, "forms_found", len(forms))

	if p.cfg.MaxForms > 0 && len(forms) > p.cfg.MaxForms {
		forms = forms[:p.cfg.MaxForms]
	}

	results, err := p.fetchAll(ctx, forms)
	if err != nil {
		return nil, err
	}

	if p.enricher != nil && p.cfg.Enrich {
		p.enrichAll(ctx, forms, results)
	}

	m := manifest.Build(p.cfg.SeedURL, forms, time.Now())
	manifestPath := p.ManifestPath()
	if err := m.Write(manifestPath); err != nil {
		return nil, err
	}
	p.logger.Info("manifest written", "path", manifestPath,
		"discovered", m.TotalDiscovered, "downloaded", m.TotalDownloaded, "errors", m.TotalErrors)

	if p.database != nil {
		p.recordRun(runID, forms, results, manifestPath, m)
	}

	return m, nil
}

// discover fetches the seed page and classifies its anchors. A failed or
// non-200 discovery degrades to an empty candidate set rather than
// aborting the run.
func (p *Pipeline) discover(ctx context.Context) []models.FormDescriptor {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil
	}

	discoverCtx, cancel := context.WithTimeout(ctx, p.cfg.DiscoverTimeout)
	defer cancel()

	body, status, err := p.fetcher.Get(discoverCtx, p.cfg.SeedURL)
	if err != nil {
		p.logger.Warn("seed discovery failed", "seed_url", p.cfg.SeedURL, "status", status, "error", err)
		return nil
	}

	anchors := links.Extract(body)
	forms := p.classifier.ClassifyAll(anchors)
	return classify.Dedup(forms)
}

// fetchResult carries per-form fetch bookkeeping that does not belong on
// the descriptor itself.
type fetchResult struct {
	statusCode int
	filePath   string
	sizeBytes  int64
	payload    []byte
	enrichment *enrich.Result
	enrichErr  error
}

// fetchAll downloads every descriptor through a bounded worker pool.
// Workers write to disjoint indices of forms/results, so the manifest
// keeps first-discovered order no matter how fetches interleave. The
// returned error is non-nil only for content-store failures.
func (p *Pipeline) fetchAll(ctx context.Context, forms []models.FormDescriptor) ([]fetchResult, error) {
	results := make([]fetchResult, len(forms))
	if len(forms) == 0 {
		return results, nil
	}

	jobs := make(chan int, len(forms))
	saveErrs := make(chan error, len(forms))
	var wg sync.WaitGroup

	for w := 1; w <= p.cfg.WorkerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range jobs {
				if err := p.fetchOne(ctx, id, &forms[i], &results[i]); err != nil {
					saveErrs <- err
				}
			}
		}(w)
	}

	for i := range forms {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(saveErrs)

	for err := range saveErrs {
		return nil, err
	}
	return results, nil
}

// fetchOne retrieves one document, fingerprints it, and persists it to the
// content store. Fetch failures land on the descriptor; only store write
// failures return an error.
func (p *Pipeline) fetchOne(ctx context.Context, workerID int, form *models.FormDescriptor, result *fetchResult) error {
	if err := p.limiter.Wait(ctx); err != nil {
		form.MarkFailed(err)
		return nil
	}

	p.logger.Info("downloading form", "worker_id", workerID, "form_number", form.Identifier, "url", form.URL)

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.DownloadTimeout)
	defer cancel()

	payload, status, err := p.fetcher.Get(fetchCtx, form.URL)
	result.statusCode = status
	if err != nil {
		form.MarkFailed(err)
		p.logger.Warn("download failed", "worker_id", workerID, "form_number", form.Identifier, "status", status, "error", err)
		return nil
	}

	digest := common.ContentHash(payload)
	name := storage.PayloadName(form.Identifier, digest, PayloadExt)
	path, err := p.store.SaveFile(name, payload)
	if err != nil {
		// Losing the content store mid-run is not a per-item condition.
		return err
	}

	form.MarkDownloaded(digest)
	result.filePath = path
	result.sizeBytes = int64(len(payload))
	result.payload = payload
	p.logger.Info("form saved", "worker_id", workerID, "form_number", form.Identifier,
		"file", name, "size_bytes", result.sizeBytes)
	return nil
}

// enrichAll runs the enrichment pass over downloaded forms. Failures are
// logged and recorded but never change fetch state.
func (p *Pipeline) enrichAll(ctx context.Context, forms []models.FormDescriptor, results []fetchResult) {
	for i := range forms {
		if forms[i].Status != models.StatusDownloaded {
			continue
		}
		res, err := p.enricher.Enrich(ctx, forms[i], results[i].payload)
		if err != nil {
			p.logger.Warn("enrichment failed", "form_number", forms[i].Identifier, "error", err)
			results[i].enrichErr = err
			continue
		}
		results[i].enrichment = res
	}
}

// recordRun persists the run, its forms, attempts, and enrichment output.
// History recording is best-effort once the manifest exists on disk.
func (p *Pipeline) recordRun(runID int64, forms []models.FormDescriptor, results []fetchResult, manifestPath string, m *manifest.Manifest) {
	for i, form := range forms {
		formID, err := p.database.InsertForm(runID, form, results[i].filePath, results[i].sizeBytes)
		if err != nil {
			p.logger.Warn("failed to record form", "form_number", form.Identifier, "error", err)
			continue
		}

		success := form.Status == models.StatusDownloaded
		if err := p.database.RecordFetchAttempt(formID, results[i].statusCode, form.Error, success); err != nil {
			p.logger.Warn("failed to record fetch attempt", "form_number", form.Identifier, "error", err)
		}

		if res := results[i].enrichment; res != nil {
			if err := p.database.InsertEnrichment(formID, res.Summary, res.Language, res.Keywords, ""); err != nil {
				p.logger.Warn("failed to record enrichment", "form_number", form.Identifier, "error", err)
			}
		} else if results[i].enrichErr != nil {
			if err := p.database.InsertEnrichment(formID, "", "", nil, results[i].enrichErr.Error()); err != nil {
				p.logger.Warn("failed to record enrichment error", "form_number", form.Identifier, "error", err)
			}
		}
	}

	if err := p.database.FinishRun(runID, m.TotalDiscovered, m.TotalDownloaded, m.TotalErrors, manifestPath); err != nil {
		p.logger.Warn("failed to finish run record", "error", err)
	}
}
