package crawl

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/db"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/pkg/enrich"
)

// CrawlAction is the `crawl` command: run the full pipeline once against
// the configured seed URL.
func CrawlAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	database, err := openHistoryDB(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to open crawl history database: %v", err), 2)
	}
	defer database.Close()

	var enricher enrich.Enricher
	if cfg.Enrich {
		enricher = enrich.NewLocalEnricher()
	}

	pipeline, err := NewPipeline(cfg, logger, database, enricher)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	start := time.Now()
	m, err := pipeline.Run(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: crawl failed: %v", err), 1)
	}

	fmt.Printf("Crawl complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Discovered: %d\n", m.TotalDiscovered)
	fmt.Printf("  Downloaded: %d\n", m.TotalDownloaded)
	fmt.Printf("  Errors:     %d\n", m.TotalErrors)
	fmt.Printf("  Manifest:   %s\n", pipeline.ManifestPath())
	return nil
}

// HistoryAction is the `history` command: list recorded crawl runs.
func HistoryAction(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	database, err := openHistoryDB(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to open crawl history database: %v", err), 2)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	if len(runs) == 0 {
		fmt.Println("No crawl runs recorded yet")
		return nil
	}

	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format(time.RFC3339)
		}
		fmt.Printf("run %d  %s  discovered=%d downloaded=%d errors=%d  finished=%s\n",
			run.RunID, run.SeedURL, run.TotalDiscovered, run.TotalDownloaded, run.TotalErrors, finished)
	}
	return nil
}

// resolveConfig layers defaults, an optional config file, then CLI flags.
func resolveConfig(c *cli.Context) (*models.CrawlConfig, error) {
	cfg := models.DefaultConfig()
	if c.IsSet("config") {
		loaded, err := models.LoadConfig(c.String("config"))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("seed") {
		cfg.SeedURL = c.String("seed")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("manifest") {
		cfg.ManifestPath = c.String("manifest")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("max-forms") {
		cfg.MaxForms = c.Int("max-forms")
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("delay") {
		cfg.RequestDelay = c.Duration("delay")
	}
	if c.IsSet("timeout") {
		cfg.DownloadTimeout = c.Duration("timeout")
	}
	if c.Bool("no-enrich") {
		cfg.Enrich = false
	}

	return cfg, nil
}

// openHistoryDB opens the crawl-history database, creating its parent
// directory if needed.
func openHistoryDB(cfg *models.CrawlConfig) (*db.DB, error) {
	path := cfg.DBPath
	if path == "" {
		path = filepath.Join(cfg.OutputDir, db.DefaultDBName)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return db.Open(path)
}
