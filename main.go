// Command legal-luminary-texas-pipeline crawls a tax-forms site, downloads
// the discovered documents, and writes a manifest describing the run.
package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/internal/crawl"
	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
)

func main() {
	app := &cli.App{
		Name:  "texas-forms-crawler",
		Usage: "crawl a tax-forms site, download documents, and build a run manifest",
		Commands: []*cli.Command{
			{
				Name:   "crawl",
				Usage:  "run the crawl pipeline once against the seed URL",
				Action: crawl.CrawlAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
					&cli.StringFlag{Name: "seed", Usage: "seed page URL", Value: models.DefaultSeedURL},
					&cli.StringFlag{Name: "output-dir", Usage: "content store directory", Value: models.DefaultOutputDir},
					&cli.StringFlag{Name: "manifest", Usage: "manifest output path (default: <output-dir>/" + models.DefaultManifestName + ")"},
					&cli.StringFlag{Name: "db", Usage: "crawl history database path"},
					&cli.IntFlag{Name: "max-forms", Usage: "maximum documents to download (0 = unlimited)", Value: models.DefaultMaxForms},
					&cli.IntFlag{Name: "workers", Usage: "download worker count", Value: models.DefaultWorkerCount},
					&cli.DurationFlag{Name: "delay", Usage: "minimum delay between requests", Value: models.DefaultRequestDelay},
					&cli.DurationFlag{Name: "timeout", Usage: "per-document download timeout", Value: 60 * time.Second},
					&cli.BoolFlag{Name: "no-enrich", Usage: "skip the local enrichment pass"},
					&cli.BoolFlag{Name: "quiet", Usage: "log errors only"},
				},
			},
			{
				Name:   "history",
				Usage:  "list recorded crawl runs",
				Action: crawl.HistoryAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
					&cli.StringFlag{Name: "output-dir", Usage: "content store directory", Value: models.DefaultOutputDir},
					&cli.StringFlag{Name: "db", Usage: "crawl history database path"},
					&cli.IntFlag{Name: "limit", Usage: "maximum runs to list", Value: 20},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
