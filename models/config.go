package models

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the Texas Comptroller crawl this pipeline was built for.
// Everything is overridable via config file or CLI flags.
const (
	DefaultSeedURL         = "https://comptroller.texas.gov/taxforms/"
	DefaultOutputDir       = "tax_forms"
	DefaultManifestName    = "tax_forms_index.json"
	DefaultUserAgent       = "Mozilla/5.0 (compatible; Legal-Luminary/1.0)"
	DefaultMaxForms        = 50
	DefaultWorkerCount     = 1
	DefaultRequestDelay    = 500 * time.Millisecond
	DefaultDiscoverTimeout = 30 * time.Second
	DefaultDownloadTimeout = 60 * time.Second
	DefaultIdentifierExpr  = `\d{2}-\d{3,4}`
)

// DefaultCategories is the ordered keyword table used for category
// assignment. Order matters: the first keyword found wins.
var DefaultCategories = []string{
	"sales",
	"franchise",
	"motor fuel",
	"natural gas",
	"property",
	"inheritance",
	"miscellaneous",
}

// DefaultExtensions is the document-extension allowlist for candidate links.
var DefaultExtensions = []string{".pdf"}

// CrawlConfig holds runtime configuration for a crawl run. Values come
// from defaults, an optional YAML config file, then CLI flag overrides,
// in that order.
type CrawlConfig struct {
	SeedURL      string `yaml:"seed_url"`
	OutputDir    string `yaml:"output_dir"`
	ManifestPath string `yaml:"manifest_path"`
	DBPath       string `yaml:"db_path"`
	UserAgent    string `yaml:"user_agent"`

	MaxForms    int `yaml:"max_forms"`
	WorkerCount int `yaml:"workers"`

	RequestDelay    time.Duration `yaml:"request_delay"`
	DiscoverTimeout time.Duration `yaml:"discover_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`

	Categories     []string `yaml:"categories"`
	Extensions     []string `yaml:"extensions"`
	IdentifierExpr string   `yaml:"identifier_pattern"`

	// Enrich controls whether the local enrichment pass runs after fetch.
	Enrich bool `yaml:"enrich"`
}

// DefaultConfig returns a config populated with the package defaults.
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		SeedURL:         DefaultSeedURL,
		OutputDir:       DefaultOutputDir,
		UserAgent:       DefaultUserAgent,
		MaxForms:        DefaultMaxForms,
		WorkerCount:     DefaultWorkerCount,
		RequestDelay:    DefaultRequestDelay,
		DiscoverTimeout: DefaultDiscoverTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
		Categories:      append([]string(nil), DefaultCategories...),
		Extensions:      append([]string(nil), DefaultExtensions...),
		IdentifierExpr:  DefaultIdentifierExpr,
		Enrich:          true,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*CrawlConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for values the pipeline cannot run with.
func (c *CrawlConfig) Validate() error {
	u, err := url.Parse(c.SeedURL)
	if err != nil {
		return fmt.Errorf("invalid seed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("seed URL must be http or https, got %q", c.SeedURL)
	}
	if u.Host == "" {
		return fmt.Errorf("seed URL has no host: %q", c.SeedURL)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.MaxForms < 0 {
		return fmt.Errorf("max forms must be >= 0, got %d", c.MaxForms)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be >= 1, got %d", c.WorkerCount)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("category keyword table must not be empty")
	}
	return nil
}
