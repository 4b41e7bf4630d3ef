package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// DefaultFeedURL is ingested when neither the database nor the config lists any feed
const DefaultFeedURL = "https://revistadireitohoje.com.br/feed/"

// Config represents the application configuration
type Config struct {
	Feeds   []string `yaml:"feeds" json:"feeds" jsonschema:"description=Feed URLs used when the database has no feeds yet"`
	RSSList []string `yaml:"rss_list" json:"rss_list,omitempty" jsonschema:"description=Legacy alias of feeds"`

	Database   DatabaseConfig  `yaml:"database" json:"database" jsonschema:"description=Record store settings"`
	Fetch      FetchConfig     `yaml:"fetch" json:"fetch" jsonschema:"description=Feed download settings"`
	Image      ImageConfig     `yaml:"image" json:"image" jsonschema:"description=Image resolution and download settings"`
	Thumbnails ThumbnailConfig `yaml:"thumbnails" json:"thumbnails" jsonschema:"description=Thumbnail generation and storage"`
	Server     ServerConfig    `yaml:"server" json:"server" jsonschema:"description=Read-only HTTP API"`
}

// DatabaseConfig defines the record store connection
type DatabaseConfig struct {
	DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:rssingest.db?cache=shared&mode=rwc&_txlock=immediate,description=SQLite file or postgres:// connection string"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
}

// FetchConfig defines how feed documents are downloaded
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=20s,description=Feed download timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User-Agent header (browser-like default when empty)"`
	Workers   int           `yaml:"workers" json:"workers" jsonschema:"default=1,minimum=1,maximum=32,description=Feeds processed in parallel"`
}

// ImageConfig defines image lookup and download retries
type ImageConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Timeout of a single image or page request"`
	Attempts    int           `yaml:"attempts" json:"attempts" jsonschema:"default=3,minimum=1,maximum=10,description=Image download attempts"`
	Backoff     time.Duration `yaml:"backoff" json:"backoff" jsonschema:"default=1s,description=First retry delay (doubled on each retry)"`
	ScrapePages *bool         `yaml:"scrape_pages" json:"scrape_pages,omitempty" jsonschema:"default=true,description=Look for og:image on the article page when the feed has no image"`
}

// ThumbnailConfig defines where and how thumbnails are written
type ThumbnailConfig struct {
	Dir       string `yaml:"dir" json:"dir" jsonschema:"default=var/bucket,description=Local bucket directory"`
	PublicURL string `yaml:"public_url" json:"public_url" jsonschema:"default=http://localhost:8080,description=Base URL thumbnails are served from"`
	MaxWidth  int    `yaml:"max_width" json:"max_width" jsonschema:"default=300,minimum=16,description=Thumbnail bounding box in pixels"`
	Quality   int    `yaml:"quality" json:"quality" jsonschema:"default=70,minimum=1,maximum=100,description=JPEG quality"`
}

// ServerConfig defines the HTTP API
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
}

// Load reads configuration from a YAML (or JSON) file, expands environment variables
// and applies defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		lgr.Printf("[WARN] config schema validation: %v", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults applied, used when no config file exists
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Database.DSN == "" {
		c.Database.DSN = "file:rssingest.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 20 * time.Second
	}
	if c.Fetch.Workers == 0 {
		c.Fetch.Workers = 1
	}

	if c.Image.Timeout == 0 {
		c.Image.Timeout = 10 * time.Second
	}
	if c.Image.Attempts == 0 {
		c.Image.Attempts = 3
	}
	if c.Image.Backoff == 0 {
		c.Image.Backoff = time.Second
	}
	if c.Image.ScrapePages == nil {
		enabled := true
		c.Image.ScrapePages = &enabled
	}

	if c.Thumbnails.Dir == "" {
		c.Thumbnails.Dir = "var/bucket"
	}
	if c.Thumbnails.PublicURL == "" {
		c.Thumbnails.PublicURL = "http://localhost:8080"
	}
	if c.Thumbnails.MaxWidth == 0 {
		c.Thumbnails.MaxWidth = 300
	}
	if c.Thumbnails.Quality == 0 {
		c.Thumbnails.Quality = 70
	}

	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
}

// validate checks configuration values are in the acceptable ranges
func validate(cfg *Config) error {
	for _, u := range cfg.FeedURLs() {
		parsed, err := url.Parse(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("invalid feed url %q", u)
		}
	}
	if cfg.Fetch.Workers < 1 || cfg.Fetch.Workers > 32 {
		return fmt.Errorf("fetch.workers must be between 1 and 32, got %d", cfg.Fetch.Workers)
	}
	if cfg.Fetch.Timeout < 0 || cfg.Image.Timeout < 0 || cfg.Image.Backoff < 0 {
		return fmt.Errorf("timeouts and backoff must not be negative")
	}
	if cfg.Image.Attempts < 1 || cfg.Image.Attempts > 10 {
		return fmt.Errorf("image.attempts must be between 1 and 10, got %d", cfg.Image.Attempts)
	}
	if cfg.Thumbnails.MaxWidth < 16 {
		return fmt.Errorf("thumbnails.max_width must be at least 16, got %d", cfg.Thumbnails.MaxWidth)
	}
	if cfg.Thumbnails.Quality < 1 || cfg.Thumbnails.Quality > 100 {
		return fmt.Errorf("thumbnails.quality must be between 1 and 100, got %d", cfg.Thumbnails.Quality)
	}
	return nil
}

// FeedURLs returns configured feed urls from feeds and rss_list, trimmed and without repeats
func (c *Config) FeedURLs() []string {
	seen := make(map[string]bool)
	var res []string
	for _, u := range append(append([]string{}, c.Feeds...), c.RSSList...) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		res = append(res, u)
	}
	return res
}

// PageScrapeEnabled reports whether the article page fallback is on
func (c *Config) PageScrapeEnabled() bool {
	return c.Image.ScrapePages == nil || *c.Image.ScrapePages
}

// ResolveFeedURLs picks the feeds to ingest: stored feeds first, then configured ones,
// then DefaultFeedURL
func ResolveFeedURLs(stored []string, cfg *Config) []string {
	if len(stored) > 0 {
		return stored
	}
	if cfg != nil {
		if urls := cfg.FeedURLs(); len(urls) > 0 {
			return urls
		}
	}
	return []string{DefaultFeedURL}
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
