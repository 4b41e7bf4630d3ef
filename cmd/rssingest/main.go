package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/noticiando/rssingest/pkg/config"
	"github.com/noticiando/rssingest/pkg/domain"
	"github.com/noticiando/rssingest/pkg/feed"
	"github.com/noticiando/rssingest/pkg/ingest"
	"github.com/noticiando/rssingest/pkg/media"
	"github.com/noticiando/rssingest/pkg/repository"
	"github.com/noticiando/rssingest/server"
)

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"config file (yaml or json)"`
	DB      string `long:"db" env:"DB" description:"database dsn, overrides config"`
	Workers int    `long:"workers" env:"WORKERS" description:"feeds processed in parallel, overrides config"`

	Run        struct{}     `command:"run" description:"ingest new items of all feeds (default)"`
	Diagnose   DiagnoseCmd  `command:"diagnose" description:"fetch feeds and print what they yield without storing"`
	Watermarks struct{}     `command:"watermarks" description:"print stored feeds and their watermarks"`
	Reprocess  ReprocessCmd `command:"reprocess" description:"re-ingest the newest items of one feed"`
	Serve      struct{}     `command:"serve" description:"serve stored feeds, articles and thumbnails over http"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

// DiagnoseCmd options of the diagnose command
type DiagnoseCmd struct {
	Limit int `long:"limit" default:"10" description:"items shown per feed"`
}

// ReprocessCmd options of the reprocess command
type ReprocessCmd struct {
	Feed  string `long:"feed" required:"true" description:"feed url"`
	Count int    `long:"count" default:"10" description:"number of newest items"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	setupLog(opts.Debug)

	command := "run"
	if parser.Active != nil {
		command = parser.Active.Name
	}
	log.Printf("[DEBUG] starting rssingest %s, command %s", revision, command)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts, command, os.Stdout)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run executes command with options, results are written to out
func run(ctx context.Context, opts Opts, command string, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	switch command {
	case "run":
		summary := newRunner(cfg, repos).RunAll(ctx, feedURLs(ctx, repos.Feed, cfg))
		summary.Print(out)
		return nil

	case "diagnose":
		urls := feedURLs(ctx, repos.Feed, cfg)
		return printJSON(out, newRunner(cfg, repos).Diagnose(ctx, urls, opts.Diagnose.Limit))

	case "watermarks":
		return printWatermarks(ctx, out, repos.Feed)

	case "reprocess":
		if opts.Reprocess.Count < 1 {
			return fmt.Errorf("reprocess count must be positive, got %d", opts.Reprocess.Count)
		}
		rep, err := newRunner(cfg, repos).Reprocess(ctx, opts.Reprocess.Feed, opts.Reprocess.Count)
		if err != nil {
			return fmt.Errorf("failed to reprocess %s: %w", opts.Reprocess.Feed, err)
		}
		return printJSON(out, rep)

	case "serve":
		srv := server.New(server.Params{
			Config:    cfg,
			DB:        store{FeedRepository: repos.Feed, ArticleRepository: repos.Article},
			BucketDir: cfg.Thumbnails.Dir,
			Version:   revision,
			Debug:     opts.Debug,
		})
		return srv.Run(ctx)
	}
	return fmt.Errorf("unknown command %q", command)
}

// loadConfig reads the config file, a missing file means defaults. Command line overrides are applied last.
func loadConfig(opts Opts) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("[DEBUG] config %s not found, using defaults", opts.Config)
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	if opts.DB != "" {
		cfg.Database.DSN = opts.DB
	}
	if opts.Workers > 0 {
		cfg.Fetch.Workers = opts.Workers
	}
	return cfg, nil
}

type feedURLLister interface {
	FeedURLs(ctx context.Context) ([]string, error)
}

// feedURLs lists feeds to process: stored ones, then configured ones, then the default feed.
// A failing store is treated as empty so the run still covers configured feeds.
func feedURLs(ctx context.Context, feeds feedURLLister, cfg *config.Config) []string {
	stored, err := feeds.FeedURLs(ctx)
	if err != nil {
		log.Printf("[WARN] failed to get stored feeds, using configured ones: %v", err)
		stored = nil
	}
	return config.ResolveFeedURLs(stored, cfg)
}

// newRunner wires fetcher, image resolver, thumbnailer and repositories into an ingestion runner
func newRunner(cfg *config.Config, repos *repository.Repositories) *ingest.Runner {
	var scraper media.PageScraper
	if cfg.PageScrapeEnabled() {
		scraper = media.NewHTTPScraper(cfg.Image.Timeout, cfg.Fetch.UserAgent)
	}

	downloader := media.NewHTTPDownloader(media.DownloaderConfig{
		Timeout:   cfg.Image.Timeout,
		Attempts:  cfg.Image.Attempts,
		Backoff:   cfg.Image.Backoff,
		UserAgent: cfg.Fetch.UserAgent,
	})
	bucket := media.NewLocalBucket(cfg.Thumbnails.Dir, cfg.Thumbnails.PublicURL)

	return ingest.NewRunner(ingest.RunnerConfig{
		Fetcher:  feed.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, media.NewResolver(scraper)),
		Feeds:    repos.Feed,
		Articles: repos.Article,
		Thumbnailer: media.NewThumbnailer(downloader, bucket, media.ThumbnailerConfig{
			MaxWidth: cfg.Thumbnails.MaxWidth,
			Quality:  cfg.Thumbnails.Quality,
		}),
		Workers: cfg.Fetch.Workers,
	})
}

// watermark is a stored feed position as printed by the watermarks command
type watermark struct {
	FeedURL     string  `json:"rss"`
	Name        string  `json:"name"`
	LastArticle *string `json:"last_article"`
}

type feedLister interface {
	ListFeeds(ctx context.Context) ([]domain.Feed, error)
}

func printWatermarks(ctx context.Context, out io.Writer, feeds feedLister) error {
	list, err := feeds.ListFeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list feeds: %w", err)
	}
	res := make([]watermark, 0, len(list))
	for _, f := range list {
		wm := watermark{FeedURL: f.URL, Name: f.Name}
		if f.LastArticle != nil {
			ts := domain.FormatTimestamp(*f.LastArticle)
			wm.LastArticle = &ts
		}
		res = append(res, wm)
	}
	return printJSON(out, res)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// store joins feed and article repositories for the http server
type store struct {
	*repository.FeedRepository
	*repository.ArticleRepository
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.Err(os.Stderr)}
	if dbg {
		logOpts = []lgr.Option{lgr.Out(os.Stderr), lgr.Err(os.Stderr), lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
