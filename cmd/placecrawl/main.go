// Command placecrawl looks up the business data of attractions on Google Maps.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/koizuka/placescraper"
	"github.com/koizuka/placescraper/config"
	"github.com/koizuka/placescraper/store"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func main() {
	envFile := flag.String("env", "", ".env file to load (default: ./.env if present)")
	limit := flag.Int("limit", 0, "process only the first N attractions (0 for all)")
	workers := flag.Int("workers", 0, "number of browsers run in parallel")
	csvPath := flag.String("csv", "", "read attractions from a CSV file instead of the database")
	record := flag.Bool("record", false, "save a snapshot of every visited page")
	replay := flag.Bool("replay", false, "replay saved snapshots instead of using the network")
	headful := flag.Bool("headful", false, "show the browser window")
	lookup := flag.String("lookup", "", "look up a single comma-separated keyword list and print the record")
	debug := flag.Bool("debug", false, "log every page operation")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	// only flags given on the command line override the configuration
	overrides := map[string]interface{}{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "limit":
			overrides["crawler.limit"] = *limit
		case "workers":
			overrides["crawler.workers"] = *workers
		case "csv":
			overrides["source.csv"] = *csvPath
		case "record":
			overrides["session.record"] = *record
		case "replay":
			overrides["session.replay"] = *replay
		case "headful":
			overrides["browser.headless"] = !*headful
		case "lookup":
			overrides["crawler.workers"] = 1
		}
	})
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.LoadWith(overrides, envFiles...)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := placescraper.ZerologLogger{Log: log}
	session, err := newSession(cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("session")
	}
	newDriver := func() (placescraper.PageDriver, error) {
		return session.NewDriver(cfg.ChromeOptions())
	}

	if *lookup != "" {
		if err := lookupOne(ctx, cfg, newDriver, logger, strings.Split(*lookup, ",")); err != nil {
			log.Fatal().Err(err).Msg("lookup")
		}
		return
	}

	summary, err := run(ctx, cfg, newDriver, logger, log)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("batch failed")
	}
	event := log.Info()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.
		Int("attractions", summary.Attractions).
		Int("found", summary.Found).
		Int("not_found", summary.NotFound).
		Int("failed", summary.Failed).
		Int("unparsed_hours", summary.UnparsedHours).
		Int("unprocessed", summary.Unprocessed).
		Msg("done")
	if err != nil {
		os.Exit(1)
	}
}

func newSession(cfg *config.Config, logger placescraper.Logger) (*placescraper.Session, error) {
	session := placescraper.NewSession(cfg.Session.Name, logger)
	session.FilePrefix = cfg.Session.Dir
	session.UserAgent = cfg.Browser.UserAgent
	session.SaveToFile = cfg.Session.Record
	session.NotUseNetwork = cfg.Session.Replay
	if cfg.Session.Cookies && !cfg.Session.Replay {
		if err := session.LoadCookie(); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func run(ctx context.Context, cfg *config.Config, newDriver placescraper.DriverFactory, logger placescraper.Logger, log zerolog.Logger) (placescraper.Summary, error) {
	var (
		source placescraper.AttractionSource
		sinks  []placescraper.RecordSink
		db     *store.SQLStore
	)
	if cfg.NeedsDatabase() {
		if err := cfg.Database.Validate(); err != nil {
			return placescraper.Summary{}, err
		}
		var err error
		db, err = store.Open(ctx, cfg.Database.Driver, cfg.Database.DataSourceName())
		if err != nil {
			return placescraper.Summary{}, fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
	}

	if cfg.Source.CSV != "" {
		source = store.CSVSource{Path: cfg.Source.CSV}
	} else {
		source = db
	}

	var jsonWriter *store.JSONWriter
	if cfg.Output.JSON {
		jsonWriter = &store.JSONWriter{Dir: cfg.Output.Dir}
		sinks = append(sinks, jsonWriter)
	}
	if cfg.Output.Table {
		if err := db.EnsureSchema(ctx); err != nil {
			return placescraper.Summary{}, fmt.Errorf("ensure schema: %w", err)
		}
		sinks = append(sinks, db)
	}

	runner := &placescraper.Runner{
		NewDriver: newDriver,
		Options:   cfg.CrawlerOptions(),
		Locale:    cfg.Locale(),
		Workers:   cfg.Crawler.Workers,
		Limit:     cfg.Crawler.Limit,
		Log:       logger,
	}
	summary, err := runner.Run(ctx, source, sinks...)
	if jsonWriter != nil && jsonWriter.LastPath != "" {
		log.Info().Str("file", jsonWriter.LastPath).Msg("json written")
	}
	return summary, err
}

func lookupOne(ctx context.Context, cfg *config.Config, newDriver placescraper.DriverFactory, logger placescraper.Logger, keywords []string) error {
	driver, err := newDriver()
	if err != nil {
		return err
	}
	defer driver.Close()

	crawler, err := placescraper.NewCrawler(driver, logger, cfg.CrawlerOptions())
	if err != nil {
		return err
	}
	for i := range keywords {
		keywords[i] = strings.TrimSpace(keywords[i])
	}
	raw, err := crawler.Lookup(ctx, keywords)
	if err != nil {
		return err
	}
	normalized, err := placescraper.Normalize(*raw, cfg.Locale())
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(normalized)
}
