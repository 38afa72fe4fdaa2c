package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-recommender/api"
	"property-recommender/config"
	"property-recommender/metrics"
	"property-recommender/scraper/rightmove"
	"property-recommender/services"
	"property-recommender/storage"
	"property-recommender/utils"
)

const usage = `usage: property-recommender [serve|crawl|stats]

  serve   load the catalog and activity log and serve recommendations (default)
  crawl   scrape listing search results into CSV (and PostgreSQL when enabled)
  stats   print popularity insights for the loaded catalog
`

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerWith(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "crawl":
		err = crawl(ctx, cfg, logger)
	case "stats":
		err = stats(cfg, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%s failed: %v", cmd, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Property recommender starting ===")

	snap, err := storage.LoadSnapshot(cfg.PropertyCSVPath, cfg.ActivityCSVPath, logger)
	if err != nil {
		return err
	}

	var sizer services.PageSizer = services.FixedPageSize(cfg.PageSize)
	if cfg.PageSizeRandom {
		logger.Warn("[main] Random page sizes enabled (seed %d); pagination varies between requests", cfg.PageSizeSeed)
		sizer = services.NewRandomPageSize(services.LegacyMinPageSize, services.LegacyMaxPageSize, cfg.PageSizeSeed)
	}

	rec := services.NewRecommender(snap, services.RecommenderOptions{
		PageSizer:   sizer,
		MaxPageSize: cfg.MaxPageSize,
		DefaultSort: services.ParseSortKey(cfg.RankBy),
		ImageLookup: services.ParseImageLookupMode(cfg.ImageLookup),
	}, logger)
	logger.Info("Config: page size %d | max page size %d | rank by %s | image lookup %s",
		cfg.PageSize, cfg.MaxPageSize, services.ParseSortKey(cfg.RankBy), services.ParseImageLookupMode(cfg.ImageLookup))

	m := metrics.New()
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(api.NewHandler(rec, m, cfg.WebURLJSONPath, logger), m, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func crawl(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Listing crawl starting ===")
	logger.Info("Config: pages %d | concurrency %d | rate %dms | retries %d",
		cfg.PagesToScrape, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MaxRetries)

	sinks := []storage.RawListingWriter{}
	var store storage.RawListingStore

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	sinks = append(sinks, csvWriter)

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(ctx, cfg.DSN())
		if err != nil {
			_ = csvWriter.Close()
			return err
		}
		sinks = append(sinks, pgWriter)
		store = pgWriter
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				logger.Warn("[main] Closing sink: %v", err)
			}
		}
	}()

	raw, err := rightmove.New(cfg, logger).Scrape(ctx)
	if err != nil {
		logger.Error("Crawl ended early: %v", err)
	}
	if len(raw) == 0 {
		return errors.New("no listings were scraped")
	}

	cleaned := services.NewCleaner(rightmove.BaseURL, logger).Clean(raw)
	for _, s := range sinks {
		if err := s.WriteRaw(cleaned); err != nil {
			return fmt.Errorf("write listings: %w", err)
		}
	}

	if store != nil {
		stored, err := store.FetchAll(ctx)
		if err != nil {
			return err
		}
		logger.Info("PostgreSQL table scraped_properties now holds %d listings", len(stored))
	}

	logger.Info("Done. %d listings written to %s", len(cleaned), cfg.CSVOutputPath)
	return nil
}

func stats(cfg *config.Config, logger *utils.Logger) error {
	snap, err := storage.LoadSnapshot(cfg.PropertyCSVPath, cfg.ActivityCSVPath, logger)
	if err != nil {
		return err
	}

	svc := services.NewInsightService(logger)
	svc.Print(os.Stdout, svc.Generate(snap))
	return nil
}
