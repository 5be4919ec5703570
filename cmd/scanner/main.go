package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"MarketScanner/internal/collector"
	"MarketScanner/internal/config"
	"MarketScanner/internal/logger"
	"MarketScanner/internal/metrics"
	"MarketScanner/internal/model"
	"MarketScanner/internal/notifier"
	"MarketScanner/internal/recorder"
	"MarketScanner/internal/report"
	"MarketScanner/internal/scan"
	"MarketScanner/internal/scheduler"
)

func main() {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	cfgPath := flag.String("config", defaultCfg, "path to the YAML config")
	once := flag.Bool("once", false, "run a single scan and exit")
	dryRun := flag.Bool("dry-run", false, "skip the scan journal and digest delivery")
	printDigest := flag.Bool("digest", false, "print the text digest to stdout")
	flag.Parse()

	if err := run(*cfgPath, *once, *dryRun, *printDigest); err != nil {
		fmt.Fprintf(os.Stderr, "scanner: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string, once, dryRun, printDigest bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, logCloser, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close()
	log.Info().Str("config", cfgPath).Bool("once", once).Bool("dry_run", dryRun).Msg("MarketScanner starting")

	hc, err := collector.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.Proxy)
	if err != nil {
		return fmt.Errorf("http client: %w", err)
	}
	src, err := collector.NewSources(collector.SourcesConfig{
		Finnhub:       collector.ProviderConfig{APIKey: cfg.Finnhub.APIKey, BaseURL: cfg.Finnhub.BaseURL, RateLimit: cfg.Finnhub.RateLimit, Burst: cfg.Finnhub.Burst},
		Tradier:       collector.ProviderConfig{APIKey: cfg.Tradier.APIKey, BaseURL: cfg.Tradier.BaseURL, RateLimit: cfg.Tradier.RateLimit, Burst: cfg.Tradier.Burst},
		Yahoo:         collector.ProviderConfig{BaseURL: cfg.Yahoo.BaseURL, RateLimit: cfg.Yahoo.RateLimit, Burst: cfg.Yahoo.Burst},
		HistorySource: cfg.Scan.HistorySource,
	}, hc, collector.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init sources: %w", err)
	}
	if src.Options == nil {
		log.Warn().Msg("no tradier api key, options flow disabled")
	}

	met := metrics.New()
	agg := scan.NewAggregator(cfg, *src, scan.WithLogger(log), scan.WithMetrics(met))

	rec := openRecorder(cfg, dryRun, log)
	defer rec.Close()

	var tg *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && !dryRun {
		tg = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.BaseURL, hc, log)
	}

	digest := report.NewDigest(cfg)
	deps := scheduler.Deps{
		Scanner:    agg,
		Watchlist:  cfg.Watchlist,
		Writer:     report.NewJSONWriter(cfg.Output.Dir, log),
		Digest:     digest,
		Recorder:   rec,
		MaxRetries: cfg.Telegram.MaxRetries,
	}
	if tg != nil {
		deps.Sender = tg
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	sched := scheduler.NewScheduler(ctx, loc, deps, log)

	if once {
		bundle, err := sched.RunScan(ctx)
		if err != nil {
			return err
		}
		if printDigest {
			fmt.Println(digest.Render(bundle))
		}
		return nil
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	log.Info().Time("next_run", sched.Next()).Msg("scheduler armed")

	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics.Addr, met, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if tg != nil && cfg.Telegram.Commands {
		go tg.StartPolling(ctx, sched.HandleCommand)
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning now")
		sched.RunInBackground(ctx, func(bundle *model.ScanBundle) {
			if printDigest {
				fmt.Println(digest.Render(bundle))
			}
		})
	}

	log.Info().Msg("MarketScanner is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}

func openRecorder(cfg *config.Config, dryRun bool, log zerolog.Logger) recorder.Recorder {
	if dryRun || cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func serveMetrics(addr string, met *metrics.Recorder, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", met.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server")
		}
	}()
	return srv
}
