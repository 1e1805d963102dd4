package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/rss-howler/app/cfg"
	"github.com/lysyi3m/rss-howler/app/database"
	"github.com/lysyi3m/rss-howler/app/feed"
	"github.com/lysyi3m/rss-howler/app/fetch"
	"github.com/lysyi3m/rss-howler/app/logger"
	"github.com/lysyi3m/rss-howler/app/metrics"
	"github.com/lysyi3m/rss-howler/app/tasks"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		// go-flags already printed its own parse errors
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	if appCfg == nil {
		return 0
	}

	if appCfg.ShowVersion {
		fmt.Println(appCfg.Version)
		return 0
	}

	logger.Setup(os.Stderr, appCfg.LogFormat, appCfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.Ctx(ctx, slog.String("run_id", uuid.NewString()))

	slog.InfoContext(ctx, "Starting RSS Howler", "version", appCfg.Version, "output_dir", appCfg.OutputDir)

	collector := metrics.NewCollector(prometheus.NewRegistry())
	client := fetch.NewClient(appCfg.UserAgent, appCfg.Timeout, appCfg.RequestInterval)
	parser := feed.NewParser()
	downloader := feed.NewDownloader(client, feed.NewResolver(appCfg.OutputDir), collector)

	targets := appCfg.Targets
	if len(targets) == 0 {
		targets = []string{appCfg.DBPath}
	}

	exitCode := 0
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}

		if isFeedURL(target) {
			processor := feed.NewProcessor(nil, downloader, collector)
			runner := tasks.NewRunner(nil, client, parser, processor, collector)
			runner.RunFeeds(ctx, []database.Feed{{URL: target, Flags: int(feed.AdHocFlags)}})
			continue
		}

		if err := runStore(ctx, target, appCfg.ImportFile, client, parser, downloader, collector); err != nil {
			slog.ErrorContext(ctx, "Store run failed", "db", target, "error", err)
			exitCode = 1
		}
	}

	if appCfg.MetricsFile != "" {
		if err := collector.WriteTextfile(appCfg.MetricsFile, time.Now()); err != nil {
			slog.ErrorContext(ctx, "Failed to write metrics", "error", err)
			exitCode = 1
		}
	}

	return exitCode
}

func runStore(ctx context.Context, dbPath, importFile string, client *fetch.Client, parser *feed.Parser, downloader *feed.Downloader, collector *metrics.Collector) error {
	ctx = logger.Ctx(ctx, slog.String("db", dbPath))

	db, err := database.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Database ready", "migration_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)

	if importFile != "" {
		task := tasks.NewImportFeedsTask(importFile, feedRepo)
		task.Start()
		if err := task.Execute(ctx); err != nil {
			return err
		}
	}

	processor := feed.NewProcessor(itemRepo, downloader, collector)
	runner := tasks.NewRunner(feedRepo, client, parser, processor, collector)

	_, err = runner.Run(ctx)
	return err
}

func isFeedURL(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
