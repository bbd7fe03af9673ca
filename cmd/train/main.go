package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/musicmatch/internal/app"
	"github.com/timmy/musicmatch/internal/config"
	"github.com/timmy/musicmatch/internal/logger"
	"github.com/timmy/musicmatch/internal/service"
)

func main() {
	envCfg := logger.LoadFromEnv()
	envCfg.ServiceName = "musicmatch-train"
	appLogger := logger.NewFromEnv(envCfg)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	sourceType := flag.String("source", "staging", "Descriptor source: staging or analyzer")
	name := flag.String("name", "", "Staging directory or analyzer catalog")
	limit := flag.Int("limit", 0, "Maximum number of songs to ingest (0 = all)")
	k := flag.Int("k", 0, "Cluster count (0 = configured default)")
	autoK := flag.Bool("auto-k", false, "Choose k by silhouette score")
	skipIngest := flag.Bool("skip-ingest", false, "Train on the stored catalog without ingesting")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		appLogger.Info("Received shutdown signal, cancelling...")
		cancel()
	}()

	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize application")
	}
	defer a.Close()

	if !*skipIngest {
		src, err := a.Source(*sourceType, *name)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create source")
		}
		appLogger.WithFields(logger.Fields{
			logger.FieldSource: src.GetSourceID(),
			"limit":            *limit,
		}).Info("Starting ingestion")

		stats, err := a.Training.Ingest(ctx, src, *limit)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to ingest from source")
		}
		appLogger.WithFields(logger.Fields{
			"fetched":  stats.Fetched,
			"upserted": stats.Upserted,
			"warnings": stats.Warnings,
		}).Info("Ingestion completed")
	}

	opts := service.TrainOptions{K: *k}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "auto-k" {
			opts.AutoK = autoK
		}
	})

	job, err := a.Training.Train(ctx, opts)
	if err != nil {
		appLogger.WithError(err).Fatal("Training failed")
	}
	appLogger.WithFields(logger.Fields{
		logger.FieldTrainID:  job.ID,
		logger.FieldSnapshot: job.Snapshot,
		"k":                  job.K,
		"songs":              job.SongCount,
		"iterations":         job.Iterations,
		"silhouette":         job.Silhouette,
	}).Info("Training completed")
}
