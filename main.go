package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/daccred/nearmints/classifier"
	"github.com/daccred/nearmints/config"
	"github.com/daccred/nearmints/controllers"
	"github.com/daccred/nearmints/db"
	"github.com/daccred/nearmints/handlers"
	"github.com/daccred/nearmints/server"
	"github.com/daccred/nearmints/source"
)

func main() {
	environment := flag.String("e", "development", "")
	flag.Usage = func() {
		fmt.Println("Usage: server -e {mode}")
		os.Exit(1)
	}
	flag.Parse()
	config.Init(*environment)

	settings, err := config.Decode(config.GetConfig())
	if err != nil {
		logrus.Fatal(err)
	}
	configureLogging(settings.Log)
	logger := logrus.WithField("service", "ingester")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, settings *config.Settings, logger *logrus.Entry) error {
	var dbConn *sql.DB
	if settings.Database.URL != "" {
		conn, err := db.ConnectWithOptions(settings.Database.URL, db.Options{MaxOpenConns: settings.Database.MaxOpenConns})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close()
		dbConn = conn
	} else {
		logger.Warn("database.url not set; caught NFTs will only be logged")
	}

	src, err := newBlockSource(ctx, settings, logger.WithField("component", "source"))
	if err != nil {
		return err
	}
	defer src.Close()

	processor, err := classifier.NewProcessor(classifier.Rules{
		MintbasePattern: settings.Marketplaces.MintbasePattern,
		ParasReceiver:   settings.Marketplaces.ParasReceiver,
	})
	if err != nil {
		return err
	}

	ing, err := handlers.NewIngester(&handlers.Config{
		Network:          settings.Ingester.Network,
		StartBlockHeight: settings.Ingester.StartBlockHeight,
		EndBlockHeight:   settings.Ingester.EndBlockHeight,
		PollInterval:     settings.Ingester.PollInterval,
		RetryInterval:    settings.Ingester.RetryInterval,
		StopOnEOF:        settings.Ingester.Source == "file",
		EnableStream:     settings.Ingester.EnableStream,
	}, dbConn, src, processor, logger)
	if err != nil {
		return fmt.Errorf("failed to create ingester: %w", err)
	}
	if err := ing.Start(ctx); err != nil {
		return fmt.Errorf("failed to start ingester: %w", err)
	}

	// Without a database only health, stats, metrics and the live stream are served.
	var ownerController *controllers.OwnerController
	if dbConn != nil {
		ownerController = controllers.NewOwnerController(dbConn)
	}
	router := server.NewRouter(
		controllers.NewIngesterController(dbConn, ing, ing.Hub()),
		ownerController,
		server.RouterOptions{
			AllowOrigins:  settings.Server.AllowOrigins,
			EnableMetrics: settings.Metrics.Enabled,
		},
	)
	srv := &server.Server{Port: settings.Server.Port, Logger: logger.WithField("component", "http")}
	return srv.Run(ctx, router)
}

func newBlockSource(ctx context.Context, settings *config.Settings, logger *logrus.Entry) (source.BlockSource, error) {
	switch settings.Ingester.Source {
	case "file":
		if settings.Ingester.FilePath == "" {
			return nil, fmt.Errorf("ingester.file_path is required for the file source")
		}
		return source.NewFileSource(settings.Ingester.FilePath)
	case "lake", "":
		return source.NewLakeSource(ctx, source.LakeConfig{
			Network: settings.Ingester.Network,
			Bucket:  settings.Lake.Bucket,
			Region:  settings.Lake.Region,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown block source %q", settings.Ingester.Source)
	}
}

func configureLogging(settings config.LogSettings) {
	if level, err := logrus.ParseLevel(settings.Level); err == nil {
		logrus.SetLevel(level)
	}
	if settings.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
