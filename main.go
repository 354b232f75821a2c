package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"scamshield/internal/cache"
	"scamshield/internal/classifier"
	"scamshield/internal/config"
	"scamshield/internal/crowd"
	"scamshield/internal/engine"
	"scamshield/internal/entitylist"
	"scamshield/internal/fingerprint"
	"scamshield/internal/handler"
	"scamshield/internal/metrics"
	"scamshield/internal/mlclient"
	"scamshield/internal/promoter"
	"scamshield/internal/repository"
	"scamshield/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	metrics.MustRegister()

	// Entity lists back both the rule classifier and the promotion job
	lists, err := entitylist.NewStore(cfg.EntityLists.WhitelistPath, cfg.EntityLists.BlacklistPath, logger)
	if err != nil {
		logger.Fatal("Failed to load entity lists", zap.Error(err))
	}

	// Initialize repositories
	detectionRepo := repository.NewDetectionRepository(db, logger)
	trainingRepo := repository.NewTrainingRepository(db, logger)

	// Tier-1 verdict cache
	verdictCache := cache.New(
		cfg.Cache.Addr,
		cfg.Cache.Password,
		cfg.Cache.DB,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		logger,
	)

	// Secondary classifier client (optional - escalation is disabled without it)
	var mlClient *mlclient.Client
	var secondary classifier.SecondaryClassifier
	if cfg.MLService.Enabled {
		mlClient = mlclient.NewClient(cfg.MLService.URL)
		secondary = mlClient
		logger.Info("Secondary classifier enabled", zap.String("url", cfg.MLService.URL))
	}
	cascade := classifier.NewCoordinator(secondary, time.Duration(cfg.MLService.TimeoutSeconds)*time.Second, logger)

	crowdSignal := crowd.NewAggregator(detectionRepo, 2, logger)

	// Async record writer keeps persistence off the decision path
	writer := engine.NewRecordWriter(detectionRepo, trainingRepo, cfg.Engine.WriterBuffer, logger)

	eng := engine.New(
		fingerprint.NewService(cfg.Engine.MaxTextLength),
		lists,
		classifier.NewRuleClassifier(),
		cascade,
		verdictCache,
		detectionRepo,
		crowdSignal,
		writer,
		cfg.Engine.ScamThreshold,
		time.Duration(cfg.Engine.DedupWindowHours)*time.Hour,
		cfg.Engine.CollectTrainingData,
		cfg.Engine.ModelVersion,
		logger,
	)

	feedback := engine.NewFeedbackProcessor(detectionRepo, trainingRepo, logger)

	promotion := promoter.NewPromoter(
		detectionRepo,
		trainingRepo,
		lists,
		time.Duration(cfg.Promotion.LookbackDays)*24*time.Hour,
		cfg.Promotion.ReportThreshold,
		logger,
	)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the record writer in a goroutine
	go writer.Run(ctx)

	// Run the promotion job in a goroutine (if enabled)
	if cfg.Promotion.Enabled {
		go promotion.Run(ctx, time.Duration(cfg.Promotion.IntervalHours)*time.Hour)
	}

	// Initialize and run the server
	detectionHandler := handler.NewDetectionHandler(eng, feedback, detectionRepo, logger)
	adminHandler := handler.NewAdminHandler(promotion, lists, trainingRepo, db, verdictCache, mlClient, logger)
	srv := server.NewServer(detectionHandler, adminHandler, logger)
	srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}
