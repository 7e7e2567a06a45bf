package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/clausewatch/clausewatch/internal/ai"
	"github.com/clausewatch/clausewatch/internal/config"
	"github.com/clausewatch/clausewatch/internal/db"
	"github.com/clausewatch/clausewatch/internal/drift"
	"github.com/clausewatch/clausewatch/internal/fetch"
	"github.com/clausewatch/clausewatch/internal/filestore"
	"github.com/clausewatch/clausewatch/internal/fingerprint"
	"github.com/clausewatch/clausewatch/internal/handler"
	"github.com/clausewatch/clausewatch/internal/job"
	"github.com/clausewatch/clausewatch/internal/middleware"
	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pipeline"
	"github.com/clausewatch/clausewatch/internal/repo"
	"github.com/clausewatch/clausewatch/internal/risk"
	"github.com/clausewatch/clausewatch/internal/schedule"
	"github.com/clausewatch/clausewatch/internal/segment"
	"github.com/clausewatch/clausewatch/internal/service"
	"github.com/clausewatch/clausewatch/internal/textnorm"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "clausewatch",
		Short: "clausewatch contract drift server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run clausewatch server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	contractRepo := repo.NewContractRepo(database)
	versionRepo := repo.NewVersionRepo(database)
	clauseRepo := repo.NewClauseRepo(database)
	fingerprintRepo := repo.NewFingerprintRepo(database)
	changeRepo := repo.NewChangeRepo(database)
	alertRepo := repo.NewAlertRepo(database)
	analyticsRepo := repo.NewAnalyticsRepo(database)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	fetcher := fetch.NewHTTPFetcher(fetch.WithMaxBytes(cfg.Pipeline.MaxDocumentBytes))
	normalizer := textnorm.New(
		textnorm.WithFetcher(fetcher),
		textnorm.WithMaxBytes(cfg.Pipeline.MaxDocumentBytes),
	)
	segmenter := segment.New(segment.WithMinClauseWords(cfg.Pipeline.MinClauseWords))
	engine := fingerprint.NewEngine(
		fingerprint.WithSignalWeights(cfg.Pipeline.KeywordWeight, cfg.Pipeline.SimHashWeight),
	)
	cache := fingerprint.NewCache(engine, cfg.Pipeline.CacheSize, time.Duration(cfg.Pipeline.CacheTTLMinutes)*time.Minute)
	detector := drift.NewDetector(engine, drift.WithThresholds(cfg.Pipeline.MatchThreshold, cfg.Pipeline.ModifiedThreshold))

	riskOpts := []risk.Option{}
	if cfg.AI.Provider != "" {
		explainer, err := ai.NewExplainer(cfg.AI.Provider, cfg.AI.Model, cfg.AI.Data)
		if err != nil {
			return fmt.Errorf("init explainer: %w", err)
		}
		riskOpts = append(riskOpts, risk.WithExplainer(explainer, time.Duration(cfg.AI.TimeoutSeconds)*time.Second))
	}
	classifier := risk.NewClassifier(riskOpts...)

	processor := pipeline.NewProcessor(pipeline.Stores{
		Contracts:    contractRepo,
		Versions:     versionRepo,
		Clauses:      clauseRepo,
		Fingerprints: fingerprintRepo,
		Changes:      changeRepo,
		Alerts:       alertRepo,
	}, segmenter, cache, detector, classifier,
		pipeline.WithWorkerLimit(cfg.Pipeline.WorkerLimit),
		pipeline.WithAlertThreshold(model.RiskLevel(cfg.Pipeline.AlertThreshold)),
	)

	contractService := service.NewContractService(contractRepo, versionRepo, clauseRepo, normalizer, processor, store)
	changeService := service.NewChangeService(changeRepo, clauseRepo)
	alertService := service.NewAlertService(alertRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo)

	deps := handler.RouterDeps{
		Contracts:    handler.NewContractHandler(contractService),
		Versions:     handler.NewVersionHandler(contractService),
		Changes:      handler.NewChangeHandler(changeService),
		Alerts:       handler.NewAlertHandler(alertService),
		Analytics:    handler.NewAnalyticsHandler(analyticsService),
		UploadWindow: time.Duration(cfg.Pipeline.UploadRateSeconds) * time.Second,
	}

	engineAPI, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Watch.Enabled {
		watchJob := job.NewWatchJob(contractRepo, contractService)
		if err := scheduler.AddJob(watchJob, cfg.Watch.Schedule); err != nil {
			return fmt.Errorf("schedule watch job: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engineAPI.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
