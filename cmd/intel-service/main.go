package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/config"
	delivery "golang-market-intel/internal/intel/delivery/http"
	_ "golang-market-intel/internal/intel/docs"
	"golang-market-intel/internal/intel/engine"
	"golang-market-intel/internal/intel/market"
	"golang-market-intel/internal/intel/metrics"
	"golang-market-intel/internal/intel/ner"
	"golang-market-intel/internal/intel/pipeline"
	"golang-market-intel/internal/intel/repository"
	"golang-market-intel/internal/intel/sentiment"
	"golang-market-intel/internal/intel/service"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/postgres"
	"golang-market-intel/pkg/redis"
	"golang-market-intel/pkg/telegram"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

type app struct {
	cfg           *config.Config
	logger        *logger.Logger
	db            *postgres.DB
	redisClient   *redis.Client
	runRepo       repository.PipelineRunRepository
	recRepo       repository.RecommendationRepository
	intelService  service.IntelService
	reportService service.ReportService
	cleanup       func()
}

// initApp wires the full dependency graph shared by the serve and run
// commands.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Pipeline.AutoMigrate {
		if err := db.DB.AutoMigrate(
			&entity.Symbol{},
			&entity.Article{},
			&entity.EntityMention{},
			&entity.PipelineRun{},
			&entity.RunDiagnostic{},
			&entity.Recommendation{},
		); err != nil {
			return nil, fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	symbolRepo := repository.NewSymbolRepository(db.DB)
	articleRepo := repository.NewArticleRepository(db.DB)
	runRepo := repository.NewPipelineRunRepository(db.DB)
	recRepo := repository.NewRecommendationRepository(db.DB)
	newsRepo := repository.NewNewsFeedRepository(cfg, appLogger)
	marketRepo := repository.NewYahooFinanceRepository(cfg, appLogger, redisClient)

	var model sentiment.Model
	switch cfg.Sentiment.Provider {
	case "gemini":
		model, err = sentiment.NewGeminiModel(ctx, cfg.Sentiment.Gemini, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini sentiment model: %w", err)
		}
	default:
		model = sentiment.NewLexiconModel(cfg.Sentiment.DampUncertainty)
	}

	coordinator := pipeline.NewCoordinator(
		marketRepo,
		market.NewScorer(),
		engine.New(cfg.Engine),
		appLogger,
		cfg.Pipeline,
	)

	intelSvc := service.NewIntelService(
		cfg,
		appLogger,
		newsRepo,
		symbolRepo,
		articleRepo,
		runRepo,
		recRepo,
		coordinator,
		ner.NewPatternExtractor(),
		model,
		sentiment.NewAggregator(cfg.Sentiment.SaturationSamples),
	)

	var notifier telegram.Notifier
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
		}
	}
	reportSvc := service.NewReportService(cfg, appLogger, runRepo, recRepo, notifier, redisClient)

	cleanup := func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = redisClient.Close()
		_ = appLogger.Sync()
	}

	return &app{
		cfg:           cfg,
		logger:        appLogger,
		db:            db,
		redisClient:   redisClient,
		runRepo:       runRepo,
		recRepo:       recRepo,
		intelService:  intelSvc,
		reportService: reportSvc,
		cleanup:       cleanup,
	}, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the intel service with the scheduler and HTTP API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := initApp(ctx)
	if err != nil {
		log.Fatalf("Failed to start intel service: %v", err)
	}
	defer application.cleanup()

	appLogger := application.logger
	appLogger.Info("Starting Intel Service", logger.Field("name", application.cfg.App.Name))

	metrics.Init()

	// Scheduled pipeline runs
	scheduler := cron.New()
	_, err = scheduler.AddFunc(application.cfg.Pipeline.Schedule, func() {
		service.RunAndReport(ctx, appLogger, application.intelService, application.reportService, entity.RunTriggerCron)
	})
	if err != nil {
		appLogger.Fatal("Invalid pipeline schedule", logger.ErrorField(err),
			logger.StringField("schedule", application.cfg.Pipeline.Schedule))
	}
	scheduler.Start()
	defer scheduler.Stop()
	appLogger.Info("Pipeline scheduled", logger.StringField("cron", application.cfg.Pipeline.Schedule))

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	recHandler := delivery.NewRecommendationHandler(application.recRepo, application.runRepo, appLogger)
	runHandler := delivery.NewRunHandler(application.runRepo, application.recRepo, application.intelService, application.reportService, appLogger)

	apiV1 := e.Group("/api/v1")
	recsGroup := apiV1.Group("/recommendations")
	recHandler.RegisterRoutes(recsGroup)
	runsGroup := apiV1.Group("/runs")
	runHandler.RegisterRoutes(runsGroup)
	sectorsGroup := apiV1.Group("/sectors")
	runHandler.RegisterSectorRoutes(sectorsGroup)

	e.GET("/swagger/*", swagger.WrapHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	go func() {
		addr := fmt.Sprintf(":%d", application.cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Executes one pipeline run and exits",
	Run:   runOnce,
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := initApp(ctx)
	if err != nil {
		log.Fatalf("Failed to start intel service: %v", err)
	}

	metrics.Init()

	exitCode := 0
	run, err := application.intelService.Run(ctx, entity.RunTriggerManual)
	if err != nil {
		application.reportService.SendRunFailure(ctx, run)
		application.logger.Error("Pipeline run failed", logger.ErrorField(err))
		exitCode = 1
	} else {
		if err := application.reportService.SendRunReport(ctx, run.ID); err != nil {
			application.logger.Error("Failed to deliver run report", logger.ErrorField(err))
		}
		application.logger.Info("Pipeline run finished", logger.StringField("run_id", run.ID))
	}

	application.cleanup()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// @title Market Intel API
// @version 1.0
// @description Financial news signal-fusion and recommendation service.
// @BasePath /api/v1
func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{Use: "intel-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	runCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing intel-service CLI: %s\n", err)
		os.Exit(1)
	}
}
