package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/pricehawk/internal/config"
	httpAPI "github.com/iyhunko/pricehawk/internal/http"
	"github.com/iyhunko/pricehawk/internal/http/controller"
	"github.com/iyhunko/pricehawk/internal/logger"
	"github.com/iyhunko/pricehawk/internal/metrics"
	"github.com/iyhunko/pricehawk/internal/predictor"
	"github.com/iyhunko/pricehawk/internal/repository/sql"
	"github.com/iyhunko/pricehawk/internal/scraper"
	"github.com/iyhunko/pricehawk/internal/service"
	sqspkg "github.com/iyhunko/pricehawk/internal/sqs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	// Create repositories
	productRepository := sql.NewProductRepository(db)
	eventRepository := sql.NewEventRepository(db)
	transactionalRepository := sql.NewTransactionalRepository(db, conf.DefaultCurrency)

	checks := map[string]controller.HealthCheck{
		"database": db.PingContext,
	}

	// Scraper, optionally behind the Redis snapshot cache
	var scr scraper.Scraper = scraper.NewHTTPScraper(conf.Scraper.URL, conf.Scraper.Timeout)
	if conf.Redis.URL != "" {
		redisClient, err := scraper.NewRedisClient(ctx, conf.Redis.URL)
		handleErr("connecting to redis", err)
		defer redisClient.Close()

		scr = scraper.NewCachedScraper(scr, redisClient, conf.Redis.TTL)
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		slog.Info("scrape cache enabled", slog.Duration("ttl", conf.Redis.TTL))
	}

	var pred predictor.Predictor
	if conf.Predictor.URL != "" {
		pred = predictor.NewHTTPPredictor(conf.Predictor.URL, conf.Predictor.Timeout)
	} else {
		slog.Warn("PREDICTOR_URL is not set, analytics will carry no prediction")
	}

	trackerService := service.NewTrackerService(
		productRepository,
		transactionalRepository,
		scr,
		pred,
		service.Options{
			ScrapeTimeout:  conf.Scraper.Timeout,
			PredictTimeout: conf.Predictor.Timeout,
		},
	)

	// Outbox events are published only when a queue is configured
	var outboxWorker *service.OutboxWorker
	if conf.AWS.SQSQueueURL != "" {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
		handleErr("creating SQS client", err)

		sqsPublisher := sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)
		outboxWorker = service.NewOutboxWorker(eventRepository, sqsPublisher, conf.AWS.OutboxInterval)
		go outboxWorker.Start(ctx)
	} else {
		slog.Warn("SQS_QUEUE_URL is not set, price events stay in the outbox")
	}

	// Start HTTP server
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	ctr := controller.New(conf, checks)
	trackerCtr := controller.NewTrackerController(trackerService)
	router := httpAPI.InitRouter(conf, gin.New(), ctr, trackerCtr)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")

	if outboxWorker != nil {
		outboxWorker.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down HTTP server", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down metrics server", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
