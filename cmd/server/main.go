package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tallerapp/notifier/internal/api"
	"github.com/tallerapp/notifier/internal/api/handler"
	"github.com/tallerapp/notifier/internal/channel"
	"github.com/tallerapp/notifier/internal/config"
	"github.com/tallerapp/notifier/internal/db"
	"github.com/tallerapp/notifier/internal/domain"
	"github.com/tallerapp/notifier/internal/event"
	"github.com/tallerapp/notifier/internal/logging"
	"github.com/tallerapp/notifier/internal/metrics"
	"github.com/tallerapp/notifier/internal/orchestrator"
	"github.com/tallerapp/notifier/internal/ratelimiter"
	"github.com/tallerapp/notifier/internal/render"
	"github.com/tallerapp/notifier/internal/repository"
	"github.com/tallerapp/notifier/internal/template"
	"github.com/tallerapp/notifier/internal/worker"
)

func main() {
	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		// logger depends on config; stderr is all we have here
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg)
	defer logger.Sync() //nolint:errcheck

	loc, err := time.LoadLocation(cfg.RenderTimezone)
	if err != nil {
		logger.Fatal("invalid RENDER_TIMEZONE", zap.String("tz", cfg.RenderTimezone), zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	templates, err := template.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	channels := []channel.Channel{
		channel.NewMail(cfg),
		channel.NewWhatsApp(cfg),
		channel.NewTelegram(cfg),
	}
	for _, ch := range channels {
		st := ch.Status()
		logger.Info("channel configured",
			zap.String("channel", string(ch.Name())),
			zap.Bool("enabled", st.Enabled),
			zap.Bool("ready", st.Ready),
			zap.String("detail", st.Detail))
	}

	limiter := ratelimiter.New(cfg.RateLimit,
		domain.ChannelMail, domain.ChannelWhatsApp, domain.ChannelTelegram)

	deliveryLog := repository.NewPgDeliveryLogRepository(pool)
	onOutcome, onRender := m.Hooks()

	orch := orchestrator.New(orchestrator.Params{
		Orders:          repository.NewPgOrderViewRepository(pool),
		DeliveryLog:     deliveryLog,
		Artifacts:       render.NewPDF(cfg.Company, loc),
		Templates:       templates,
		Channels:        channels,
		Limiter:         limiter,
		Company:         cfg.Company,
		Location:        loc,
		DeliveryTimeout: cfg.DeliveryTimeout,
		Logger:          logger,
		Hooks:           orchestrator.Hooks{OnOutcome: onOutcome, OnRender: onRender},
	})

	// ---- background workers ----
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	q := worker.NewQueue(cfg.DispatchQueue)
	dispatchPool := worker.NewPool(cfg.DispatchWorkers, q, orch, logger, func(depth int) {
		m.DispatchDepth.Set(float64(depth))
	})
	dispatchPool.Start(workerCtx)

	var consumer *event.Consumer
	if cfg.KafkaBroker != "" {
		consumer = event.NewConsumer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroupID, orch, logger)
		go consumer.Run(workerCtx)
	}

	// ---- HTTP server ----
	nh := handler.NewNotifyHandler(orch, q, deliveryLog, logger)
	router := api.NewRouter(nh, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal workers and the event consumer to stop.
	cancelWorkers()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka reader close error", zap.Error(err))
		}
	}

	// 3. Wait for in-flight jobs to finish their current delivery.
	dispatchPool.Wait()

	logger.Info("server stopped cleanly")
}
