package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/approval"
	"github.com/gcmaps/gcm-server-go/internal/config"
	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/dispatch"
	"github.com/gcmaps/gcm-server-go/internal/handler"
	"github.com/gcmaps/gcm-server-go/internal/httpadmin"
	"github.com/gcmaps/gcm-server-go/internal/jobs"
	"github.com/gcmaps/gcm-server-go/internal/push"
	"github.com/gcmaps/gcm-server-go/internal/redis"
	"github.com/gcmaps/gcm-server-go/internal/repository"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
	"github.com/gcmaps/gcm-server-go/internal/transport"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	userRepo := repository.NewUserRepository(db.DB)
	cityRepo := repository.NewCityRepository(db.DB)
	versionRepo := repository.NewMapVersionRepository(db.DB)
	pricingRepo := repository.NewPricingRepository(db.DB)
	purchaseRepo := repository.NewPurchaseRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	supportRepo := repository.NewSupportRepository(db.DB)
	statsRepo := repository.NewStatsRepository(db.DB)

	registry := session.NewRegistry()

	broker := push.NewBroker(redisClient)
	defer broker.Close()

	engine, err := approval.NewEngine(
		db, notificationRepo, auditRepo, broker,
		approval.NewMapVersionKind(versionRepo, purchaseRepo),
		approval.NewPricingKind(pricingRepo, cityRepo),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build approval engine")
	}

	authService := service.NewAuthService(userRepo, registry)
	catalogService := service.NewCatalogService(cityRepo)
	mapEditService := service.NewMapEditService(versionRepo, purchaseRepo, statsRepo, auditRepo, db, engine)
	pricingService := service.NewPricingService(pricingRepo, cityRepo, auditRepo, db, engine)
	purchaseService := service.NewPurchaseService(purchaseRepo, cityRepo, statsRepo, service.MockCharger{})
	customerService := service.NewCustomerService(userRepo, purchaseRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	supportService := service.NewSupportService(supportRepo, auditRepo, db)
	reportService := service.NewReportService(statsRepo)

	dispatcher, err := dispatch.New(
		handler.NewAuthGroup(authService, registry),
		handler.NewSearchGroup(catalogService),
		handler.NewMapEditGroup(registry, mapEditService),
		handler.NewPricingGroup(registry, pricingService, catalogService),
		handler.NewPurchaseGroup(registry, purchaseService, mapEditService),
		handler.NewCustomerGroup(registry, customerService),
		handler.NewNotificationGroup(registry, notificationService),
		handler.NewSupportGroup(registry, supportService),
		handler.NewReportGroup(registry, reportService),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dispatch table")
	}

	server := transport.NewServer(dispatcher)
	server.OnBind = func(conn *transport.Conn, userID int64) {
		broker.Subscribe(userID, conn)
	}
	server.OnUnbind = func(conn *transport.Conn, userID int64) {
		broker.Unsubscribe(userID, conn)
	}
	server.OnDisconnect = func(conn *transport.Conn) {
		if userID := conn.UserID(); userID != 0 {
			broker.Unsubscribe(userID, conn)
		}
	}

	sweeper := jobs.NewExpirySweeper(
		purchaseRepo, notificationRepo, broker,
		cfg.SweepInterval(), cfg.ExpiryWarningDays,
	)
	sweeper.Start()
	defer sweeper.Stop()

	admin := httpadmin.New(db, redisClient, httpadmin.Counters{
		Connections: server.ConnCount,
		Sessions:    registry.ActiveCount,
		Subscribers: broker.SubscriberCount,
	})
	adminServer := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: admin.Router(),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr()).Msg("starting admin http server")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("admin http server error")
		}
	}()

	go func() {
		if err := server.ListenAndServe(cfg.Addr()); err != nil {
			log.Fatal().Err(err).Msg("transport server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("transport shutdown incomplete")
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("admin http shutdown incomplete")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
