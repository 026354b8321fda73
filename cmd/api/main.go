package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/auth"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/config"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/httpx"
	kafkax "github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/kafka"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/order"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/postgres"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/product"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/redisx"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/user"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	level := slog.LevelInfo
	if cfg.Development() {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per pedido topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, order.TopicOrderCreated, 1024, log)
	pCreated.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, order.TopicOrderStatusChanged, 1024, log)
	pStatus.Start(ctx)
	pDeleted := kafkax.NewProducer(cfg.KafkaBrokers, order.TopicOrderDeleted, 1024, log)
	pDeleted.Start(ctx)

	// Repos & services
	productRepo := &product.Repo{DB: db}
	userRepo := &user.Repo{DB: db}
	orderRepo := &order.Repo{DB: db}
	authSvc := auth.NewService(userRepo, cfg.JWTSecret)
	orderSvc := &order.Service{Orders: orderRepo, Products: productRepo, Users: userRepo}

	// Router & handlers
	router := httpx.NewRouter(cfg.CORSOrigins)
	requireAuth := httpx.RequireAuth{Auth: authSvc}.Handler

	(&httpx.AuthHandler{Auth: authSvc, Log: log}).Register(router)
	(&httpx.ProductHandler{Store: productRepo, Log: log}).Register(router, requireAuth)
	(&httpx.UserHandler{Store: userRepo, Auth: authSvc, Log: log}).Register(router, requireAuth)
	(&httpx.OrderHandler{
		Service:         orderSvc,
		ProducerCreated: pCreated,
		ProducerStatus:  pStatus,
		ProducerDeleted: pDeleted,
		Redis:           rdb,
		Name:            cfg.ServiceName,
		Log:             log,
	}).Register(router, requireAuth)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range []*kafkax.Producer{pCreated, pStatus, pDeleted} {
		p.Close()
	}
	cancel()
	for _, p := range []*kafkax.Producer{pCreated, pStatus, pDeleted} {
		p.WaitClosed()
	}
}
