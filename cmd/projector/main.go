package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/config"
	kafkax "github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/kafka"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/order"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/projector"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/redisx"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &projector.Service{
		Redis: rdb,
		Name:  cfg.ServiceName + "-projector",
		Log:   log,
	}

	group := getenv("PROJECTOR_GROUP", "pedido-projector")
	workers := mustAtoi(os.Getenv("PROJECTOR_WORKERS"), "4")

	topics := []string{
		order.TopicOrderCreated,
		order.TopicOrderStatusChanged,
		order.TopicOrderDeleted,
	}

	var wg sync.WaitGroup
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, log)
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			log.Info("projector consumer started", "group", group, "topic", topic, "workers", workers)
			if err := cons.Start(ctx, svc.HandleEvent); err != nil {
				log.Error("consumer exit", "topic", topic, "err", err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("shutting down projector")
	case <-ctx.Done():
	}
	cancel()
	wg.Wait()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
