package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/elfshop/storebot/internal/auditor"
	"github.com/elfshop/storebot/internal/config"
	kafkax "github.com/elfshop/storebot/internal/kafka"
	"github.com/elfshop/storebot/internal/postgres"
	"github.com/elfshop/storebot/internal/redisx"
	"github.com/elfshop/storebot/internal/shop"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &auditor.Service{
		Orders:      &shop.OrderRepo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-auditor",
		Log:         logger,
	}

	group := getenv("AUDITOR_GROUP", "order-auditor")
	workers := mustAtoi(os.Getenv("AUDITOR_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, shop.TopicOrderReviewed, workers)

	go func() {
		log.Printf("auditor consumer started: group=%s topic=%s workers=%d", group, shop.TopicOrderReviewed, workers)
		if err := cons.Start(ctx, svc.HandleReviewResolved); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

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
