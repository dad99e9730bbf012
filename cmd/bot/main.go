package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elfshop/storebot/internal/chat"
	"github.com/elfshop/storebot/internal/config"
	"github.com/elfshop/storebot/internal/flow"
	"github.com/elfshop/storebot/internal/httpx"
	kafkax "github.com/elfshop/storebot/internal/kafka"
	"github.com/elfshop/storebot/internal/postgres"
	"github.com/elfshop/storebot/internal/redisx"
	"github.com/elfshop/storebot/internal/session"
	"github.com/elfshop/storebot/internal/shop"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.AdminIdentity == "" {
		log.Fatal("ADMIN_IDENTITY must be set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pSub := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderSubmitted, 1024)
	pSub.Start(ctx)
	pRev := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderReviewed, 1024)
	pRev.Start(ctx)

	// Sessions
	sessions := session.New(cfg.SessionIdleTTL)
	go sessions.Run(ctx)

	// Transport, moderation, router
	transport := chat.NewAPIClient(cfg.ChatAPIBase)
	mod := &flow.Moderation{
		Transport: transport,
		Customers: &shop.CustomerRepo{DB: db},
		Redis:     rdb,
		Producer:  pRev,
		Service:   cfg.ServiceName,
		Admin:     cfg.AdminIdentity,
		Log:       logger,
	}
	router := &flow.Router{
		Transport:  transport,
		Sessions:   sessions,
		Catalog:    &shop.CatalogRepo{DB: db},
		Customers:  &shop.CustomerRepo{DB: db},
		Orders:     &shop.OrderRepo{DB: db},
		Moderation: mod,
		Producer:   pSub,
		Service:    cfg.ServiceName,
		Admin:      cfg.AdminIdentity,
		Support:    cfg.SupportContact,
		Payment:    cfg.PaymentDetails,
		Log:        logger,
	}

	// HTTP webhook server
	mux := httpx.NewRouter()
	wh := &httpx.WebhookHandler{Dispatch: router.Dispatch}
	wh.Register(mux)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pSub.Close()
	pRev.Close()
	cancel()
	pSub.WaitClosed()
	pRev.WaitClosed()
}
