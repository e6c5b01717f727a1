package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-lesson-shop.git/internal/catalog"
	"github.com/ariefcatur/go-lesson-shop.git/internal/config"
	"github.com/ariefcatur/go-lesson-shop.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-lesson-shop.git/internal/kafka"
	"github.com/ariefcatur/go-lesson-shop.git/internal/orders"
	"github.com/ariefcatur/go-lesson-shop.git/internal/postgres"
	"github.com/ariefcatur/go-lesson-shop.git/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatal("schema", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for booking events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicLessonBooked, 1024)
	prod.Start(ctx)

	// Stores, engine, handlers
	engine := orders.NewService(orders.NewRepo(db))
	router := httpx.NewRouter(log)

	gate := httpx.AdminGate{Username: cfg.AdminUsername, Password: cfg.AdminPassword, Key: cfg.AdminKey}
	gate.Register(router)

	lh := &httpx.LessonsHandler{Store: catalog.NewRepo(db), Redis: rdb, Log: log, Gate: gate}
	lh.Register(router)

	oh := &httpx.OrdersHandler{Engine: engine, Publisher: prod, Redis: rdb, Log: log, Service: cfg.ServiceName}
	oh.Register(router)

	httpx.ServeImages(router, cfg.ImageDir)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
