package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-lesson-shop.git/internal/cache"
	"github.com/ariefcatur/go-lesson-shop.git/internal/config"
	kafkax "github.com/ariefcatur/go-lesson-shop.git/internal/kafka"
	"github.com/ariefcatur/go-lesson-shop.git/internal/orders"
	"github.com/ariefcatur/go-lesson-shop.git/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func mustAtoi(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

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

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &cache.Service{
		Redis:       rdb,
		Log:         log,
		ServiceName: cfg.ServiceName + "-cache",
	}

	group := getenv("CACHE_GROUP", "lesson-cache")
	workers := mustAtoi(os.Getenv("CACHE_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicLessonBooked, workers, log)

	go func() {
		log.Info("cache consumer started",
			zap.String("group", group),
			zap.String("topic", orders.TopicLessonBooked),
			zap.Int("workers", workers))
		if err := cons.Start(ctx, svc.HandleLessonBooked); err != nil {
			log.Warn("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
