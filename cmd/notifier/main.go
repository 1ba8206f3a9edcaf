package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hotel-system/internal/config"
	"hotel-system/internal/events"
	kafkax "hotel-system/internal/kafka"
	"hotel-system/internal/notifier"
	"hotel-system/internal/redisx"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{Store: &notifier.RedisStore{C: rdb}}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers, err := strconv.Atoi(getenv("NOTIFIER_WORKERS", "4"))
	if err != nil || workers <= 0 {
		workers = 4
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicOrderStatusChanged, workers)

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d",
			group, events.TopicOrderStatusChanged, workers)
		if err := cons.Start(ctx, svc.HandleOrderStatusChanged); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
