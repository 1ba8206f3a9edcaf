package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hotel-system/internal/bills"
	"hotel-system/internal/config"
	"hotel-system/internal/events"
	"hotel-system/internal/foods"
	"hotel-system/internal/gifts"
	"hotel-system/internal/httpx"
	kafkax "hotel-system/internal/kafka"
	"hotel-system/internal/orders"
	"hotel-system/internal/postgres"
	"hotel-system/internal/redisx"
	"hotel-system/internal/reservation"
	"hotel-system/internal/rooms"
	"hotel-system/internal/uploads"
	"hotel-system/internal/vouchers"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	giftProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicGiftLifecycle, 1024)
	giftProd.Start(ctx)
	orderCreatedProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	orderCreatedProd.Start(ctx)
	orderStatusProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderStatusChanged, 1024)
	orderStatusProd.Start(ctx)

	// engines: one per reservable collection
	giftEngine := reservation.NewEngine(reservation.NewGiftStore(db))
	roomEngine := reservation.NewEngine(reservation.NewRoomStore(db))

	files := uploads.NewStore(cfg.UploadDir)
	router := httpx.NewRouter()
	httpx.ServeUploads(router, cfg.UploadDir)

	httpx.NewHealthHandler(db, rdb).Register(router)

	(&httpx.GiftsHandler{
		Repo:     &gifts.Repo{DB: db},
		Engine:   giftEngine,
		Files:    files,
		Producer: giftProd,
		Service:  cfg.ServiceName,
	}).Register(router)

	(&httpx.RoomsHandler{
		Repo:   &rooms.Repo{DB: db},
		Engine: roomEngine,
		Files:  files,
	}).Register(router)

	orderRepo := &orders.Repo{DB: db}
	(&httpx.OrdersHandler{
		Repo:            orderRepo,
		Engine:          giftEngine,
		Redis:           rdb,
		ProducerCreated: orderCreatedProd,
		ProducerStatus:  orderStatusProd,
		Service:         cfg.ServiceName,
	}).Register(router, "/orders")
	(&httpx.OrdersHandler{
		Repo:            orderRepo,
		Engine:          giftEngine,
		Redis:           rdb,
		ProducerCreated: orderCreatedProd,
		ProducerStatus:  orderStatusProd,
		Service:         cfg.ServiceName,
		Kind:            orders.KindGift,
	}).Register(router, "/gift-orders")

	(&httpx.VouchersHandler{Repo: &vouchers.Repo{DB: db}, Files: files}).Register(router)
	(&httpx.FoodsHandler{Repo: &foods.Repo{DB: db}, Files: files}).Register(router)
	(&httpx.BillsHandler{Repo: &bills.Repo{DB: db}}).Register(router)
	(&httpx.UploadsHandler{Files: files}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

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

	giftProd.Close()
	orderCreatedProd.Close()
	orderStatusProd.Close()
	cancel()
	giftProd.WaitClosed()
	orderCreatedProd.WaitClosed()
	orderStatusProd.WaitClosed()
}
