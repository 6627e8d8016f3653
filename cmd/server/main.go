package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"pawmart-be/internal/cart"
	"pawmart-be/internal/config"
	"pawmart-be/internal/db"
	"pawmart-be/internal/delivery"
	"pawmart-be/internal/httpx"
	"pawmart-be/internal/logger"
	"pawmart-be/internal/notification"
	"pawmart-be/internal/order"
	"pawmart-be/internal/product"
	"pawmart-be/internal/review"
	"pawmart-be/internal/user"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	notificationRepo := notification.NewRepository(database)
	var sink notification.EventSink
	if cfg.AmqpURL != "" {
		publisher, err := notification.NewPublisher(cfg.AmqpURL)
		if err != nil {
			logger.L().Warn("notification broker unavailable, storing only", zap.Error(err))
		} else {
			defer publisher.Close()
			sink = publisher
		}
	}
	notifier := notification.NewService(notificationRepo, sink)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	orderRepo := order.NewRepository(database)

	deliveryRepo := delivery.NewRepository(database)
	deliverySvc := delivery.NewService(deliveryRepo, orderRepo, userRepo, notifier)

	orderSvc := order.NewService(orderRepo, deliverySvc, notifier)

	reviewRepo := review.NewRepository(database)

	router := httpx.NewRouter(httpx.Handlers{
		Auth:         httpx.NewAuthHandler(userSvc),
		Product:      httpx.NewProductHandler(productSvc),
		Cart:         httpx.NewCartHandler(cartSvc),
		Order:        httpx.NewOrderHandler(orderSvc, reviewRepo),
		Delivery:     httpx.NewDeliveryHandler(deliverySvc),
		Notification: httpx.NewNotificationHandler(notificationRepo),
	}, userRepo)

	log.Printf("🚀 API server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
