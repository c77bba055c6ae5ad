package main

import (
	"log"
	"os"
	"time"

	"roomservice/internal/controllers/http"
	"roomservice/internal/infra"
	mmysql "roomservice/internal/infra/mysql"
	"roomservice/internal/infra/rabbitmq"
	"roomservice/internal/infra/xendit"
	mysqlrepo "roomservice/internal/repository/mysql"
	"roomservice/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	repo := mysqlrepo.NewOrderRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         os.Getenv("REDIS_HOST") + ":6379",
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	notifier := infra.NewRoomNotifier(redisClient)

	invoiceClient := xendit.NewClient(os.Getenv("XENDIT_API_URL"), os.Getenv("XENDIT_SECRET_KEY"), 10*time.Second)

	var publisher rabbitmq.PublisherInterface
	if amqpURL := os.Getenv("RABBITMQ_URL"); amqpURL != "" {
		pub, err := rabbitmq.NewPublisher(amqpURL, "order.exchange")
		if err != nil {
			log.Fatalf("failed to init publisher: %v", err)
		}
		defer pub.Close()
		publisher = pub
	}

	orderService := services.NewOrderService(repo, publisher, notifier)
	orderService.SetInvoiceClient(invoiceClient)

	webhookToken := os.Getenv("XENDIT_WEBHOOK_TOKEN")
	if webhookToken == "" {
		log.Printf("WARNING: XENDIT_WEBHOOK_TOKEN not set, all payment callbacks will be rejected")
	}
	paymentService := services.NewPaymentService(repo, invoiceClient, notifier, webhookToken)
	paymentService.SetRedisClient(redisClient)

	handler := http.NewHandler(orderService, paymentService)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting room service on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
