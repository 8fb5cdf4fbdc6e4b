package main

import (
	"context"
	"log"
	"time"

	"shop-service/internal/config"
	"shop-service/internal/controllers/http"
	mmysql "shop-service/internal/infra/mysql"
	"shop-service/internal/infra/rabbitmq"
	mysqlrepo "shop-service/internal/repository/mysql"
	"shop-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg := config.Load()

	db, err := mmysql.NewMySQL(cfg)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	repos := mysqlrepo.NewRepositories(db)
	txManager := mysqlrepo.NewTxManager(db)

	publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	catalogService := services.NewCatalogService(repos.Products)
	cartService := services.NewCartService(repos.Carts, catalogService, repos.Colors, repos.Users)
	voucherService := services.NewVoucherService(repos.Vouchers)
	voucherService.SetRedisClient(redisClient)
	orderService := services.NewOrderService(txManager, repos, cartService, publisher, cfg.FastDeliveryFee)

	go func() {
		time.Sleep(5 * time.Second)
		if err := voucherService.WarmupCache(context.Background(), time.Now()); err != nil {
			log.Printf("failed to warm up voucher cache: %v", err)
		}
	}()

	handler := http.NewHandler(catalogService, cartService, orderService, voucherService, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	log.Printf("starting shop service on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
