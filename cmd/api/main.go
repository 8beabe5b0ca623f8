package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/omise/omise-go"
	"github.com/redis/go-redis/v9"

	"tripcart/internal/cache"
	"tripcart/internal/config"
	"tripcart/internal/database"
	"tripcart/internal/gateway/headout"
	"tripcart/internal/gateway/payment"
	"tripcart/internal/middleware"
	"tripcart/internal/modules/cart"
	"tripcart/internal/modules/order"
	"tripcart/internal/modules/promo"
	"tripcart/internal/notify"
	"tripcart/internal/pkg/clock"
	"tripcart/internal/pkg/metrics"
	"tripcart/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	guestTTL, err := cfg.GuestCartTTL()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	// postgres schemas are migrated externally; sqlite is for local runs
	if !strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal(err)
		}
	}

	clk := clock.NewSystem()
	checkoutMetrics := metrics.NewCheckoutMetrics()

	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	promoRepo := repository.NewPromoRepository(db)

	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		cartCache = cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	var mailer *notify.TicketMailer
	if cfg.AMQPURL != "" {
		pub, err := notify.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal(err)
		}
		defer pub.Close()
		mailer = notify.NewTicketMailer(pub)
	}

	headoutClient := headout.NewClient(headout.Config{
		BaseURL: cfg.HeadoutBaseURL,
		APIKey:  cfg.HeadoutAPIKey,
		Timeout: cfg.HeadoutTimeout,
	})

	omiseClient, err := omise.NewClient(cfg.OmisePublicKey, cfg.OmiseSecretKey)
	if err != nil {
		log.Fatal(err)
	}
	charger := payment.NewAdapter(omiseClient, cfg.Currency)

	cartService := cart.NewService(cartRepo, cartCache, clk, guestTTL, log.Printf)
	promoService := promo.NewService(promoRepo, clk)
	orderService := order.NewService(
		orderRepo,
		paymentRepo,
		cartService,
		promoService,
		headoutClient,
		charger,
		mailer,
		checkoutMetrics,
		log.Printf,
	)

	cartHandler := cart.NewHandler(cartService)
	orderHandler := order.NewHandler(orderService)

	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity(cfg.JWTSecret))
	{
		cartHandler.RegisterRoutes(v1)
		orderHandler.RegisterRoutes(v1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go cart.NewSweeper(cartService, 24*time.Hour, log.Printf).Run(ctx)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
