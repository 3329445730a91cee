package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urikhaimov/storefront/internal/cart"
	"github.com/urikhaimov/storefront/internal/catalog"
	"github.com/urikhaimov/storefront/internal/checkout"
	"github.com/urikhaimov/storefront/internal/httpapi"
	"github.com/urikhaimov/storefront/internal/order"
)

func main() {
	// Configuration
	httpAddr := getEnv("HTTP_ADDR", ":8080")
	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017")
	mongoDBName := getEnv("MONGO_DB_NAME", "storefront")
	stripeKey := getEnv("STRIPE_SECRET_KEY", "")
	kafkaBrokers := getEnv("KAFKA_BROKERS", "")
	kafkaTopic := getEnv("KAFKA_TOPIC", "order-events")
	taxRate := getEnvFloat("TAX_RATE", 0.17)
	shippingFee := getEnvFloat("SHIPPING_FEE", 5.99)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up MongoDB for order persistence
	mongoDB, err := order.ConnectMongoDB(ctx, mongoURI, mongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Client().Disconnect(context.Background())

	orderRepo := order.NewMongoRepository(mongoDB)
	if err := orderRepo.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create order indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", mongoURI)

	// Cart session storage: Redis when configured, in-process otherwise
	var storage cart.SessionStorage
	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Connected to Redis at %s", redisAddr)
		storage = cart.NewRedisStorage(redisClient, cart.DefaultTTL)
	} else {
		log.Println("REDIS_ADDR not set, using in-process cart storage")
		storage = cart.NewMemoryStorage()
	}

	carts := cart.NewManager(storage, cart.DefaultTTL)
	carts.StartSweeper(ctx, cart.SweepInterval)

	// Optional order event stream
	var events order.Publisher
	if kafkaBrokers != "" {
		publisher := order.NewKafkaPublisher(kafkaTopic, strings.Split(kafkaBrokers, ",")...)
		defer publisher.Close()
		events = publisher
		log.Printf("Publishing order events to %s on %s", kafkaTopic, kafkaBrokers)
	}

	orderService := order.NewService(orderRepo, events)

	bridge := checkout.NewBridge(checkout.NewStripeProvider(stripeKey))
	checkoutService := checkout.NewService(bridge, orderService)

	// Demo catalog; a real deployment fronts the product database here.
	products := catalog.NewStaticProvider(
		catalog.Snapshot{ProductID: "mug-classic", Name: "Classic Mug", UnitPrice: 12.50, AvailableStock: 120},
		catalog.Snapshot{ProductID: "tee-logo", Name: "Logo Tee", UnitPrice: 24.00, AvailableStock: 45},
		catalog.Snapshot{ProductID: "poster-a2", Name: "A2 Poster", UnitPrice: 9.99, AvailableStock: 300},
	)

	router := httpapi.NewRouter(carts, products, checkoutService, orderService, checkout.Pricing{
		TaxRate:     taxRate,
		ShippingFee: shippingFee,
	})

	server := &http.Server{
		Addr:         httpAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on %s", httpAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	log.Println("Storefront stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return value
}
