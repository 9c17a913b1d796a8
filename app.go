package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"brilliora/cache"
	"brilliora/config"
	"brilliora/controllers"
	"brilliora/gateway"
	"brilliora/metrics"
	"brilliora/repository"
	"brilliora/routes"
	"brilliora/services"
	"brilliora/utils"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// stores bundles the repositories behind the API
type stores struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	close    func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, inMemory bool, logger *slog.Logger) (*stores, error) {
	if inMemory {
		logger.Warn("using in-memory stores, data is lost on exit")
		return &stores{
			orders:   repository.NewMemoryOrderRepository(),
			products: repository.NewMemoryProductRepository(),
			users:    repository.NewMemoryUserRepository(),
			close:    func(context.Context) error { return nil },
		}, nil
	}

	db, err := utils.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	orders := repository.NewOrderRepository(db)
	products := repository.NewProductRepository(db)
	users := repository.NewUserRepository(db)
	if err := repository.EnsureIndexes(ctx, orders, products, users); err != nil {
		db.Client().Disconnect(ctx)
		return nil, err
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDB)

	return &stores{
		orders:   orders,
		products: products,
		users:    users,
		close:    func(ctx context.Context) error { return db.Client().Disconnect(ctx) },
	}, nil
}

// openCache returns nil when Redis is not configured or unreachable
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.ProductCache, func() error) {
	noop := func() error { return nil }
	if cfg.RedisAddr == "" {
		return nil, noop
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", "addr", cfg.RedisAddr, "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("catalog cache enabled", "addr", cfg.RedisAddr)
	return cache.NewRedisProductCache(client), client.Close
}

// newHandler assembles controllers, routes and the outer middleware stack
func newHandler(cfg *config.Config, st *stores, productCache cache.ProductCache, creds config.CredentialSource, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	mailer := utils.NewMailer(utils.MailerConfig{
		PostmarkToken: cfg.PostmarkToken,
		SendGridKey:   cfg.SendGridKey,
		Sender:        cfg.EmailSender,
	}, logger)

	gw := gateway.New(creds, gateway.Options{
		BaseURL:    cfg.GatewayBaseURL,
		Timeout:    cfg.GatewayTimeout,
		MaxRetries: cfg.GatewayMaxRetries,
		Logger:     logger.With("component", "gateway"),
	})
	checkout := services.NewCheckoutService(gw, st.orders, services.CheckoutOptions{
		StoreTimeout: cfg.StoreTimeout,
		Logger:       logger.With("component", "checkout"),
	})

	userController := controllers.NewUserController(st.users, tokens, cfg.StoreTimeout)
	productController := controllers.NewProductController(st.products, productCache, cfg.StoreTimeout)
	orderController := controllers.NewOrderController(st.orders, mailer, cfg.StoreTimeout)
	paymentController := controllers.NewPaymentController(checkout, mailer)

	router := routes.NewRouter(logger)
	routes.RegisterRoutes(router, tokens, userController, productController, orderController, paymentController)
	routes.RegisterMetrics(router, reg)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.ClientOrigin}),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)
	return otelhttp.NewHandler(recovery(cors(router)), "brilliora-api")
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(reg)
	return reg
}

func loadConfig(envFile string) (*config.Config, *slog.Logger, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := utils.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	if !cfg.DotEnvLoaded {
		logger.Info("no .env file found, using process environment")
	}
	return cfg, logger, nil
}
