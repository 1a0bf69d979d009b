package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/wyfcoding/stocktrading/internal/ledger/application"
	ledgermysql "github.com/wyfcoding/stocktrading/internal/ledger/infrastructure/persistence/mysql"
	ledgerhttp "github.com/wyfcoding/stocktrading/internal/ledger/interfaces/http"
	mddomain "github.com/wyfcoding/stocktrading/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrading/internal/marketdata/infrastructure/mock"
	mdredis "github.com/wyfcoding/stocktrading/internal/marketdata/infrastructure/redis"
	mdhttp "github.com/wyfcoding/stocktrading/internal/marketdata/interfaces/http"
	tradingapp "github.com/wyfcoding/stocktrading/internal/trading/application"
	tradingmysql "github.com/wyfcoding/stocktrading/internal/trading/infrastructure/persistence/mysql"
	tradinghttp "github.com/wyfcoding/stocktrading/internal/trading/interfaces/http"
	"github.com/wyfcoding/stocktrading/pkg/cache"
	"github.com/wyfcoding/stocktrading/pkg/config"
	"github.com/wyfcoding/stocktrading/pkg/db"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
	"github.com/wyfcoding/stocktrading/pkg/middleware"
	"github.com/wyfcoding/stocktrading/pkg/mq"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	if err := logger.Init(cfg.Logger); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	ctx := context.Background()

	database, err := db.Init(db.Config{
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "connect database failed", "error", err)
	}
	defer database.Close()

	if err := ledgermysql.AutoMigrate(database.DB); err != nil {
		logger.Fatal(ctx, "migrate ledger tables failed", "error", err)
	}
	if err := tradingmysql.AutoMigrate(database.DB); err != nil {
		logger.Fatal(ctx, "migrate trading tables failed", "error", err)
	}

	var producer *mq.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = mq.NewProducer(mq.Config{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "create kafka producer failed", "error", err)
		}
		defer producer.Close()
	}

	seed := cfg.Quotes.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var quotes mddomain.QuoteSource = mock.NewSource(cfg.Quotes.Symbols, seed)

	if cfg.Redis.Enabled {
		redisCache, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "connect redis failed", "error", err)
		}
		defer redisCache.Close()
		quotes = mdredis.NewCachingSource(quotes, redisCache, time.Duration(cfg.Redis.QuoteTTL)*time.Second)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "register metrics failed", "error", err)
		}
		metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	quoteTimeout := time.Duration(cfg.Quotes.TimeoutMillis) * time.Millisecond

	// Ledger context.
	uow := ledgermysql.NewUnitOfWork(database.DB)
	var publisher ledgerapp.EventPublisher
	if producer != nil {
		publisher = producer
	}
	ledgerService := ledgerapp.NewLedgerService(uow, quotes, publisher, m, quoteTimeout)
	snapshotService := ledgerapp.NewSnapshotService(ledgerService, uow, m)
	analyticsService := ledgerapp.NewAnalyticsService(uow)

	// Trading context.
	commissionBase, err := decimal.NewFromString(cfg.Trading.CommissionBase)
	if err != nil {
		logger.Fatal(ctx, "invalid commission_base", "error", err)
	}
	commissionPerShare, err := decimal.NewFromString(cfg.Trading.CommissionPerShare)
	if err != nil {
		logger.Fatal(ctx, "invalid commission_per_share", "error", err)
	}
	executionService := tradingapp.NewExecutionService(
		tradingmysql.NewOrderRepository(database.DB),
		tradingmysql.NewPositionRepository(database.DB),
		ledgerService,
		quotes,
		publisher,
		m,
		commissionBase,
		commissionPerShare,
		quoteTimeout,
	)

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.Logging(), middleware.Recovery(), middleware.CORS())
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	api := engine.Group("/api/v1")
	ledgerhttp.NewHandler(ledgerService, snapshotService, analyticsService).RegisterRoutes(api)
	tradinghttp.NewHandler(executionService).RegisterRoutes(api)
	mdhttp.NewHandler(quotes).RegisterRoutes(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "http server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "http server failed", "error", err)
		}
	}()

	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http shutdown failed", "error", err)
	}
	logger.Info(ctx, "stopped")
}
