package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/hatokurandom/hatokurandom/internal/config"
	"github.com/hatokurandom/hatokurandom/internal/handler"
	"github.com/hatokurandom/hatokurandom/internal/logging"
	"github.com/hatokurandom/hatokurandom/internal/middleware"
	"github.com/hatokurandom/hatokurandom/internal/render"
	"github.com/hatokurandom/hatokurandom/internal/repository"
	"github.com/hatokurandom/hatokurandom/internal/service"
	"github.com/hatokurandom/hatokurandom/internal/stats"
	"github.com/hatokurandom/hatokurandom/internal/supply"
	"github.com/hatokurandom/hatokurandom/pkg/cache"
	"github.com/hatokurandom/hatokurandom/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API and page server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (yaml)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}

	repo := repository.NewSupplyRepository(db, cfg.Database.Driver, logger)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	l1 := cache.NewLRU[string, *supply.Supply](cfg.Cache.Size)
	if err := metrics.RegisterLRU(prometheus.DefaultRegisterer, "l1", l1); err != nil {
		return err
	}
	opts := service.Options{
		Store:   repo,
		L1:      l1,
		Phrases: supply.NewPhraseGenerator(cfg.Supply.Expansion),
		Logger:  logger,
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
		})
		defer func() {
			_ = redisClient.Close()
		}()
		// fail fast if Redis is configured but down
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		opts.Counter = stats.NewRedisCounter(redisClient)
		opts.L2 = cache.NewRedisCache(redisClient, "supply:", 10*time.Minute)
	} else {
		logger.Info("redis disabled, views are not counted")
	}

	seed := cfg.Supply.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen, err := supply.NewRandomGenerator(seed, cfg.Supply.Expansion)
	if err != nil {
		return err
	}
	opts.Generator = gen

	templates, err := render.Default()
	if err != nil {
		return err
	}
	supplies := service.NewSupplyService(opts)
	pages, err := service.NewPageService(templates, supplies, cfg.Title, version)
	if err != nil {
		return err
	}

	r := mux.NewRouter()
	r.Use(middleware.Logging(logger), middleware.Metrics)
	handler.New(supplies, pages, logger).Register(r)

	var h http.Handler = r
	if len(cfg.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler(r)
	}

	servers := []*http.Server{{Addr: cfg.Listen, Handler: h}}
	if cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown failed", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}
		return nil
	})
	return g.Wait()
}
