package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"topupstore/internal/config"
	"topupstore/internal/handler"
	"topupstore/internal/infra/cache"
	"topupstore/internal/infra/db"
	infraRepo "topupstore/internal/infra/repository"
	repo "topupstore/internal/repository"
	"topupstore/internal/server"
	"topupstore/internal/usecase"
	auth "topupstore/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// REDIS_ADDR が無い、または繋がらないときはキャッシュ無しで動かす
func newCartCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.CartCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NopCartCache{}, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, cart cache disabled", "addr", cfg.RedisAddr, "err", err)
		_ = client.Close()
		return cache.NopCartCache{}, func() {}
	}

	logger.Info("cart cache enabled", "addr", cfg.RedisAddr)
	return cache.NewRedisCartCache(client), func() { _ = client.Close() }
}

func main() {
	config.LoadDotEnv(".env", "../.env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	ctx := context.Background()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Error("connect db", "err", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate", "err", err)
		os.Exit(1)
	}

	cartCache, closeCache := newCartCache(ctx, cfg, logger)
	defer closeCache()

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	listingRepo := infraRepo.NewListingGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, auth.DefaultAccessTTL)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, &uuidGenerator{}, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	ensureAdminUC := auth.NewEnsureAdminUsecase(registerUC)

	catalogUC := usecase.NewCatalogUsecase(listingRepo, txm, clock)
	cartUC := usecase.NewCartUsecase(txm, cartRepo, cartCache, clock, logger)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, cartCache, clock, logger)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, userRepo, clock)
	adminUserUC := usecase.NewAdminUserUsecase(txm, userRepo, clock)
	auditLogUC := usecase.NewAuditLogUsecase(auditRepo)
	dashboardUC := usecase.NewDashboardUsecase(listingRepo, orderRepo, userRepo)

	//起動時の準備
	if cfg.AdminEmail != "" {
		created, err := ensureAdminUC.Execute(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Error("ensure admin", "err", err)
			os.Exit(1)
		}
		if created {
			logger.Info("admin user created", "email", cfg.AdminEmail)
		}
	}
	if cfg.SeedCatalog {
		n, err := catalogUC.SeedIfEmpty(ctx)
		if err != nil {
			logger.Error("seed catalog", "err", err)
			os.Exit(1)
		}
		if n > 0 {
			logger.Info("catalog seeded", "listings", n)
		}
	}

	//Handler生成
	e := server.New(logger, cfg.JWTSecret, userRepo, server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		Listing:      handler.NewListingHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminListing: handler.NewAdminListingHandler(catalogUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:    handler.NewAdminUserHandler(adminUserUC),
		Dashboard:    handler.NewDashboardHandler(dashboardUC),
		AuditLog:     handler.NewAuditLogHandler(auditLogUC),
	})

	//Server起動
	if err := server.Start(ctx, e, cfg.Addr(), logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
