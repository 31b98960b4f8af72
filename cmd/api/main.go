package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"innersignature/internal/config"
	"innersignature/internal/db"
	apihttp "innersignature/internal/http"
	"innersignature/internal/metrics"
	"innersignature/internal/repository"
	"innersignature/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	companyRepo := repository.NewPgCompanyRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)

	var (
		tokenStore  service.RefreshTokenStore
		blacklist   service.AccessTokenBlacklist
		limiter     service.LoginRateLimiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			blacklist = service.NewRedisAccessBlacklist(redisClient)
			limiter = service.NewRedisLoginRateLimiter(redisClient,
				time.Duration(cfg.LoginWindowMinutes)*time.Minute, cfg.LoginMaxAttempts)
		}
		cancel()
	}

	tokenSvc := service.NewTokenServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)

	authSvc := service.NewAuthService(logger, userRepo, companyRepo, sessionRepo, tokenSvc, blacklist, limiter)

	m := metrics.NewMetrics("innersignature")
	authHandler := apihttp.NewAuthHandler(logger, authSvc, m)
	companyHandler := apihttp.NewCompanyHandler(logger, authSvc, m)
	// El middleware debe consultar la misma blacklist donde Logout escribe,
	// incluida la de memoria que instala el servicio cuando no hay Redis.
	router := apihttp.NewRouter(logger, m, tokenSvc, authSvc.Blacklist(), authHandler, companyHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
