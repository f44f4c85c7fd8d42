package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/umai/recipe-api/internal/api"
	"github.com/umai/recipe-api/internal/api/handler"
	"github.com/umai/recipe-api/internal/core/service"
	mongodb "github.com/umai/recipe-api/internal/infrastructure/db/mongo"
	redisdb "github.com/umai/recipe-api/internal/infrastructure/db/redis"
	"github.com/umai/recipe-api/internal/infrastructure/payment"
	"github.com/umai/recipe-api/internal/infrastructure/storage"
	"github.com/umai/recipe-api/internal/pkg/config"
	"github.com/umai/recipe-api/internal/pkg/password"
	"github.com/umai/recipe-api/internal/pkg/token"
	"github.com/umai/recipe-api/pkg/logger"
)

// @title                       Umai Recipe API
// @version                     1.0
// @description                 Recipe sharing backend: accounts, recipes, posts, rankings and a balance ledger.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "umai-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()

	users := mongodb.NewUserRepository(db)
	recipes := mongodb.NewRecipeRepository(db)
	posts := mongodb.NewPostRepository(db)
	ledger := mongodb.NewLedgerRepository(db)

	if err := mongodb.EnsureIndexes(ctx, users, recipes, posts); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	guard := redisdb.NewIdempotencyGuard(rdb, cfg.Redis.IdempotencyTTL)
	rankingCache := redisdb.NewRankingCache(rdb, cfg.Redis.RankingCacheTTL)

	images, err := storage.NewS3Store(ctx, storage.Config{
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		UsePathStyle:  cfg.Storage.UsePathStyle,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure object storage")
	}

	processor := payment.NewStripeProcessor(cfg.Payment.StripeSecretKey, log)
	if cfg.Payment.StripeSecretKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, payment intents are disabled")
	}

	// --- Services ---
	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	e := api.NewRouter(api.Deps{
		Auth: service.NewAuthService(users, password.NewHasher(cfg.Auth.BcryptCost), tokens, images,
			service.AuthOptions{RequireProfileImage: cfg.Auth.RequireProfileImage}, log),
		Ledger:     service.NewLedgerService(ledger, guard, log),
		Recipes:    service.NewRecipeService(recipes, images, log),
		Posts:      service.NewPostService(posts, recipes, images, log),
		Users:      service.NewUserService(users, rankingCache, log),
		Payments:   service.NewPaymentService(processor, cfg.Payment.Currency, log),
		Tokens:     tokens,
		UserFinder: users,
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Log: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
