package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"recipe_backend/internal/app/router"
	recipeadapters "recipe_backend/internal/feature/recipe/adapters"
	recipedomain "recipe_backend/internal/feature/recipe/domain"
	recipehandler "recipe_backend/internal/feature/recipe/transport/handler"
	recipeusecase "recipe_backend/internal/feature/recipe/usecase"
	useradapters "recipe_backend/internal/feature/user/adapters"
	userhandler "recipe_backend/internal/feature/user/transport/handler"
	userusecase "recipe_backend/internal/feature/user/usecase"
	"recipe_backend/internal/platform/cache"
	"recipe_backend/internal/platform/config"
	"recipe_backend/internal/platform/http/handler"
	"recipe_backend/internal/platform/http/response"
	jwtmw "recipe_backend/internal/platform/jwt"
	"recipe_backend/internal/platform/metrics"
	"recipe_backend/internal/platform/storage"
	"recipe_backend/internal/shared/ratelimiter"
)

// userCacheTTL は認証時のユーザー参照をキャッシュする期間です。
const userCacheTTL = 5 * time.Minute

// App is the fully wired HTTP application.
type App struct {
	Router  http.Handler
	Users   *userusecase.UserUsecase
	limiter *ratelimiter.RateLimiter
}

// NewUserUsecase wires the account usecase. rdb may be nil.
// media, when set, lets account deletion remove the user's uploaded images.
func NewUserUsecase(cfg config.JWTConfig, db *gorm.DB, rdb *redis.Client, media userusecase.OwnedMedia) *userusecase.UserUsecase {
	users := cache.NewCachingUserRepository(rdb, userCacheTTL, useradapters.NewUserGorm(db), "users")
	uc := userusecase.NewUserUsecase(users, NewSessionRepository(rdb, db), jwtmw.NewGenerator(cfg.Secret), cfg.TTL)
	if media != nil {
		uc.WithOwnedMedia(media)
	}
	return uc
}

// NewRecipeUsecase wires the recipe usecase over local media storage.
func NewRecipeUsecase(db *gorm.DB, media *storage.LocalStorage) *recipeusecase.RecipeUsecase {
	return recipeusecase.NewRecipeUsecase(recipeadapters.NewRecipeGorm(db), media)
}

// NewApp builds the router and everything behind it.
// rdb may be nil (sessions fall back to the database, no user cache).
// reg may be nil (no /metrics endpoint).
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client, reg *prometheus.Registry, logger *slog.Logger) (*App, error) {
	media, err := storage.NewLocalStorage(cfg.Media.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to init media storage: %w", err)
	}

	recipes := NewRecipeUsecase(db, media)
	users := NewUserUsecase(cfg.JWT, db, rdb, recipes)
	tags := recipeusecase.NewAttributeUsecase(recipeadapters.NewTagGorm(db))
	ingredients := recipeusecase.NewAttributeUsecase(recipeadapters.NewIngredientGorm(db))

	limiter := ratelimiter.NewRateLimiter(ratelimiter.Config{
		Rate:  rate.Limit(cfg.Login.RPS),
		Burst: cfg.Login.Burst,
	})

	checks, err := healthChecks(db, rdb)
	if err != nil {
		return nil, err
	}

	opts := router.Options{
		Auth:           users,
		TokenLimiter:   limiter,
		MediaURL:       cfg.Media.URL,
		MediaRoot:      media.Root(),
		CORSOrigins:    cfg.CORS.Origins,
		TrustedProxies: cfg.Server.TrustedProxies,
		HealthChecks:   checks,
		Logger:         logger,
	}
	if reg != nil {
		opts.Metrics = metrics.NewCollector(reg)
		opts.Gatherer = reg
	}

	response.RegisterValidator()
	r, err := router.NewRouter(router.Handlers{
		Users:       userhandler.NewUserHandler(users),
		Recipes:     recipehandler.NewRecipeHandler(recipes, cfg.Media.URL),
		Tags:        recipehandler.NewAttributeHandler(tags, recipedomain.ErrTagNotFound),
		Ingredients: recipehandler.NewAttributeHandler(ingredients, recipedomain.ErrIngredientNotFound),
	}, opts)
	if err != nil {
		return nil, err
	}

	return &App{Router: r, Users: users, limiter: limiter}, nil
}

// healthChecks は/healthzで確認する依存先です。
func healthChecks(db *gorm.DB, rdb *redis.Client) ([]handler.Check, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	checks := []handler.Check{{Name: "db", Fn: sqlDB.PingContext}}
	if rdb != nil {
		checks = append(checks, handler.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return checks, nil
}

// Close stops background goroutines owned by the app.
func (a *App) Close() {
	a.limiter.Stop()
}
