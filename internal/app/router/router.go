// Package router はHTTPルーティングを定義します。
package router

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	recipehandler "recipe_backend/internal/feature/recipe/transport/handler"
	userhandler "recipe_backend/internal/feature/user/transport/handler"
	"recipe_backend/internal/platform/http/handler"
	"recipe_backend/internal/platform/http/middleware"
	"recipe_backend/internal/platform/http/response"
	jwtmw "recipe_backend/internal/platform/jwt"
	"recipe_backend/internal/platform/metrics"
	"recipe_backend/internal/shared/apperr"
	"recipe_backend/internal/shared/ratelimiter"
)

// Handlers はフィーチャーごとのHTTPハンドラーです。
type Handlers struct {
	Users       *userhandler.UserHandler
	Recipes     *recipehandler.RecipeHandler
	Tags        *recipehandler.AttributeHandler
	Ingredients *recipehandler.AttributeHandler
}

// Options はルーター全体の設定です。nilのフィールドは該当機能を無効にします。
type Options struct {
	Auth         jwtmw.Authenticator
	TokenLimiter *ratelimiter.RateLimiter
	Metrics      *metrics.Collector
	Gatherer     prometheus.Gatherer
	MediaURL     string
	MediaRoot    string
	CORSOrigins  []string
	// TrustedProxies が空ならX-Forwarded-Forを無視し、接続元アドレスをクライアントIPとします。
	TrustedProxies []string
	HealthChecks   []handler.Check
	Logger         *slog.Logger
}

// NewRouter はAPIルートを登録したgin.Engineを返します。
func NewRouter(h Handlers, opts Options) (*gin.Engine, error) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	r.Use(gin.Recovery(), middleware.AccessLog(opts.Logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"Retry-After"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.NoMethod(func(c *gin.Context) {
		response.Error(c, apperr.New(apperr.ErrMethodNotAllowed, fmt.Sprintf("method %q not allowed", c.Request.Method)))
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperr.NotFound("not found"))
	})

	// 認証不要
	// 導通確認用
	health := handler.Health(opts.HealthChecks...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(opts.Gatherer)))
	}
	if opts.MediaRoot != "" && opts.MediaURL != "" {
		r.Static(opts.MediaURL, opts.MediaRoot)
	}

	api := r.Group("/api")

	// 新規ユーザー登録とトークン発行
	api.POST("/users/", h.Users.Register)
	tokenChain := []gin.HandlerFunc{}
	if opts.TokenLimiter != nil {
		tokenChain = append(tokenChain, opts.TokenLimiter.Middleware())
	}
	api.POST("/users/token/", append(tokenChain, h.Users.Token)...)

	// 認証必須のルート
	auth := api.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.Auth))
	{
		auth.POST("/users/token/revoke/", h.Users.Revoke)
		auth.GET("/users/me/", h.Users.Me)
		auth.PATCH("/users/me/", h.Users.UpdateMe)
		auth.PUT("/users/me/", h.Users.UpdateMe)

		recipes := auth.Group("/recipes")
		recipes.GET("/", h.Recipes.List)
		recipes.POST("/", h.Recipes.Create)
		recipes.GET("/:id/", h.Recipes.Get)
		recipes.PUT("/:id/", h.Recipes.Replace)
		recipes.PATCH("/:id/", h.Recipes.Patch)
		recipes.DELETE("/:id/", h.Recipes.Delete)
		recipes.POST("/:id/upload-image/", h.Recipes.UploadImage)

		registerAttributeRoutes(auth.Group("/tags"), h.Tags)
		registerAttributeRoutes(auth.Group("/ingredients"), h.Ingredients)
	}

	return r, nil
}

func registerAttributeRoutes(g *gin.RouterGroup, h *recipehandler.AttributeHandler) {
	g.GET("/", h.List)
	g.POST("/", h.Create)
	g.GET("/:id/", h.Get)
	g.PUT("/:id/", h.Update)
	g.PATCH("/:id/", h.Patch)
	g.DELETE("/:id/", h.Delete)
}
