package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/config"
	"github.com/farellandr/rifas/internal/auth"
	"github.com/farellandr/rifas/internal/gateway"
	"github.com/farellandr/rifas/internal/handlers"
	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/logger"
	"github.com/farellandr/rifas/internal/metrics"
	"github.com/farellandr/rifas/internal/middleware"
	"github.com/farellandr/rifas/internal/notify"
)

// Dependencies are the shared clients every request is served with.
// Notifier, Gateway and Redis are optional.
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Tokens   *auth.TokenManager
	Notifier notify.Notifier
	Gateway  gateway.Gateway
	Redis    *redis.Client
}

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logger.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := Dependencies{
		Config:   cfg,
		DB:       db,
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour),
		Notifier: notify.Nop{},
	}

	if cfg.TelegramToken != "" {
		bot, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramAdminChatID)
		if err != nil {
			logger.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			deps.Notifier = bot
			if bot.ChatID() == 0 {
				go bot.Listen(ctx)
			}
		}
	}

	if cfg.GatewayEnabled() {
		deps.Gateway = gateway.NewXendit(cfg.Xendit.SecretKey)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting degrades to pass-through", zap.Error(err))
		}
		deps.Redis = rdb
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), metrics.HTTPMiddleware())

	setupRoutes(r, deps)
	return r
}

func setupRoutes(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	upload := helpers.DefaultImageUploadConfig
	if cfg.UploadDir != "" {
		upload.UploadBasePath = cfg.UploadDir
	}

	r.Use(
		middleware.DatabaseMiddleware(deps.DB),
		middleware.NotifierMiddleware(deps.Notifier),
		middleware.GatewayMiddleware(deps.Gateway),
		middleware.SiteMiddleware(helpers.NewReceiptSigner(cfg.JWTSecret), upload, cfg.PublicBaseURL),
	)

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", upload.UploadBasePath)

	limit := func(scope string) gin.HandlerFunc {
		return middleware.RateLimitMiddleware(deps.Redis, scope, cfg.RateLimitPerMinute, time.Minute)
	}
	requireAdmin := middleware.JWTAuthMiddleware(deps.Tokens)

	rifas := r.Group("/rifas")
	{
		rifas.GET("", handlers.ListRaffles)
		rifas.GET("/:id/numbers", handlers.GetRaffleNumbers)
	}

	payments := r.Group("/payments")
	{
		payments.POST("/create", limit("payments"), handlers.CreatePayment)
		payments.GET("/status/:id", handlers.GetPaymentStatus)
		payments.POST("/update-proof", limit("proofs"), handlers.UpdatePaymentProof)
		payments.GET("/receipt/:id", handlers.GetPaymentReceipt)
		payments.POST("/webhook/xendit", middleware.XenditCallbackMiddleware(cfg.Xendit.CallbackToken), handlers.XenditInvoiceWebhook)
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", limit("login"), handlers.Login(deps.Tokens, cfg.SecureCookie))
		authGroup.POST("/logout", handlers.Logout)
		authGroup.GET("/verify", requireAdmin, handlers.VerifySession)
	}

	r.GET("/settings", handlers.GetSettings)
	r.PUT("/settings", requireAdmin, handlers.UpdateSettings)

	admin := r.Group("/admin")
	admin.Use(requireAdmin)
	{
		admin.GET("/dashboard", handlers.GetDashboard)
		admin.GET("/payments", handlers.ListPayments)
		admin.PATCH("/payments", handlers.UpdatePaymentStatus)
		admin.POST("/rifas", handlers.CreateRaffle)
		admin.PATCH("/rifas/:id", handlers.UpdateRaffleStatus)
		admin.POST("/numbers/assign", handlers.AssignNumbers)
		admin.GET("/users", handlers.ListUsers)
		admin.POST("/users", handlers.CreateUser)
		admin.POST("/receipts/validate", handlers.ValidateReceipt)
	}
}
