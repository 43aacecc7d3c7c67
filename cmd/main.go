package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wifibilling/internal/caching"
	"wifibilling/internal/config"
	"wifibilling/internal/documents"
	"wifibilling/internal/handlers"
	"wifibilling/internal/jobs/background"
	appmiddleware "wifibilling/internal/middleware"
	"wifibilling/internal/pdf"
	"wifibilling/internal/repositories"
	"wifibilling/internal/services"
	"wifibilling/internal/whatsapp"
	"wifibilling/pkg/database"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	store, err := documents.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage connection failed")
	}

	cache := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	gateway := whatsapp.NewClient(cfg.WhatsAppServiceURL, cfg.GatewayTimeout, cfg.StatusTimeout)
	manager := whatsapp.NewManager(gateway, cfg.ReconnectDelay)

	customerRepo := repositories.NewCustomerRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	templateRepo := repositories.NewTemplateRepo(pool)

	renderer := pdf.NewRenderer()

	customerService := services.NewCustomerService(customerRepo, cache)
	importService := services.NewImportService(customerService)
	invoiceService := services.NewInvoiceService(invoiceRepo, customerRepo, templateRepo,
		renderer, store, gateway, cache)
	templateService := services.NewTemplateService(templateRepo)
	dashboardService := services.NewDashboardService(customerRepo, invoiceRepo, cache)

	scheduler, err := background.NewScheduler(manager, dashboardService, customerRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler setup failed")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	auth, err := buildAuth(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("auth setup failed")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler()
	e.GET("/health", healthHandler.Health)

	customerHandler := handlers.NewCustomerHandler(customerService, importService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	whatsappHandler := handlers.NewWhatsAppHandler(gateway, manager)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	v1 := e.Group("/v1", auth.Middleware())

	v1.POST("/customers", customerHandler.Create)
	v1.GET("/customers", customerHandler.List)
	v1.GET("/customers/:id", customerHandler.Get)
	v1.PUT("/customers/:id", customerHandler.Update)
	v1.DELETE("/customers/:id", customerHandler.Delete)
	v1.POST("/customers/import", customerHandler.Import)

	v1.POST("/invoices/generate", invoiceHandler.Generate)
	v1.GET("/invoices", invoiceHandler.List)
	v1.GET("/invoices/:id", invoiceHandler.Get)
	v1.PUT("/invoices/:id", invoiceHandler.Edit)
	v1.DELETE("/invoices/:id", invoiceHandler.Delete)
	v1.POST("/invoices/:id/mark-paid", invoiceHandler.MarkPaid)
	v1.POST("/invoices/:id/send", invoiceHandler.Send)
	v1.POST("/invoices/bulk-send", invoiceHandler.BulkSend)
	v1.GET("/invoices/:id/download", invoiceHandler.Download)

	v1.POST("/templates", templateHandler.Create)
	v1.GET("/templates", templateHandler.List)
	v1.GET("/templates/:id", templateHandler.Get)
	v1.PUT("/templates/:id", templateHandler.Update)
	v1.DELETE("/templates/:id", templateHandler.Delete)
	v1.POST("/templates/:id/set-default", templateHandler.SetDefault)

	v1.GET("/whatsapp/status", whatsappHandler.Status)
	v1.GET("/whatsapp/qr", whatsappHandler.PairingCode)
	v1.POST("/whatsapp/reconnect", whatsappHandler.Reconnect)
	v1.POST("/whatsapp/logout", whatsappHandler.Logout)

	v1.GET("/dashboard/stats", dashboardHandler.Stats)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("billing service listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func buildAuth(ctx context.Context, cfg *config.Config) (*appmiddleware.Auth, error) {
	if cfg.JWKSURL != "" {
		return appmiddleware.NewAuthWithJWKS(ctx, cfg.JWKSURL)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET or IDP_JWKS_URL must be set")
	}
	return appmiddleware.NewAuth(cfg.JWTSecret), nil
}
