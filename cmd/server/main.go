package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appprinting "github.com/acaishop/printing/internal/application/printing"
	"github.com/acaishop/printing/internal/domain/order"
	"github.com/acaishop/printing/internal/domain/receipt"
	"github.com/acaishop/printing/internal/infrastructure/config"
	"github.com/acaishop/printing/internal/infrastructure/escpos"
	"github.com/acaishop/printing/internal/infrastructure/logger"
	"github.com/acaishop/printing/internal/infrastructure/pdfgen"
	"github.com/acaishop/printing/internal/infrastructure/quotes"
	"github.com/acaishop/printing/internal/infrastructure/storage"
	"github.com/acaishop/printing/internal/infrastructure/storefront"
	"github.com/acaishop/printing/internal/interfaces/http/handler"
	"github.com/acaishop/printing/internal/interfaces/http/middleware"
	"github.com/acaishop/printing/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting receipt print service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Thermal print device
	device, err := escpos.NewDevice(escpos.DeviceOptions{
		Transport: cfg.Printer.Transport,
		Device:    cfg.Printer.Device,
		BaudRate:  cfg.Printer.BaudRate,
	})
	if err != nil {
		log.Fatal("Failed to configure print device", zap.Error(err))
	}
	gate := escpos.NewAssetGate(cfg.Store.EmblemURL, cfg.Document.EmblemTimeout, log)
	printer := escpos.NewPrinter(device, gate, cfg.Printer.MaxDeferrals, cfg.Printer.DeferralDelay, log)
	log.Info("Print device configured",
		zap.String("transport", cfg.Printer.Transport),
		zap.String("device", cfg.Printer.Device),
	)

	// Receipt builder with the configured fee-waiver rules
	rules, err := waiverRules(cfg.Waivers)
	if err != nil {
		log.Fatal("Invalid fee-waiver rules", zap.Error(err))
	}
	builder := receipt.NewBuilder(cfg.Printer.WidthChars, rules)

	// PDF document renderer
	docRenderer := pdfgen.NewDocumentRenderer(cfg.Document.PaperWidthMM, cfg.Document.EmblemTimeout, log)

	// Document artifact storage
	artifacts, err := newArtifactStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	log.Info("Document storage ready", zap.String("backend", cfg.Storage.Backend))

	// Quotation source chain
	quoteSource := newQuoteSource(cfg, log)

	// Storefront callbacks
	var marker appprinting.OrderMarker
	var notifier appprinting.BatchNotifier
	if cfg.Storefront.BaseURL != "" {
		client := storefront.NewClient(cfg.Storefront.BaseURL, cfg.Storefront.Timeout, log)
		marker, notifier = client, client
		log.Info("Storefront callbacks enabled", zap.String("base_url", cfg.Storefront.BaseURL))
	} else {
		marker = storefront.NewLogMarker(log)
		notifier = storefront.NewLogNotifier(log)
	}

	store := order.Store{Name: cfg.Store.Name, EmblemURL: cfg.Store.EmblemURL}

	// Print job coordinator
	coordinator := appprinting.NewCoordinator(appprinting.CoordinatorConfig{
		Printer:     printer,
		Builder:     builder,
		Store:       store,
		QuoteSource: quoteSource,
		Marker:      marker,
		Notifier:    notifier,
		SettleDelay: cfg.Printer.SettleDelay,
		Logger:      log,
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	coordinator.Start(workerCtx)

	service := appprinting.NewPrintService(coordinator, builder, docRenderer, artifacts, quoteSource, store, log)

	// Retention cleanup for stored documents
	if cfg.Storage.RetentionDays > 0 {
		go retentionLoop(workerCtx, artifacts, cfg.Storage.RetentionDays, log)
	}

	// Setup gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS())

	// Health check endpoint (outside API versioning)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"app":    cfg.App.Name,
		})
	})

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewPrintHandler(service, log))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Let the worker finish the job in flight before its context is
	// cancelled; cancelling first would cut off a job mid-deferral.
	if err := coordinator.Drain(ctx); err != nil {
		log.Warn("Print queue did not drain in time", zap.Error(err))
	}
	stopWorker()
	select {
	case <-coordinator.Done():
	case <-ctx.Done():
		log.Warn("Print worker did not stop in time")
	}

	log.Info("Server exited gracefully")
}

func waiverRules(configs []config.FeeWaiverConfig) ([]receipt.FeeWaiverRule, error) {
	rules := make([]receipt.FeeWaiverRule, 0, len(configs))
	for _, wc := range configs {
		minimum, err := wc.MinimumOrderAmount()
		if err != nil {
			return nil, err
		}
		waived, err := wc.WaivedFeeAmount()
		if err != nil {
			return nil, err
		}
		rules = append(rules, receipt.FeeWaiverRule{
			CategoryTag:  wc.CategoryTag,
			MinimumOrder: minimum,
			WaivedFee:    waived,
		})
	}
	return rules, nil
}

func newArtifactStorage(cfg *config.Config, log *zap.Logger) (storage.ArtifactStorage, error) {
	if cfg.Storage.Backend == "s3" {
		s3Store, err := storage.NewS3ArtifactStorage(&storage.S3ArtifactStorageConfig{
			Endpoint:     cfg.Storage.Endpoint,
			Region:       cfg.Storage.Region,
			Bucket:       cfg.Storage.Bucket,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			UsePathStyle: cfg.Storage.UsePathStyle,
			BaseURL:      cfg.Storage.BaseURL,
			Logger:       log,
		})
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Store, nil
	}

	return storage.NewFileSystemStorage(&storage.FileSystemStorageConfig{
		BasePath:      cfg.Storage.BasePath,
		BaseURL:       cfg.Storage.BaseURL,
		RetentionDays: cfg.Storage.RetentionDays,
		Logger:        log,
	})
}

func newQuoteSource(cfg *config.Config, log *zap.Logger) quotes.Source {
	fallback := quotes.NewStaticSource()
	if cfg.Quotes.URL == "" {
		return fallback
	}

	remote := quotes.NewHTTPSource(cfg.Quotes.URL, cfg.Quotes.Timeout)
	if cfg.Quotes.RedisAddr == "" {
		return quotes.NewFallbackSource(remote, fallback)
	}

	cached, err := quotes.NewCachedSource(quotes.RedisConfig{
		Addr:     cfg.Quotes.RedisAddr,
		Password: cfg.Quotes.RedisPassword,
		DB:       cfg.Quotes.RedisDB,
	}, remote, fallback, cfg.Quotes.CacheTTL, log)
	if err != nil {
		log.Warn("Redis quote cache unavailable, continuing without it", zap.Error(err))
		return quotes.NewFallbackSource(remote, fallback)
	}
	log.Info("Quote cache connected", zap.String("addr", cfg.Quotes.RedisAddr))
	return cached
}

func retentionLoop(ctx context.Context, artifacts storage.ArtifactStorage, retentionDays int, log *zap.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			age := time.Duration(retentionDays) * 24 * time.Hour
			removed, err := artifacts.CleanupOlderThan(ctx, age)
			if err != nil {
				log.Error("Document retention cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Info("Document retention cleanup", zap.Int("removed", removed))
			}
		}
	}
}
