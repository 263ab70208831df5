package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/marketplace-listings/internal/catalog"
	"github.com/ignatzorin/marketplace-listings/internal/config"
	"github.com/ignatzorin/marketplace-listings/internal/credential"
	"github.com/ignatzorin/marketplace-listings/internal/db"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/form"
	httpHandlers "github.com/ignatzorin/marketplace-listings/internal/http/handlers"
	httpRouter "github.com/ignatzorin/marketplace-listings/internal/http/router"
	"github.com/ignatzorin/marketplace-listings/internal/infrastructure/persistence"
	listingHandler "github.com/ignatzorin/marketplace-listings/internal/interface/http/handler"
	"github.com/ignatzorin/marketplace-listings/internal/logger"
	"github.com/ignatzorin/marketplace-listings/internal/payment"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/clock"
	"github.com/ignatzorin/marketplace-listings/internal/service"
	"github.com/ignatzorin/marketplace-listings/internal/storage"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/dashboard"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/listing"
	"github.com/ignatzorin/marketplace-listings/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}
	log := logger.L()

	// Хранилище товаров: Postgres или память для локального запуска.
	var (
		dbConn      *sqlx.DB
		productRepo repository.ProductRepository
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn("main: товары хранятся в памяти и пропадут после перезапуска")
		productRepo = persistence.NewMemoryProductRepository()
	default:
		dbConn, err = db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		migrations, err := db.Migrations(cfg.MigrationsPath)
		if err != nil {
			log.Fatalf("main: ошибка миграций: %v", err)
		}
		if err := db.RunMigrations(ctx, dbConn, migrations); err != nil {
			log.Fatalf("main: ошибка миграций: %v", err)
		}
		productRepo = persistence.NewProductRepository(dbConn)
	}

	categories, err := catalog.Load(cfg.CategoryRegistry)
	if err != nil {
		log.Fatalf("main: ошибка загрузки категорий: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	cache := service.NewCacheService(ctx)

	issuerOpts := []credential.Option{credential.WithClock(clock.Real())}
	if cfg.CredentialJournal && dbConn != nil {
		issuerOpts = append(issuerOpts, credential.WithJournal(persistence.NewCredentialJournal(dbConn)))
	}
	issuer := credential.NewIssuer(issuerOpts...)
	defer issuer.Close()

	gateway := payment.NewMockGateway(cfg.PaymentAckDelay)

	hub := ws.NewHub()
	go hub.Run(ctx)

	// Use cases.
	createProductUC := listing.NewCreateProductUseCase(productRepo, categories, cache)
	getProductUC := listing.NewGetProductUseCase(productRepo)
	listMyProductsUC := listing.NewListMyProductsUseCase(productRepo)
	patchProductUC := listing.NewPatchProductUseCase(productRepo, categories, cache)
	deleteProductUC := listing.NewDeleteProductUseCase(productRepo, cache)
	submitUC := listing.NewSubmitForReviewUseCase(productRepo, cache)
	unpublishUC := listing.NewUnpublishProductUseCase(productRepo, cache)
	approveUC := listing.NewApproveProductUseCase(productRepo, cache)
	rejectUC := listing.NewRejectProductUseCase(productRepo, cache)
	archiveUC := listing.NewArchiveProductUseCase(productRepo, cache)
	dashboardUC := dashboard.NewSellerDashboardUseCase(productRepo, cache, service.DashboardCacheKey)

	forms := form.NewManager(form.Deps{
		Issuer:     issuer,
		Payment:    gateway,
		Creator:    createProductUC,
		Categories: categories,
		Clock:      clock.Real(),
	}, cfg.FormIdleTTL, hub)
	defer forms.Shutdown()
	go forms.Run(ctx)

	// Хэндлеры.
	var mediaHandler *httpHandlers.MediaHandler
	imageStorage, err := storage.NewImageStorage(cfg.MediaStoragePath, cfg.MediaPublicURL, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Errorf("main: загрузка изображений отключена: %v", err)
	} else {
		mediaHandler = httpHandlers.NewMediaHandler(imageStorage)
	}

	handlers := httpRouter.Handlers{
		Health: httpHandlers.NewHealthHandler(dbConn, map[string]httpHandlers.Counter{
			"live_credentials": httpHandlers.CounterFunc(issuer.LiveCount),
			"open_forms":       forms,
		}),
		Auth:      httpHandlers.NewAuthHandler(tokenManager),
		Catalog:   httpHandlers.NewCatalogHandler(categories),
		Media:     mediaHandler,
		WS:        httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Form:      listingHandler.NewFormHandler(forms),
		Product:   listingHandler.NewProductHandler(getProductUC, listMyProductsUC, patchProductUC, deleteProductUC, submitUC, unpublishUC),
		Admin:     listingHandler.NewAdminHandler(approveUC, rejectUC, archiveUC),
		Dashboard: listingHandler.NewDashboardHandler(dashboardUC),
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.WithFields(logrus.Fields{
		"port":    cfg.HTTPPort,
		"env":     cfg.Env,
		"storage": cfg.StorageDriver,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.L().Errorf("main: ошибка закрытия базы: %v", err)
	}
}
