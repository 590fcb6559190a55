package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	"github.com/jhoicas/revisiones-api/internal/application/inventory"
	"github.com/jhoicas/revisiones-api/internal/application/reconciliation"
	apprevision "github.com/jhoicas/revisiones-api/internal/application/revision"
	"github.com/jhoicas/revisiones-api/internal/application/tenant"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/lock"
	infrapdf "github.com/jhoicas/revisiones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/revisiones-api/internal/interfaces/http"
	"github.com/jhoicas/revisiones-api/pkg/config"
	"github.com/jhoicas/revisiones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Lock por sede: Redis si hay varias instancias, en proceso si no.
	var locker apprevision.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := lock.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL, cfg.Redis.LockRetries, zl)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock distribuido por sede")
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: lock en proceso, no usar con varias instancias")
	}

	repos := postgres.NewRepositories(pool)
	txRunner := postgres.NewTxRunner(pool)
	engine := reconciliation.NewEngine(zl, cfg.Engine.Workers)

	revisionUC := apprevision.NewUseCase(repos, txRunner, engine, locker, cfg.Engine.Timeout, zl)
	inventoryUC := inventory.NewUseCase(repos, zl)
	tenantUC := tenant.NewUseCase(txRunner, zl)

	// PDF: informe imprimible de la revisión
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(language.Spanish)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Engine.Timeout + 10*time.Second,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    6 << 20,
		ErrorHandler: httpRouter.ErrorHandler(zl),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(zl))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Revisiones API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RevisionUC:  revisionUC,
		InventoryUC: inventoryUC,
		TenantUC:    tenantUC,
		PDF:         pdfGenerator,
		JWTSecret:   cfg.JWT.Secret,
		Log:         zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
