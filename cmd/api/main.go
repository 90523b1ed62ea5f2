package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/merchhub/merch-api/internal/application/accesscontrol"
	"github.com/merchhub/merch-api/internal/application/catalog"
	"github.com/merchhub/merch-api/internal/infrastructure/postgres"
	httpRouter "github.com/merchhub/merch-api/internal/interfaces/http"
	"github.com/merchhub/merch-api/pkg/config"
	"github.com/merchhub/merch-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
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

	linkRepo := postgres.NewLinkRepository(pool)
	entityRepo := postgres.NewEntityRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	tagRepo := postgres.NewTagRepository(pool)
	attrRepo := postgres.NewAttributeRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	reconciler := accesscontrol.NewReconciler(txRunner, entityRepo)
	resolver := accesscontrol.NewResolver(linkRepo)
	catalogUC := catalog.NewUseCase(productRepo, tagRepo, attrRepo, linkRepo, resolver, txRunner, catalog.Config{
		DefaultPageSize: cfg.Catalog.DefaultPageSize,
		MaxPageSize:     cfg.Catalog.MaxPageSize,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CatalogUC:  catalogUC,
		Reconciler: reconciler,
		Resolver:   resolver,
		JWTSecret:  cfg.JWT.Secret,
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
