package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/application/event"
	"github.com/jhoicas/material-dispo/internal/infrastructure/memory"
	"github.com/jhoicas/material-dispo/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/material-dispo/internal/interfaces/http"
	"github.com/jhoicas/material-dispo/pkg/config"
	"github.com/jhoicas/material-dispo/pkg/logger"
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

	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	candidateRepo := postgres.NewCandidateRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Publicación en proceso de eventos salientes (p. ej. SupplyRequiredEvent);
	// los suscriptores se registran aquí mismo. Solo post-commit.
	publisher := memory.NewEventPublisher()
	publisher.Subscribe(func(evt any) {
		log.Info().Type("event", evt).Msg("evento de material emitido")
	})

	stockSvc := dispo.NewStockCandidateService(log)
	evaluator := dispo.NewSupplyProposalEvaluator()

	changeSvc := dispo.NewCandidateChangeService(
		txRunner,
		publisher,
		dispo.RetryConfig{
			MaxAttempts: cfg.Dispo.RetryMaxAttempts,
			Backoff:     time.Duration(cfg.Dispo.RetryBackoffMs) * time.Millisecond,
		},
		log,
		dispo.NewDemandCandidateHandler(stockSvc),
		dispo.NewSupplyCandidateHandler(stockSvc, evaluator),
		dispo.NewUnrelatedMovementHandler(stockSvc),
	)

	facade := event.NewMaterialEventListenerFacade(
		changeSvc,
		event.NewShipmentScheduleCreatedHandler(changeSvc),
		event.NewDistributionOrderHandler(changeSvc, evaluator),
		event.NewProductionOrderHandler(changeSvc),
		event.NewForecastCreatedHandler(changeSvc),
		event.NewTransactionCreatedHandler(changeSvc),
		productRepo,
		warehouseRepo,
		log,
	)

	availableStockUC := dispo.NewAvailableStockUseCase(candidateRepo)

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
		Facade:         facade,
		AvailableStock: availableStockUC,
		JWTSecret:      cfg.JWT.Secret,
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
