package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/billing"
	appstock "github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/Samsiani/gn1-invoice-dash-sub000/internal/interfaces/http"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/config"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
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

	invoiceRepo := postgres.NewInvoiceRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	productCatalog := postgres.NewProductCatalog(pool)
	txRunner := postgres.NewTxRunner(pool)

	billingCfg := billing.Config{
		MaxReservationDays: cfg.Stock.MaxReservationDays,
		LockRetries:        cfg.Stock.LockRetries,
		RetryBackoff:       cfg.Stock.RetryBackoff,
	}
	reconciler := billing.NewReconciler(log)
	saveInvoiceUC := billing.NewSaveInvoiceUseCase(txRunner, invoiceRepo, reconciler, billingCfg, log)
	markAsSoldUC := billing.NewMarkAsSoldUseCase(txRunner, reconciler, billingCfg, log)
	deleteInvoiceUC := billing.NewDeleteInvoiceUseCase(txRunner, reconciler, billingCfg, log)

	ledger := appstock.NewLedgerService(reservationRepo, productCatalog)

	// Barrido periódico de reservas expiradas: cancela las líneas reservadas
	// cuya reserva venció y libera el stock comprometido.
	sweeper := appstock.NewExpirySweeper(txRunner, reservationRepo, log)
	scheduler := appstock.NewScheduler(sweeper, cfg.Stock.SweepInterval, log)
	scheduler.Start()
	defer scheduler.Stop()

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
		SaveInvoice:   saveInvoiceUC,
		MarkAsSold:    markAsSoldUC,
		DeleteInvoice: deleteInvoiceUC,
		Ledger:        ledger,
		JWTSecret:     cfg.JWT.Secret,
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
