// Comando sweep: ejecuta un barrido único de reservas expiradas, pensado
// para correr desde cron o un job de plataforma además del scheduler
// embebido en el API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	appstock "github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/infrastructure/postgres"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/config"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Barrido de reservas de stock expiradas",
	Long: `Recorre el libro de reservas, cancela las líneas reservadas cuya
reserva venció y elimina las filas expiradas, liberando el stock
comprometido. Cada par (producto, factura) se procesa en su propia
transacción, así que el comando es seguro de reejecutar.`,
	RunE: runSweep,
}

func init() {
	rootCmd.Flags().Duration("timeout", 5*time.Minute, "tiempo máximo del barrido completo")
}

func runSweep(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	reservationRepo := postgres.NewReservationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	sweeper := appstock.NewExpirySweeper(txRunner, reservationRepo, log)
	sweeper.RunExpirySweep(ctx)

	log.Info().Msg("barrido de expiraciones terminado")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
