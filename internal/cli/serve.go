package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elys-network/ampfarm/internal/app"
	"github.com/elys-network/ampfarm/internal/config"
	"github.com/elys-network/ampfarm/internal/harvester"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/state"
	"github.com/elys-network/ampfarm/internal/web"
)

var noHarvest bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Deploy the vault if needed, then serve the API and run the harvester",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noHarvest, "no-harvest", false, "serve queries only, never compound")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	log.Info().Msg("ampfarm starting...")

	db, err := dbm.NewDB("ampfarm", dbm.BackendType(config.StoreBackend), config.StoreDir)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", config.StoreBackend, err)
	}
	defer db.Close()

	var opts []host.Option
	var rounds harvester.RoundCounter
	if config.HistoryDBEnabled {
		if err := state.InitDB(config.HistoryDB); err != nil {
			return fmt.Errorf("failed to initialize history database: %w", err)
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			return fmt.Errorf("failed to ensure database schema: %w", err)
		}
		opts = append(opts, host.WithEventSink(state.HistorySink()))
		rounds = state.IncrementHarvestRound
		log.Info().Str("db", config.HistoryDB.DBName).Msg("Event history enabled")
	}

	a, err := app.New(ctx, db, appConfig(), opts...)
	if err != nil {
		return fmt.Errorf("failed to deploy vault: %w", err)
	}
	log.Info().
		Str("vault", a.VaultAddr.String()).
		Str("lp_token", a.LPToken.String()).
		Str("amp_lp_token", a.AmpLPToken.String()).
		Str("controller", a.Controller.String()).
		Int64("height", mustHeight(a)).
		Msg("Vault ready")

	webServer := web.NewWebServer(strconv.FormatUint(config.WebPort, 10), a.Vault, config.HistoryDBEnabled)

	var h *harvester.Harvester
	if !noHarvest {
		h, err = harvester.New(harvester.Config{
			VaultManager:   a.Vault,
			MinimumReceive: &config.HarvestMinimumReceive,
			Rounds:         rounds,
		})
		if err != nil {
			return err
		}
	}
	return runServices(ctx, webServer, h, config.HarvestInterval)
}

// runServices runs the web server and, when h is set, the harvest loop until ctx is
// cancelled. It returns only after both goroutines have exited, so the stores they
// use can be closed by the caller.
func runServices(ctx context.Context, webServer *web.WebServer, h *harvester.Harvester, interval time.Duration) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed")
		}
	}()

	if h != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.RunLoop(ctx, interval)
		}()
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := webServer.Shutdown(shutdownCtx)
	wg.Wait()
	return err
}

func mustHeight(a *app.App) int64 {
	height, err := a.Host.Height()
	if err != nil {
		return -1
	}
	return height
}
