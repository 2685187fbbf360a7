package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joe-ervin05/brick/api"
	"github.com/joe-ervin05/brick/config"
	"github.com/joe-ervin05/brick/daos"
	"github.com/joe-ervin05/brick/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serve starts the REST API. The active database is read from the config
file and may be changed at runtime through POST /api/config, the
"brick config set" command, or by editing the file directly.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func logStartupInfo(store *config.Store) {
	fmt.Println("=== Brick ===")
	fmt.Printf("Port:            %s\n", config.Cfg.Port)
	fmt.Printf("Config file:     %s\n", store.Path())
	if path := store.DBPath(); path != "" {
		fmt.Printf("Database:        %s\n", path)
	} else {
		fmt.Println("Database:        (none selected)")
	}
	fmt.Printf("Request timeout: %ds\n", config.Cfg.RequestTimeout)
	fmt.Printf("Default limit:   %d rows\n", config.Cfg.DefaultLimit)

	if config.Cfg.APIKey == "" {
		fmt.Println("[WARN] No API key set - authentication disabled")
	} else {
		fmt.Println("[OK]   Authentication enabled")
	}

	if len(config.Cfg.CORSOrigins) == 0 {
		fmt.Println("[INFO] CORS disabled (no origins configured)")
	} else {
		fmt.Printf("[OK]   CORS origins: %v\n", config.Cfg.CORSOrigins)
	}
	fmt.Println()
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := config.OpenStore(config.Cfg.ConfigPath)
	if err != nil {
		return err
	}

	mgr := daos.NewManager(store)
	defer func() {
		if err := mgr.Close(); err != nil {
			tools.Logger.Warn("error closing database", "error", err.Error())
		}
	}()

	logStartupInfo(store)

	app := http.NewServeMux()
	api.Run(app, mgr)

	server := &http.Server{
		Addr:    config.Cfg.Port,
		Handler: tools.Chain(app),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Printf("Listening on %s\n", config.Cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	// Out-of-band edits to the config file switch the active database.
	g.Go(func() error {
		err := store.Watch(gctx, func(dbPath string) {
			tools.Logger.Info("config file changed", "path", dbPath)
			if err := mgr.Reconnect(gctx); err != nil {
				tools.Logger.Warn("reconnect failed", "path", dbPath, "error", err.Error())
			}
		})
		if err != nil {
			tools.Logger.Warn("config watcher stopped", "error", err.Error())
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutting down server...")

		// Give outstanding requests 10 seconds to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Println("Server stopped")
	return nil
}
