package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lumen-lang/lumen/internal/cache"
	"github.com/lumen-lang/lumen/internal/cli/config"
	"github.com/lumen-lang/lumen/internal/cli/ui"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/playground"
	"github.com/lumen-lang/lumen/internal/web/auth"
	"github.com/lumen-lang/lumen/internal/web/jobs"
	webserver "github.com/lumen-lang/lumen/internal/web/server"
)

var (
	serveJobsDSN  string
	serveAuthOnly bool
	servePprof    bool
	serveWorkers  int
	serveNoColor  bool
)

func init() {
	serveCmd.Flags().StringVar(&serveJobsDSN, "jobs-dsn", "", "Postgres DSN for the async compile job queue (empty disables async compile)")
	serveCmd.Flags().BoolVar(&serveAuthOnly, "require-auth", false, "Require a valid JWT on every request")
	serveCmd.Flags().BoolVar(&servePprof, "pprof", false, "Mount pprof debug endpoints under /debug/pprof (operator use only)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Number of in-process async-compile workers to run alongside the server (0 disables)")
	serveCmd.Flags().BoolVar(&serveNoColor, "no-color", false, "Disable colored output")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Lumen playground HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var cacheClient *cache.Cache
		if cfg.Cache.Enabled {
			cacheClient = cache.New(cfg.Cache.Addr, time.Duration(cfg.Cache.TTL)*time.Second)
		}

		store, err := diagnostics.Open(cfg.Diagnostics.Driver, config.GetDiagnosticsDSN())
		if err != nil {
			return fmt.Errorf("failed to open diagnostics store: %w", err)
		}

		var jobQueue *jobs.Queue
		if serveJobsDSN != "" {
			db, err := sql.Open("pgx", serveJobsDSN)
			if err != nil {
				return fmt.Errorf("failed to connect to jobs database: %w", err)
			}
			defer db.Close()

			migrateErr := ui.WithSpinner(os.Stdout, "running jobs table migration", serveNoColor, func() error {
				return playground.MigrateJobsTable(db)
			})
			if migrateErr != nil {
				return fmt.Errorf("failed to migrate jobs table: %w", migrateErr)
			}
			jobQueue = jobs.NewQueue(db)
		}

		var authService *auth.AuthService
		if serveAuthOnly {
			secret := os.Getenv("LUMEN_JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("LUMEN_JWT_SECRET must be set when --require-auth is used")
			}
			authService = auth.NewAuthService(secret, 24*time.Hour)
		}

		srv := playground.New(store, cacheClient, jobQueue, authService)
		if servePprof {
			srv.EnableProfiling()
		}

		var workerPool *jobs.WorkerPool
		if jobQueue != nil && serveWorkers > 0 {
			workerPool = jobs.NewWorkerPool(jobQueue, "default", serveWorkers)
			workerPool.RegisterHandler("compile.source", srv.CompileJobHandler)
			workerPool.Start(context.Background())
		}

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		httpServer, err := webserver.New(&webserver.Config{
			Address:           addr,
			Handler:           srv,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("failed to configure server: %w", err)
		}

		shutdown := webserver.NewGracefulShutdown(httpServer, nil)
		shutdown.RegisterHook(func(ctx context.Context) error {
			srv.Shutdown()
			if workerPool != nil {
				workerPool.Stop()
			}
			store.Close()
			if cacheClient != nil {
				cacheClient.Close()
			}
			return nil
		})

		fmt.Printf("lumen playground listening on %s\n", addr)
		return shutdown.Start()
	},
}
