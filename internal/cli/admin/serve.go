package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/api/handlers"
	"github.com/cloo-solutions/lexcorpus/internal/chunker"
	"github.com/cloo-solutions/lexcorpus/internal/cli"
	"github.com/cloo-solutions/lexcorpus/internal/config"
	"github.com/cloo-solutions/lexcorpus/internal/database"
	"github.com/cloo-solutions/lexcorpus/internal/jobs"
	"github.com/cloo-solutions/lexcorpus/internal/repository"
	"github.com/cloo-solutions/lexcorpus/internal/server"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/spf13/cobra"
)

const indexPollInterval = 10 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and index worker",
		Long: `Starts the lexcorpus retrieval API. With LEXCORPUS_DATABASE_URL set, pending
migrations are applied and the search routes are enabled; with
LEXCORPUS_OPENAI_API_KEY also set, the index worker consumes queued jobs.`,
		RunE: runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (default: LEXCORPUS_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", database.DefaultMigrationsDir, "Directory with SQL migrations")
	cmd.Flags().Bool("local", false, "Serve artifacts from LEXCORPUS_OUTPUT_DIR even when S3 is configured")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	flush := cli.InitTelemetry(cfg)
	defer flush()

	local, _ := cmd.Flags().GetBool("local")
	store, err := cli.OpenArtifactStore(ctx, cfg, cfg.OutputDir, !local)
	if err != nil {
		return err
	}

	routerCfg := server.RouterConfig{
		ChunkHandler:    handlers.NewChunkHandler(chunker.New(chunker.DefaultConfig())),
		ArtifactHandler: handlers.NewArtifactHandler(store),
	}
	if cfg.APIKey != "" {
		routerCfg.AuthValidator = service.NewAuthService(cfg.APIKey)
	} else {
		log.Println("warning: LEXCORPUS_API_KEY is not set, retrieval routes are unauthenticated")
	}

	var embedder service.EmbeddingClient
	if cfg.HasOpenAI() {
		client, err := cli.NewEmbedder(cfg)
		if err != nil {
			return err
		}
		embedder = client
	}

	var indexWorker *jobs.Worker
	if cfg.HasDatabase() {
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		migrationsDir, _ := cmd.Flags().GetString("migrations")

		pool, err := cli.OpenDatabase(ctx, cfg, migrationsDir, noMigrate)
		if err != nil {
			return err
		}
		defer pool.Close()

		chunkRepo := repository.NewChunkRepository(pool)
		routerCfg.SearchHandler = handlers.NewSearchHandler(service.NewSearchService(chunkRepo, embedder))

		if embedder != nil {
			indexSvc := service.NewIndexService(store, embedder, repository.NewTxRunner(pool))
			processor := jobs.NewIndexWorker(repository.NewIndexJobRepository(pool), indexSvc)
			indexWorker = jobs.NewWorker("index", processor, indexPollInterval)
			go indexWorker.Start(ctx)
			log.Println("index worker started")
		} else {
			log.Println("LEXCORPUS_OPENAI_API_KEY not set: semantic search and indexing disabled")
		}
	} else {
		log.Println("LEXCORPUS_DATABASE_URL not set: search routes disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("shutting down...")

	if indexWorker != nil {
		indexWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
