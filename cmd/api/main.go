package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jfoote22/3d-ah-fi-server/internal/adapter/repo"
	"github.com/jfoote22/3d-ah-fi-server/internal/db"
	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
	"github.com/jfoote22/3d-ah-fi-server/internal/http/handlers"
	"github.com/jfoote22/3d-ah-fi-server/internal/http/httpapi"
	"github.com/jfoote22/3d-ah-fi-server/internal/infra"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/bgremoval"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/mesh"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/prompt"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/replicate"
	"github.com/jfoote22/3d-ah-fi-server/internal/storage"
	"github.com/jfoote22/3d-ah-fi-server/internal/workflow"
)

// sessionTTL bounds how long an idle creative session is kept in memory.
const sessionTTL = 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	blobs, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare blob storage")
	}

	// Postgres when configured, local JSON files otherwise.
	var creations domain.CreationRepository
	var prompts domain.PromptRepository
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		creations = repo.NewCreationRepository(pool)
		prompts = repo.NewPromptRepository(pool)
		logger.Info().Msg("using postgres persistence")
	} else {
		local := repo.NewLocalStore(blobs)
		creations = local
		prompts = local.Prompts()
		logger.Warn().Msg("DATABASE_URL not set, using local file persistence")
	}

	app := &handlers.App{
		Config: cfg,
		Logger: logger,
		Images: replicate.NewClient(replicate.Options{
			APIToken:     cfg.ReplicateAPIToken,
			BaseURL:      cfg.ReplicateBaseURL,
			ImageModel:   cfg.ReplicateImageModel,
			Img2ImgModel: cfg.ReplicateImg2Img,
		}),
		Meshes: mesh.NewClient(mesh.Options{
			APIKey:  cfg.MeshAPIKey,
			BaseURL: cfg.MeshBaseURL,
			Model:   cfg.MeshModel,
		}),
		BGRemoval: bgremoval.NewClient(bgremoval.Options{
			APIKey:  cfg.BGRemovalAPIKey,
			BaseURL: cfg.BGRemovalBaseURL,
		}),
		Enhancer: prompt.NewAnthropicEnhancer(prompt.AnthropicOptions{
			APIKey:  cfg.AnthropicAPIKey,
			BaseURL: cfg.AnthropicBaseURL,
			Model:   cfg.AnthropicModel,
		}),
		Creations: creations,
		Prompts:   prompts,
		Blobs:     blobs,
		Sessions:  workflow.NewSessionManager(sessionTTL),
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
