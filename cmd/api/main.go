package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/permitpro/permitpro/internal/application"
	appanalyses "github.com/permitpro/permitpro/internal/application/analyses"
	"github.com/permitpro/permitpro/internal/config"
	domai "github.com/permitpro/permitpro/internal/domain/ai"
	"github.com/permitpro/permitpro/internal/domain/analysis"
	"github.com/permitpro/permitpro/internal/domain/rules"
	"github.com/permitpro/permitpro/internal/domain/uploads"
	aimock "github.com/permitpro/permitpro/internal/infra/ai/mock"
	aiopenai "github.com/permitpro/permitpro/internal/infra/ai/openai"
	mysqldb "github.com/permitpro/permitpro/internal/infra/db/mysql"
	postgresdb "github.com/permitpro/permitpro/internal/infra/db/postgres"
	"github.com/permitpro/permitpro/internal/infra/httpserver"
	minioStore "github.com/permitpro/permitpro/internal/infra/storage"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	db, analysisRepo, uploadRepo, err := connectDB(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer db.Close()

	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	extractor, interpreter := buildEngines(cfg, store)

	svc := appanalyses.NewService(
		analysisRepo,
		uploadRepo,
		extractor,
		interpreter,
		rules.Residential(),
		application.SystemClock{},
		cfg.AI.Mode,
	)

	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, uploadRepo))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s [ai mode=%s]", addr, cfg.AI.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, analysis.Repository, uploads.Repository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, mysqldb.NewAnalysisRepository(db), mysqldb.NewUploadRepository(db), nil
	case "postgres":
		db, err := postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, postgresdb.NewAnalysisRepository(db), postgresdb.NewUploadRepository(db), nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// buildEngines selects the stage implementations once, at construction.
// Live mode without credentials still builds; the engines surface
// ErrNotConfigured per run instead of silently degrading to mock.
func buildEngines(cfg *config.Config, store *minioStore.Store) (domai.Extractor, domai.Interpreter) {
	if cfg.AI.Mode == config.ModeLive {
		return aiopenai.NewExtractor(cfg.AI.OpenAIKey, cfg.AI.ExtractModel, store),
			aiopenai.NewInterpreter(cfg.AI.OpenAIKey, cfg.AI.InterpretModel)
	}
	return aimock.NewExtractor(), aimock.NewInterpreter()
}
