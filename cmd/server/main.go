package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/UkralStul/blog-posts-service/internal/auth"
	"github.com/UkralStul/blog-posts-service/internal/config"
	"github.com/UkralStul/blog-posts-service/internal/httpapi"
	"github.com/UkralStul/blog-posts-service/internal/posts"
	"github.com/UkralStul/blog-posts-service/internal/storage"
	"github.com/UkralStul/blog-posts-service/internal/storage/inmemory"
	"github.com/UkralStul/blog-posts-service/internal/storage/mongo"
	"github.com/UkralStul/blog-posts-service/internal/storage/postgres"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.String("config", os.Getenv("BLOG_CONFIG"), "path to YAML config file")
	storageKind := pflag.String("storage", "", "storage backend: in-memory, mongo or postgres (overrides config)")
	port := pflag.Int("port", 0, "listen port (overrides config)")
	seed := pflag.Bool("seed", false, "fill in-memory storage with sample posts")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	// Флаги командной строки перекрывают файл и переменные окружения.
	if *storageKind != "" {
		cfg.Storage.Kind = *storageKind
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Log)

	issuer, err := auth.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	// Короткий секрет допустим для разработки, но предупреждаем.
	if len(cfg.Auth.JWTSecret) < auth.MinSecretLength {
		logger.Warn("JWT secret is shorter than recommended", "length", len(cfg.Auth.JWTSecret), "recommended", auth.MinSecretLength)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server", "storage", cfg.Storage.Kind)
	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error("closing storage", "error", err)
		}
	}()

	svc := posts.NewService(store)
	if *seed {
		// Заполним данными для тестов
		if cfg.Storage.Kind != config.StorageInMemory {
			return errors.New("--seed only applies to in-memory storage")
		}
		if err := fillWithMockData(ctx, svc, logger); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           httpapi.NewRouter(svc, issuer, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// Сервер работает в горутине, main ждет сигнала или ошибки.
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

// newLogger создает slog-логгер с уровнем и форматом из конфигурации.
func newLogger(cfg config.LogConfig) *slog.Logger {
	// Уровень уже проверен в Validate.
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openStorage выбирает хранилище по конфигурации. По умолчанию - в памяти.
func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Kind {
	case config.StorageMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := mongo.New(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return store, nil
	case config.StoragePostgres:
		store, err := postgres.New(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store, nil
	default:
		return inmemory.New(), nil
	}
}

// fillWithMockData создает несколько постов от двух авторов для локальной проверки.
func fillWithMockData(ctx context.Context, svc *posts.Service, logger *slog.Logger) error {
	samples := []struct {
		author auth.Identity
		input  posts.CreateInput
	}{
		{
			author: auth.Identity{ID: "user-1", Username: "alice"},
			input: posts.CreateInput{
				Title:    "Getting Started With Go",
				Content:  "A short tour of modules, packages and the toolchain.",
				Category: "golang",
			},
		},
		{
			author: auth.Identity{ID: "user-1", Username: "alice"},
			input: posts.CreateInput{
				Title:    "Context Cancellation In Practice",
				Content:  "Propagating deadlines through HTTP handlers and storage calls.",
				Category: "golang",
			},
		},
		{
			author: auth.Identity{ID: "user-2", Username: "bob"},
			input: posts.CreateInput{
				Title:    "Document Stores For Blogs",
				Category: "databases",
			},
		},
	}

	// Посты создаются через сервис, чтобы slug и автор проставлялись как в API.
	for _, s := range samples {
		post, err := svc.Create(ctx, s.author, s.input)
		if err != nil {
			return fmt.Errorf("fillWithMockData: %w", err)
		}
		logger.Info("seeded post", "id", post.ID, "author", post.Author, "slug", post.Slug)
	}
	return nil
}
