package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"recommender/internal/config"
	"recommender/internal/domain"
	"recommender/internal/embedding/hashing"
	"recommender/internal/embedding/openai"
	"recommender/internal/engine/elastic"
	"recommender/internal/engine/memory"
	"recommender/internal/httpapi"
	"recommender/internal/service"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var reset bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/recommender/config.yaml if not provided)")
	flag.BoolVar(&reset, "reset", false, "Destroy and recreate both indices before serving")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	emb, err := buildEmbedder(ctx, cfg)
	if err != nil {
		log.Error("embedder init failed", "error", err)
		os.Exit(1)
	}
	store, err := buildStore(cfg)
	if err != nil {
		log.Error("engine init failed", "error", err)
		os.Exit(1)
	}

	svc := service.New(emb, store, log)
	if reset {
		err = svc.Reset(ctx)
	} else {
		err = svc.EnsureIndices(ctx)
	}
	if err != nil {
		// A schema conflict here means the stored indices disagree with the
		// live model; serving would fail every write.
		log.Error("index initialization failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpapi.NewRouter(svc, log),
	}

	go func() {
		log.Info("listening", "addr", cfg.Server.Addr, "embedder", emb.Name(), "engine", cfg.Engine.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("stopped")
}

func buildEmbedder(ctx context.Context, cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "hashing", "":
		dims := 0
		if cfg.Embedder.Hashing != nil {
			dims = cfg.Embedder.Hashing.Dimensions
		}
		return hashing.NewEmbedder(dims), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, errors.New("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		// Pins the model's dimensionality before the schemas are declared.
		if err := client.Warmup(ctx); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, errors.New("unknown embedder: " + cfg.Embedder.Type)
	}
}

func buildStore(cfg *config.AppConfig) (domain.DocumentStore, error) {
	switch cfg.Engine.Type {
	case "memory", "":
		return memory.NewStore(), nil
	case "elastic":
		if cfg.Engine.Elastic == nil {
			return nil, errors.New("elastic engine config missing")
		}
		return elastic.NewStore(elastic.Config{
			URL:      cfg.Engine.Elastic.URL,
			Username: cfg.Engine.Elastic.Username,
			Password: cfg.Engine.Elastic.Password,
			APIKey:   cfg.Engine.Elastic.APIKey,
			Timeout:  time.Duration(cfg.Engine.Elastic.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, errors.New("unknown engine: " + cfg.Engine.Type)
	}
}
