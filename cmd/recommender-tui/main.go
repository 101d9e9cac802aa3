package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"recommender/internal/config"
	"recommender/internal/demo"
	"recommender/internal/domain"
	"recommender/internal/embedding/hashing"
	"recommender/internal/embedding/openai"
	"recommender/internal/engine/elastic"
	"recommender/internal/engine/memory"
	"recommender/internal/service"
	"recommender/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var seed bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.BoolVar(&seed, "seed", false, "Seed the demo dataset before starting")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	emb, err := buildEmbedder(ctx, cfg)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}
	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}

	// The TUI owns the terminal; keep service logging out of it.
	svc := service.New(emb, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := svc.EnsureIndices(ctx); err != nil {
		log.Fatalf("index initialization failed: %v", err)
	}
	if seed {
		if err := demo.Seed(ctx, svc); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	header := fmt.Sprintf("embedder=%s engine=%s", emb.Name(), cfg.Engine.Type)
	m := tui.New(svc, header)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
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
