// Command supportd runs the Aven support agent: a RAG query service that
// answers support questions over a chat endpoint and a voice tool-call
// webhook.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avenhq/support-agent/internal/config"
	"github.com/avenhq/support-agent/internal/llm"
	"github.com/avenhq/support-agent/internal/llm/anthropic"
	"github.com/avenhq/support-agent/internal/llm/openai"
	"github.com/avenhq/support-agent/internal/observability"
	"github.com/avenhq/support-agent/internal/rag"
	"github.com/avenhq/support-agent/internal/server"
	"github.com/avenhq/support-agent/internal/vector"
	"github.com/avenhq/support-agent/internal/vector/pinecone"
	"github.com/avenhq/support-agent/internal/vector/qdrant"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "supportd",
		Short: "Aven AI support agent",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/supportd.yaml", "Config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(configPath, strings.Join(args, " "))
		},
	}

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List known LLM provider presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Known LLM providers:")
			fmt.Println()
			for name, url := range llm.KnownProviders {
				fmt.Printf("  %-10s %s\n", name, url)
			}
			fmt.Println("  custom     (set base_url to any OpenAI-compatible endpoint)")
			fmt.Println()
			fmt.Println("Configure in supportd.yaml or via environment:")
			fmt.Println("  AVEN_LLM_PROVIDER=openai")
			fmt.Println("  AVEN_LLM_API_KEY=sk-...")
			fmt.Println("  AVEN_LLM_MODEL=gpt-5.2")
		},
	}

	rootCmd.AddCommand(serveCmd, askCmd, providersCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracing, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:  "aven-support-agent",
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			slog.Error("tracing shutdown failed", "error", err)
		}
	}()

	pipeline, index, provider, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer index.Close()

	metrics := observability.NewMetrics()
	srv := server.New(pipeline, metrics, server.Config{
		VoicePublicKey:   cfg.Voice.PublicKey,
		VoiceAssistantID: cfg.Voice.AssistantID,
		WebhookSecret:    cfg.Voice.WebhookSecret,
	})
	srv.RegisterCheck("llm", server.LLMHealthChecker(provider.Name(), nil))
	srv.RegisterCheck("vector", server.VectorHealthChecker(func(ctx context.Context) error {
		// A zero-vector probe with topK 1 exercises connectivity without
		// depending on index contents.
		_, err := index.Search(ctx, make([]float32, 1), 1)
		return err
	}))

	slog.Info("support agent configured",
		"llm_provider", provider.Name(),
		"vector_provider", cfg.Vector.Provider,
		"top_k", cfg.Vector.TopK)

	return srv.Run(ctx, cfg.Server.Addr)
}

func runAsk(configPath, question string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	pipeline, index, _, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer index.Close()

	answer, err := pipeline.Answer(ctx, question)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

// buildPipeline wires the LLM provider and vector index into a pipeline.
// All client handles are constructed here, once, and injected.
func buildPipeline(ctx context.Context, cfg *config.Config) (*rag.Pipeline, vector.Repository, llm.Provider, error) {
	factory := llm.NewFactory()
	factory.Register("anthropic", func(c llm.ProviderConfig) (llm.Provider, error) {
		return anthropic.New(c.APIKey, c.Model, c.BaseURL), nil
	})
	factory.Register("openai", func(c llm.ProviderConfig) (llm.Provider, error) {
		return openai.New(c.APIKey, c.Model, c.BaseURL, c.EmbedModel), nil
	})
	for _, p := range []struct{ name, url string }{
		{"groq", llm.KnownProviders["groq"]},
		{"ollama", llm.KnownProviders["ollama"]},
		{"together", llm.KnownProviders["together"]},
		{"deepseek", llm.KnownProviders["deepseek"]},
		{"custom", ""},
	} {
		factory.Register(p.name, func(c llm.ProviderConfig) (llm.Provider, error) {
			base := c.BaseURL
			if base == "" {
				base = p.url
			}
			return openai.New(c.APIKey, c.Model, base, c.EmbedModel), nil
		})
	}

	provider, err := factory.Create(llm.ProviderConfig{
		Provider:          cfg.LLM.Provider,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		BaseURL:           cfg.LLM.BaseURL,
		EmbedModel:        cfg.LLM.EmbedModel,
		Timeout:           cfg.LLM.Timeout,
		MaxRetries:        cfg.LLM.MaxRetries,
		RetryDelay:        cfg.LLM.RetryDelay,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("llm provider: %w", err)
	}

	vectors := vector.NewFactory()
	vectors.Register("qdrant", func(ctx context.Context, c vector.Config) (vector.Repository, error) {
		return qdrant.New(ctx, c.Host, c.Port, c.Index)
	})
	vectors.Register("pinecone", func(ctx context.Context, c vector.Config) (vector.Repository, error) {
		return pinecone.New(c.Host, c.APIKey)
	})

	index, err := vectors.Create(ctx, vector.Config{
		Provider: cfg.Vector.Provider,
		Host:     cfg.Vector.Host,
		Port:     cfg.Vector.Port,
		Index:    cfg.Vector.Index,
		APIKey:   cfg.Vector.APIKey,
		TopK:     cfg.Vector.TopK,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("vector index: %w", err)
	}

	pipeline := rag.New(provider, index, rag.Config{
		TopK:        cfg.Vector.TopK,
		Temperature: cfg.LLM.Temperature,
	})
	return pipeline, index, provider, nil
}

func setupLogging(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
