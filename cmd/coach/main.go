package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/openai/openai-go/v2/packages/param"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/coach"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/generate"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/pipeline"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/probe"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/store"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/trace"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/ws"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env")
	}

	cfg := loadConfig()
	if cfg.openaiAPIKey == "" && cfg.compatURL == "" {
		slog.Error("no language model configured: set OPENAI_API_KEY or COMPAT_LLM_URL")
		os.Exit(1)
	}

	// Capability probe. The outcome holds for the process lifetime: a
	// transcription backend that is down at startup disables capture
	// rather than failing sessions one by one.
	registry := probe.NewRegistry(map[string]probe.ServiceMeta{
		"transcriber": {Category: "stt", HealthURL: healthURL(cfg.whisperURL)},
	})
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	statuses := probe.NewProber(registry).Check(probeCtx)
	probeCancel()
	caps := probe.CapabilitiesFrom(statuses)
	slog.Info("capabilities probed", "statuses", statuses, "live", caps.LiveCapture, "record", caps.RecordCapture)

	// Transcription backends
	transcriberBackends := map[string]pipeline.Transcriber{}
	if cfg.whisperURL != "" {
		whisper := pipeline.NewTranscriptionClient(cfg.whisperURL, cfg.transcribeAPIKey, cfg.transcribePoolSize)
		transcriberBackends["whisper"] = whisper
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := whisper.Warmup(ctx); err != nil {
				slog.Warn("transcriber warmup", "error", err)
			}
		}()
	}
	transcriberRouter := pipeline.NewTranscriberRouter(transcriberBackends, "whisper")

	// LLM backends
	llm := pipeline.NewAgentLLM(cfg.llmEngine, cfg.llmMaxTokens)
	if cfg.openaiAPIKey != "" {
		llm.Register("openai", agents.NewOpenAIProvider(agents.OpenAIProviderParams{
			APIKey:  param.NewOpt(cfg.openaiAPIKey),
			BaseURL: optStr(cfg.openaiBaseURL),
		}), cfg.llmModel)
	}
	if cfg.compatURL != "" {
		llm.RegisterRaw("compat", pipeline.NewOpenAIChatClient(cfg.openaiAPIKey, cfg.compatURL, cfg.compatModel, cfg.llmMaxTokens, cfg.llmPoolSize), cfg.compatModel)
	}

	proxy := generate.NewProxy(llm, cfg.llmModel, cfg.llmEngine)
	evaluator := coach.NewEvaluator(llm, cfg.llmModel, cfg.llmEngine)

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		slog.Error("open attempt store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	var traceStore *trace.Store
	if cfg.traceDB != "" {
		traceStore, err = trace.Open(cfg.traceDB)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
			traceStore = nil
		} else {
			defer traceStore.Close()
		}
	}

	// One trace session spans all submissions of a process; each answer
	// becomes a run inside it.
	submitSession := uuid.NewString()
	if traceStore != nil {
		if err = traceStore.CreateSession(submitSession, "submissions"); err != nil {
			slog.Warn("trace session create", "error", err)
		}
		defer traceStore.EndSession(submitSession)
	}
	tracer := trace.NewTracer(traceStore, submitSession)
	defer tracer.Close()

	orchestrator := coach.NewOrchestrator(evaluator, repo, tracer)

	handles := media.NewHandleRegistry()
	wsHandler := ws.NewHandler(ws.HandlerConfig{
		Transcriber:   transcriberRouter.Default(),
		Handles:       handles,
		Endpoint:      cfg.endpoint,
		Capabilities:  caps,
		MaxConcurrent: cfg.maxConcurrentCaptures,
		TraceStore:    traceStore,
	})

	mux := http.NewServeMux()
	registerRoutes(mux, deps{
		transcriber:  transcriberRouter,
		llm:          llm,
		proxy:        proxy,
		sets:         generate.NewSetRegistry(),
		orchestrator: orchestrator,
		repo:         repo,
		handles:      handles,
		caps:         caps,
		statuses:     statuses,
		wsHandler:    wsHandler,
		traceStore:   traceStore,
	})

	addr := ":" + cfg.port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	slog.Info("coach starting", "addr", addr, "max_concurrent", cfg.maxConcurrentCaptures, "engines", llm.Engines())

	if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("coach stopped")
}

func openRepository(cfg config) (store.Repository, func(), error) {
	switch cfg.storeDriver {
	case "sqlite":
		repo, err := store.OpenSQLite(cfg.storePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("attempt store", "driver", "sqlite", "path", cfg.storePath)
		return repo, func() { repo.Close() }, nil
	default:
		slog.Info("attempt store", "driver", "memory")
		return store.NewMemoryRepository(), func() {}, nil
	}
}

func healthURL(base string) string {
	if base == "" {
		return ""
	}
	return base + "/health"
}

func optStr(v string) param.Opt[string] {
	if v == "" {
		return param.Opt[string]{}
	}
	return param.NewOpt(v)
}
