package main

import (
	"time"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/env"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
)

type config struct {
	port    string
	traceDB string

	openaiAPIKey  string
	openaiBaseURL string
	llmModel      string
	llmEngine     string
	llmMaxTokens  int
	llmPoolSize   int

	// Optional OpenAI-compatible backend reached over raw HTTP instead of
	// the agents SDK (a local ollama, vLLM, etc).
	compatURL   string
	compatModel string

	whisperURL            string
	transcribeAPIKey      string
	transcribePoolSize    int
	maxConcurrentCaptures int

	endpoint media.EndpointConfig

	storeDriver string
	storePath   string
}

func loadConfig() config {
	endpoint := media.DefaultEndpointConfig()
	endpoint.SpeechThresholdDB = env.Float("ENDPOINT_SPEECH_THRESHOLD_DB", endpoint.SpeechThresholdDB)
	endpoint.SilenceTimeout = time.Duration(env.Int("ENDPOINT_SILENCE_MS", int(endpoint.SilenceTimeout.Milliseconds()))) * time.Millisecond
	endpoint.MinSpeechDuration = time.Duration(env.Int("ENDPOINT_MIN_SPEECH_MS", int(endpoint.MinSpeechDuration.Milliseconds()))) * time.Millisecond

	return config{
		port:    env.Str("COACH_PORT", "8000"),
		traceDB: env.Str("COACH_TRACE_DB", ""),

		openaiAPIKey:  env.Str("OPENAI_API_KEY", ""),
		openaiBaseURL: env.Str("OPENAI_BASE_URL", ""),
		llmModel:      env.Str("COACH_LLM_MODEL", "gpt-4o-mini"),
		llmEngine:     env.Str("COACH_LLM_ENGINE", "openai"),
		llmMaxTokens:  env.Int("LLM_MAX_TOKENS", 1024),
		llmPoolSize:   env.Int("LLM_POOL_SIZE", 50),

		compatURL:   env.Str("COMPAT_LLM_URL", ""),
		compatModel: env.Str("COMPAT_LLM_MODEL", "llama3.2:3b"),

		whisperURL:            env.Str("WHISPER_SERVER_URL", ""),
		transcribeAPIKey:      env.Str("TRANSCRIBE_API_KEY", ""),
		transcribePoolSize:    env.Int("TRANSCRIBE_POOL_SIZE", 50),
		maxConcurrentCaptures: env.Int("MAX_CONCURRENT_CAPTURES", 100),

		endpoint: endpoint,

		storeDriver: env.Str("STORE_DRIVER", "memory"),
		storePath:   env.Str("STORE_PATH", "coach.db"),
	}
}
