package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/coach"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/generate"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/pipeline"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/probe"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/store"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/trace"
)

const (
	// maxUploadBytes caps one recorded take; runs well past the longest
	// plausible rehearsal answer.
	maxUploadBytes = 64 << 20

	// defaultTraceSessionLimit is how many trace sessions are returned
	// when the caller omits the ?limit= query parameter.
	defaultTraceSessionLimit = 20
)

type deps struct {
	transcriber  *pipeline.TranscriberRouter
	llm          *pipeline.AgentLLM
	proxy        *generate.Proxy
	sets         *generate.SetRegistry
	orchestrator *coach.Orchestrator
	repo         store.Repository
	handles      *media.HandleRegistry
	caps         probe.Capabilities
	statuses     map[string]probe.Status
	wsHandler    http.Handler
	traceStore   *trace.Store
}

// registerRoutes wires all HTTP endpoints to the shared mux.
func registerRoutes(mux *http.ServeMux, d deps) {
	mux.Handle("/ws/capture", d.wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("GET /api/capabilities", d.handleCapabilities)
	mux.HandleFunc("POST /api/transcribe", d.handleTranscribe)
	mux.HandleFunc("POST /api/interview/questions", d.handleQuestions)
	mux.HandleFunc("POST /api/interview/questions/skip", d.handleReplacement)
	mux.HandleFunc("POST /api/interview/questions/regenerate", d.handleReplacement)
	mux.HandleFunc("POST /api/presentation/outline", d.handleOutline)
	mux.HandleFunc("POST /api/attempts", d.handleSubmit)
	mux.HandleFunc("GET /api/attempts", d.handleHistory)
	mux.HandleFunc("GET /api/media/{id}", d.handleMedia)
	registerTraceRoutes(mux, d.traceStore)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (d deps) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"capabilities": d.caps,
		"services":     d.statuses,
		"transcribers": d.transcriber.Names(),
		"llm_engines":  d.llm.Engines(),
		"containers":   media.PreferredContainers,
	})
}

// handleTranscribe accepts one multipart media upload (field "file") and
// returns its transcript. ?backend= picks a transcription backend by name.
func (d deps) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	blob, err := readUpload(file, maxUploadBytes)
	if errors.Is(err, errUploadTooLarge) {
		http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	result, err := d.transcriber.Transcribe(r.Context(), blob, header.Filename, contentType, r.URL.Query().Get("backend"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}

func (d deps) handleQuestions(w http.ResponseWriter, r *http.Request) {
	var settings domain.InterviewSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	questions, err := d.proxy.Questions(r.Context(), settings)
	if err != nil {
		writeError(w, err)
		return
	}
	set, err := generate.NewQuestionSet(questions)
	if err != nil {
		writeError(w, domain.E(domain.KindGeneration, "no usable questions", err))
		return
	}
	writeJSON(w, map[string]interface{}{
		"set_id":    d.sets.Put(set),
		"questions": set.All(),
	})
}

// handleReplacement serves both the skip and the regenerate flows: the
// entry at the given index of the named set is swapped for a fresh
// question. On failure the set keeps what it has.
func (d deps) handleReplacement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SetID    string                   `json:"set_id"`
		Index    int                      `json:"index"`
		Settings domain.InterviewSettings `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	set, ok := d.sets.Get(req.SetID)
	if !ok {
		http.Error(w, "unknown question set", http.StatusNotFound)
		return
	}
	previous, err := set.At(req.Index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	question, err := d.proxy.Replacement(r.Context(), req.Settings, previous)
	if err != nil {
		writeError(w, err)
		return
	}
	if err = set.ReplaceAt(req.Index, question); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"question": question})
}

func (d deps) handleOutline(w http.ResponseWriter, r *http.Request) {
	var settings domain.PresentationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	outline, err := d.proxy.Outline(r.Context(), settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"outline": outline})
}

func (d deps) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question        string              `json:"question"`
		Transcript      string              `json:"transcript"`
		DurationSeconds int                 `json:"duration_seconds"`
		MediaRef        string              `json:"media_ref"`
		Mode            domain.PracticeMode `json:"mode"`
		Role            string              `json:"role"`
		Difficulty      string              `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Mode != domain.ModeInterview && req.Mode != domain.ModePresentation {
		http.Error(w, "mode must be interview or presentation", http.StatusBadRequest)
		return
	}

	report, err := d.orchestrator.Submit(r.Context(), coach.Submission{
		Question:        req.Question,
		Transcript:      req.Transcript,
		DurationSeconds: req.DurationSeconds,
		MediaRef:        req.MediaRef,
		Mode:            req.Mode,
		Role:            req.Role,
		Difficulty:      req.Difficulty,
	})
	if err != nil {
		// The attempt was not persisted; nothing to show the caller.
		writeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"attempt":  report.Attempt,
		"degraded": report.Degraded(),
	}
	if report.EvaluationErr != nil {
		resp["evaluation_error"] = report.EvaluationErr.Error()
	}
	if report.AnalysisErr != nil {
		resp["analysis_error"] = report.AnalysisErr.Error()
	}
	writeJSON(w, resp)
}

func (d deps) handleHistory(w http.ResponseWriter, r *http.Request) {
	mode := domain.PracticeMode(r.URL.Query().Get("mode"))
	if mode != domain.ModeInterview && mode != domain.ModePresentation {
		http.Error(w, "mode must be interview or presentation", http.StatusBadRequest)
		return
	}
	attempts, err := d.repo.LoadAll(r.Context(), store.CollectionFor(mode))
	if err != nil {
		slog.Error("load attempts", "mode", mode, "error", err)
		http.Error(w, "load attempts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"attempts": attempts, "total": len(attempts)})
}

// handleMedia streams a recorded take back to the client that made it.
// Handles are in-memory; a released or unknown id is a 404.
func (d deps) handleMedia(w http.ResponseWriter, r *http.Request) {
	blob, contentType, ok := d.handles.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.Write(blob)
}

var errUploadTooLarge = errors.New("upload too large")

// readUpload pulls at most limit bytes; a longer body is rejected rather
// than silently truncated and transcribed as a fragment.
func readUpload(rd io.Reader, limit int64) ([]byte, error) {
	blob, err := io.ReadAll(io.LimitReader(rd, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(blob)) > limit {
		return nil, errUploadTooLarge
	}
	return blob, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses. Upstream service
// failures are gateways errors; everything else is the caller's problem
// or ours.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindBusy, domain.KindSessionActive:
		status = http.StatusConflict
	case domain.KindUnsupported:
		status = http.StatusNotImplemented
	case domain.KindTranscription, domain.KindGeneration, domain.KindEvaluation:
		status = http.StatusBadGateway
	}
	if errors.Is(err, generate.ErrEmptyGeneration) {
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"kind":  string(domain.KindOf(err)),
	})
}

func registerTraceRoutes(mux *http.ServeMux, store *trace.Store) {
	mux.HandleFunc("GET /api/traces/sessions", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "tracing disabled", http.StatusNotFound)
			return
		}
		limit := queryInt(r, "limit", defaultTraceSessionLimit)
		offset := queryInt(r, "offset", 0)
		sessions, total, err := store.ListSessions(limit, offset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"sessions": sessions, "total": total})
	})

	mux.HandleFunc("GET /api/traces/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "tracing disabled", http.StatusNotFound)
			return
		}
		sess, runs, err := store.GetSession(r.PathValue("id"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]interface{}{"session": sess, "runs": runs})
	})

	mux.HandleFunc("GET /api/traces/sessions/{id}/runs/{runId}", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "tracing disabled", http.StatusNotFound)
			return
		}
		run, spans, err := store.GetRun(r.PathValue("id"), r.PathValue("runId"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]interface{}{"run": run, "spans": spans})
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
