// Package probe checks at startup which external capabilities are
// actually available, so unsupported capture strategies are disabled for
// the whole process lifetime instead of failing mid-session.
package probe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ServiceMeta holds static metadata for a probed backend.
type ServiceMeta struct {
	Category  string // "stt" or "llm"
	HealthURL string // URL to probe for readiness; empty means unconfigured
}

// Registry is the set of backends the gateway may depend on.
type Registry struct {
	services map[string]ServiceMeta
}

// NewRegistry creates a registry from a map of service metadata.
func NewRegistry(services map[string]ServiceMeta) *Registry {
	return &Registry{services: services}
}

// Lookup returns metadata for a service, or false if unknown.
func (r *Registry) Lookup(name string) (ServiceMeta, bool) {
	m, ok := r.services[name]
	return m, ok
}

// Names returns all registered service names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for k := range r.services {
		names = append(names, k)
	}
	return names
}

// Status is the probed availability of one backend.
type Status string

const (
	StatusAvailable    Status = "available"
	StatusUnreachable  Status = "unreachable"
	StatusUnconfigured Status = "unconfigured"
)

// Prober performs the health checks.
type Prober struct {
	registry *Registry
	client   *http.Client
}

// NewProber creates a prober over the registry.
func NewProber(registry *Registry) *Prober {
	return &Prober{
		registry: registry,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Check probes every registered backend once and returns the results.
func (p *Prober) Check(ctx context.Context) map[string]Status {
	out := make(map[string]Status, len(p.registry.services))
	for name, meta := range p.registry.services {
		out[name] = p.checkOne(ctx, name, meta)
	}
	return out
}

func (p *Prober) checkOne(ctx context.Context, name string, meta ServiceMeta) Status {
	if meta.HealthURL == "" {
		return StatusUnconfigured
	}
	req, err := http.NewRequestWithContext(ctx, "GET", meta.HealthURL, nil)
	if err != nil {
		return StatusUnreachable
	}
	resp, err := p.client.Do(req)
	if err != nil {
		slog.Warn("capability probe failed", "service", name, "error", err)
		return StatusUnreachable
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return StatusAvailable
	}
	return StatusUnreachable
}

// Capabilities are the capture features the probed environment supports.
type Capabilities struct {
	LiveCapture   bool `json:"live_capture"`
	RecordCapture bool `json:"record_capture"`
}

// CapabilitiesFrom derives feature availability from probe results. Both
// strategies ride on the transcription backend; live capture additionally
// needs it responsive enough for segment round trips, which the single
// probe also establishes.
func CapabilitiesFrom(statuses map[string]Status) Capabilities {
	stt := statuses["transcriber"] == StatusAvailable
	return Capabilities{
		LiveCapture:   stt,
		RecordCapture: stt,
	}
}
