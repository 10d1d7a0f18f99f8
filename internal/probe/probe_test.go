package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckDistinguishesOutcomes(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	registry := NewRegistry(map[string]ServiceMeta{
		"transcriber": {Category: "stt", HealthURL: up.URL},
		"broken":      {Category: "stt", HealthURL: down.URL},
		"absent":      {Category: "llm"},
	})

	statuses := NewProber(registry).Check(context.Background())
	require.Equal(t, StatusAvailable, statuses["transcriber"])
	require.Equal(t, StatusUnreachable, statuses["broken"])
	require.Equal(t, StatusUnconfigured, statuses["absent"])
}

func TestCapabilitiesFollowTranscriber(t *testing.T) {
	caps := CapabilitiesFrom(map[string]Status{"transcriber": StatusAvailable})
	require.True(t, caps.LiveCapture)
	require.True(t, caps.RecordCapture)

	caps = CapabilitiesFrom(map[string]Status{"transcriber": StatusUnreachable})
	require.False(t, caps.LiveCapture)
	require.False(t, caps.RecordCapture)

	caps = CapabilitiesFrom(map[string]Status{})
	require.False(t, caps.RecordCapture)
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry(map[string]ServiceMeta{"transcriber": {Category: "stt"}})

	meta, ok := registry.Lookup("transcriber")
	require.True(t, ok)
	require.Equal(t, "stt", meta.Category)

	_, ok = registry.Lookup("unknown")
	require.False(t, ok)
	require.Equal(t, []string{"transcriber"}, registry.Names())
}
