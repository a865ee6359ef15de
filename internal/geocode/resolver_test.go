package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/utils"
)

func newTestResolver(serverURL string) *Resolver {
	cfg := &config.Config{
		GeocodeURL:        serverURL,
		GeocodeUserAgent:  "fleet-tracker-test/1.0",
		GeocodeTimeout:    2 * time.Second,
		GeocodeMaxRetries: 3,
		GeocodeRetryDelay: 2 * time.Second,
	}
	resolver := NewResolver(cfg, utils.NewLogger("error", ""))
	resolver.sleep = func(time.Duration) {} // no real waiting in tests
	return resolver
}

func TestResolver(t *testing.T) {
	t.Run("Resolves district and state", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("format") != "json" {
				t.Errorf("Expected format=json, got %q", r.URL.Query().Get("format"))
			}
			if r.Header.Get("User-Agent") != "fleet-tracker-test/1.0" {
				t.Errorf("Missing expected User-Agent, got %q", r.Header.Get("User-Agent"))
			}
			w.Write([]byte(`{"address": {"state_district": "Pune District", "state": "Maharashtra"}}`))
		}))
		defer server.Close()

		result := newTestResolver(server.URL).Resolve(context.Background(), 18.5, 73.8)
		if result.District != "Pune" {
			t.Errorf("Expected district 'Pune' with suffix stripped, got %q", result.District)
		}
		if result.State != "Maharashtra" {
			t.Errorf("Expected state 'Maharashtra', got %q", result.State)
		}
	})

	t.Run("Missing address fields degrade per field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"address": {}}`))
		}))
		defer server.Close()

		result := newTestResolver(server.URL).Resolve(context.Background(), 5.0, 60.0)
		if result.District != UnknownDistrict {
			t.Errorf("Expected %q, got %q", UnknownDistrict, result.District)
		}
		if result.State != OutOfRegion {
			t.Errorf("Expected %q, got %q", OutOfRegion, result.State)
		}
	})

	t.Run("Transport failure returns sentinels after maxRetries attempts", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		resolver := newTestResolver(server.URL)
		sleeps := 0
		resolver.sleep = func(time.Duration) { sleeps++ }

		result := resolver.Resolve(context.Background(), 20.0, 80.0)
		if attempts != 3 {
			t.Errorf("Expected exactly 3 attempts, got %d", attempts)
		}
		if sleeps != 2 {
			t.Errorf("Expected 2 inter-attempt delays, got %d", sleeps)
		}
		if result.District != UnknownDistrict || result.State != UnknownState {
			t.Errorf("Expected sentinel pair, got %+v", result)
		}
	})

	t.Run("Malformed payload counts as failed attempt", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 2 {
				w.Write([]byte(`not json`))
				return
			}
			w.Write([]byte(`{"address": {"state_district": "Jaipur", "state": "Rajasthan"}}`))
		}))
		defer server.Close()

		result := newTestResolver(server.URL).Resolve(context.Background(), 26.9, 75.8)
		if attempts != 2 {
			t.Errorf("Expected recovery on second attempt, got %d attempts", attempts)
		}
		if result.District != "Jaipur" || result.State != "Rajasthan" {
			t.Errorf("Expected resolved result after retry, got %+v", result)
		}
	})

	t.Run("Unreachable server never panics", func(t *testing.T) {
		resolver := newTestResolver("http://127.0.0.1:1")
		result := resolver.Resolve(context.Background(), 20.0, 80.0)
		if result.District != UnknownDistrict || result.State != UnknownState {
			t.Errorf("Expected sentinel pair, got %+v", result)
		}
	})
}
