package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/utils"
)

// Sentinel values returned when resolution fails or fields are absent.
const (
	UnknownDistrict = "Unknown District"
	UnknownState    = "Unknown State"
	OutOfRegion     = "Out of India"
)

// Result is a resolved (district, state) pair. It may carry sentinel
// values; callers never need to handle an error.
type Result struct {
	District string `json:"district"`
	State    string `json:"state"`
}

// reverseResponse is the subset of the nominatim payload we read.
type reverseResponse struct {
	Address struct {
		StateDistrict string `json:"state_district"`
		State         string `json:"state"`
	} `json:"address"`
}

// Resolver resolves coordinates to administrative names via an external
// reverse-geocoding service. Each call makes up to MaxRetries attempts
// with a fixed delay between them; exhausting them degrades to sentinels
// instead of failing, so geocoding never blocks persistence. Identical
// coordinates are re-resolved every call; there is no cache.
type Resolver struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)
	logger     *utils.Logger
}

// NewResolver creates a resolver from application config.
func NewResolver(cfg *config.Config, logger *utils.Logger) *Resolver {
	return &Resolver{
		client:     &http.Client{Timeout: cfg.GeocodeTimeout},
		baseURL:    cfg.GeocodeURL,
		userAgent:  cfg.GeocodeUserAgent,
		maxRetries: cfg.GeocodeMaxRetries,
		retryDelay: cfg.GeocodeRetryDelay,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// Resolve reverse-geocodes a coordinate. It always returns a usable
// result and never panics; transport errors, bad statuses and undecodable
// bodies each consume one attempt.
func (r *Resolver) Resolve(ctx context.Context, lat, lng float64) Result {
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		result, err := r.attempt(ctx, lat, lng)
		if err == nil {
			return result
		}

		r.logger.Warnf("Geocoding failed (attempt %d/%d): %v", attempt, r.maxRetries, err)
		if attempt < r.maxRetries {
			r.sleep(r.retryDelay)
		}
	}

	return Result{District: UnknownDistrict, State: UnknownState}
}

func (r *Resolver) attempt(ctx context.Context, lat, lng float64) (Result, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lng))
	query.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}

	district := payload.Address.StateDistrict
	if district == "" {
		district = UnknownDistrict
	} else {
		district = strings.TrimSuffix(district, " District")
	}

	state := payload.Address.State
	if state == "" {
		state = OutOfRegion
	}

	return Result{District: district, State: state}, nil
}
