package provider

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
)

// Ranges of the simulated route answer.
const (
	mockMinDistanceKm = 3.5
	mockMaxDistanceKm = 12.0
	mockMinMinutes    = 10
	mockMaxMinutes    = 45
	mockMidpointShift = 0.001
)

// MockRouteProvider simulates a remote route API with a fixed latency and
// randomized distance and duration.
type MockRouteProvider struct {
	latency time.Duration
	mu      sync.Mutex
	rng     *rand.Rand
}

var _ contract.RouteProvider = &MockRouteProvider{} // Compile-time check

// NewMockRouteProvider creates a mock provider. A zero seed picks a random one.
func NewMockRouteProvider(latency time.Duration, seed int64) *MockRouteProvider {
	s := uint64(seed)
	if seed == 0 {
		s = rand.Uint64()
	}
	return &MockRouteProvider{
		latency: latency,
		rng:     rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
	}
}

// Name implements the RouteProvider interface.
func (p *MockRouteProvider) Name() string {
	return string(schema.MockProvider)
}

// Route waits for the simulated latency and returns a random route summary.
func (p *MockRouteProvider) Route(ctx context.Context, from, to schema.Coordinate) (schema.RouteSummary, error) {
	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return schema.RouteSummary{}, fmt.Errorf("mock route: %w", ctx.Err())
		case <-timer.C:
		}
	}

	p.mu.Lock()
	distance := mockMinDistanceKm + p.rng.Float64()*(mockMaxDistanceKm-mockMinDistanceKm)
	minutes := mockMinMinutes + p.rng.IntN(mockMaxMinutes-mockMinMinutes+1)
	p.mu.Unlock()

	mid := schema.Coordinate{
		Lat: (from.Lat+to.Lat)/2 + mockMidpointShift,
		Lon: (from.Lon+to.Lon)/2 + mockMidpointShift,
	}
	return schema.RouteSummary{
		Provider:        p.Name(),
		DistanceKm:      math.Round(distance*100) / 100,
		DurationMinutes: minutes,
		Geometry:        []schema.Coordinate{from, mid, to},
		StatusMessage:   "Route fetched successfully",
	}, nil
}
