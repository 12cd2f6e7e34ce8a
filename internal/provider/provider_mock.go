package provider

import (
	"context"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/mock"
)

// RouteProviderMock is a testify mock of RouteProvider for testing.
type RouteProviderMock struct {
	mock.Mock
}

var _ contract.RouteProvider = &RouteProviderMock{} // Compile-time check

// Name implements the RouteProvider interface.
func (m *RouteProviderMock) Name() string {
	args := m.Called()
	return args.String(0)
}

// Route implements the RouteProvider interface.
func (m *RouteProviderMock) Route(ctx context.Context, from, to schema.Coordinate) (schema.RouteSummary, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(schema.RouteSummary), args.Error(1)
}
