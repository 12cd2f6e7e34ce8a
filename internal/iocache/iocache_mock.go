package iocache

import (
	"time"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetCacheStore implements the StoreManager interface.
func (m *MockStoreManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetHistoryStore implements the StoreManager interface.
func (m *MockStoreManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	args := m.Called(startTime, configParams)
	return args.String(0), args.Error(1)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID string, endTime time.Time, totalSegments int) error {
	args := m.Called(runID, endTime, totalSegments)
	return args.Error(0)
}

// RecordSegments implements the HistoryStore interface.
func (m *MockHistoryStore) RecordSegments(runID string, segments []schema.ScoredSegment) error {
	args := m.Called(runID, segments)
	return args.Error(0)
}

// RecordPath implements the HistoryStore interface.
func (m *MockHistoryStore) RecordPath(runID string, report schema.RouteReport) error {
	args := m.Called(runID, report)
	return args.Error(0)
}

// ListRuns implements the HistoryStore interface.
func (m *MockHistoryStore) ListRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	records, _ := args.Get(0).([]schema.RunRecord)
	return records, args.Error(1)
}

// ListSegmentScores implements the HistoryStore interface.
func (m *MockHistoryStore) ListSegmentScores(runID string) ([]schema.SegmentScoreRecord, error) {
	args := m.Called(runID)
	records, _ := args.Get(0).([]schema.SegmentScoreRecord)
	return records, args.Error(1)
}

// ListPaths implements the HistoryStore interface.
func (m *MockHistoryStore) ListPaths(runID string) ([]schema.PathRecord, error) {
	args := m.Called(runID)
	records, _ := args.Get(0).([]schema.PathRecord)
	return records, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}
