package temporal

import (
	"context"
	"sync"
)

// MockStorageService implements StorageService in memory, for tests and
// for running the service without a durable backend
type MockStorageService struct {
	mu    sync.RWMutex
	lines map[string][]string // trackID -> raw NMEA lines
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{
		lines: make(map[string][]string),
	}
}

// AppendSentences appends lines to the mock storage
func (m *MockStorageService) AppendSentences(ctx context.Context, trackID string, lines []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines[trackID] = append(m.lines[trackID], lines...)
	return nil
}

// LoadSentences loads lines from the mock storage
func (m *MockStorageService) LoadSentences(ctx context.Context, trackID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lines, exists := m.lines[trackID]
	if !exists {
		return []string{}, nil
	}

	out := make([]string, len(lines))
	copy(out, lines)
	return out, nil
}

// GetSentenceCount returns the number of stored lines for a track
func (m *MockStorageService) GetSentenceCount(trackID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines[trackID])
}
