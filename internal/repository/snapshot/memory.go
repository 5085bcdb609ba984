package snapshot

import (
	"context"
	"sync"
)

// Memory keeps the snapshot in process. Useful for tests and throwaway runs.
type Memory struct {
	mu      sync.Mutex
	payload []byte
	saves   int
	failure error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.payload == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), m.payload...), nil
}

func (m *Memory) Save(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return m.failure
	}
	m.payload = append([]byte(nil), payload...)
	m.saves++
	return nil
}

// FailWith makes every following Save return err; nil restores normal saves.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
