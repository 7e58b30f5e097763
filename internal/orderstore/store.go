package orderstore

import (
	"fmt"
	"sync"

	"ordintake/internal/model"
)

// Store keeps processed orders keyed by order ID. Order IDs have minute
// resolution, so Put overwrites: the last result for an ID wins.
type Store interface {
	Put(orderID string, o model.Order) error
	Get(orderID string) (model.Order, bool)
	Range(fn func(orderID string, o model.Order) error) error
}

// InMemoryStore is a simple thread-safe map store.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]model.Order
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]model.Order)}
}

func (s *InMemoryStore) Put(orderID string, o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[orderID] = o
	return nil
}

func (s *InMemoryStore) Get(orderID string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.data[orderID]
	return o, ok
}

func (s *InMemoryStore) Range(fn func(orderID string, o model.Order) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.data {
		if err := fn(k, v); err != nil {
			return fmt.Errorf("range callback failed: %w", err)
		}
	}
	return nil
}
