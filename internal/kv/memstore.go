package kv

import (
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store. It backs the "memory" driver and the
// package tests; data does not survive a restart.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

// Get returns the value for key, or ErrNotFound.
func (s *MemStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Put stores value under key, overwriting any previous value.
func (s *MemStore) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// PutIfAbsent stores value under key only if the key is unused.
func (s *MemStore) PutIfAbsent(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		return ErrAlreadyExists
	}
	s.data[key] = value
	return nil
}

// Delete removes key, or returns ErrNotFound if it was never stored.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// ScanPrefix returns all entries whose key starts with prefix, in
// ascending key order.
func (s *MemStore) ScanPrefix(prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []Entry
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			entries = append(entries, Entry{Key: k, Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}
