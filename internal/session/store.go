// Package session owns the per-session dataset and model store. The
// analytical engine is stateless; all mutable state lives here, behind a
// repository interface injected into the transport layer.
package session

import (
	"sync"
	"time"

	"olstudio/adapters/stats/regression"
	"olstudio/domain/core"
	"olstudio/domain/dataset"
)

// Store is the keyed repository for raw datasets, cleaned datasets and
// accumulated fitted models. A given session's dataset must not be mutated
// concurrently with a read; implementations serialize access.
type Store interface {
	// CreateSession registers an uploaded dataset and returns its token
	CreateSession(ds dataset.Dataset) core.SessionToken

	// RawDataset returns the dataset as uploaded
	RawDataset(token core.SessionToken) (dataset.Dataset, error)

	// SetCleaned replaces the session's cleaned dataset
	SetCleaned(token core.SessionToken, ds dataset.Dataset) error

	// CleanedDataset returns the cleaned dataset, if cleaning has run
	CleanedDataset(token core.SessionToken) (dataset.Dataset, error)

	// StoreModel adds a fitted model under its name, overwriting any
	// previous model of the same name
	StoreModel(token core.SessionToken, model *regression.Model) error

	// Models returns the session's models in insertion order
	Models(token core.SessionToken) ([]*regression.Model, error)

	// Model returns one model by name
	Model(token core.SessionToken, name core.ModelName) (*regression.Model, error)

	// DeleteSession drops all state for the token; unknown tokens are a no-op
	DeleteSession(token core.SessionToken)
}

type sessionState struct {
	raw        dataset.Dataset
	cleaned    *dataset.Dataset
	models     map[core.ModelName]*regression.Model
	modelOrder []core.ModelName
	lastAccess time.Time
}

// MemoryStore is the in-process Store implementation. Nothing survives a
// restart; persistence is deliberately out of scope.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[core.SessionToken]*sessionState
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[core.SessionToken]*sessionState),
		now:      time.Now,
	}
}

// CreateSession registers an uploaded dataset and returns its token
func (s *MemoryStore) CreateSession(ds dataset.Dataset) core.SessionToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := core.NewSessionToken()
	s.sessions[token] = &sessionState{
		raw:        ds,
		models:     make(map[core.ModelName]*regression.Model),
		lastAccess: s.now(),
	}
	return token
}

// RawDataset returns the dataset as uploaded
func (s *MemoryStore) RawDataset(token core.SessionToken) (dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[token]
	if !ok {
		return dataset.Dataset{}, core.NewSessionNotFoundError(token)
	}
	state.lastAccess = s.now()
	return state.raw, nil
}

// SetCleaned replaces the session's cleaned dataset
func (s *MemoryStore) SetCleaned(token core.SessionToken, ds dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[token]
	if !ok {
		return core.NewSessionNotFoundError(token)
	}
	state.cleaned = &ds
	state.lastAccess = s.now()
	return nil
}

// CleanedDataset returns the cleaned dataset, if cleaning has run
func (s *MemoryStore) CleanedDataset(token core.SessionToken) (dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[token]
	if !ok || state.cleaned == nil {
		return dataset.Dataset{}, core.NewSessionNotFoundError(token)
	}
	state.lastAccess = s.now()
	return *state.cleaned, nil
}

// StoreModel adds a fitted model under its name
func (s *MemoryStore) StoreModel(token core.SessionToken, model *regression.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[token]
	if !ok {
		return core.NewSessionNotFoundError(token)
	}
	name := core.ModelName(model.ModelName)
	if _, exists := state.models[name]; !exists {
		state.modelOrder = append(state.modelOrder, name)
	}
	state.models[name] = model
	state.lastAccess = s.now()
	return nil
}

// Models returns the session's models in insertion order
func (s *MemoryStore) Models(token core.SessionToken) ([]*regression.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[token]
	if !ok {
		return nil, core.NewSessionNotFoundError(token)
	}
	models := make([]*regression.Model, 0, len(state.modelOrder))
	for _, name := range state.modelOrder {
		models = append(models, state.models[name])
	}
	return models, nil
}

// Model returns one model by name
func (s *MemoryStore) Model(token core.SessionToken, name core.ModelName) (*regression.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[token]
	if !ok {
		return nil, core.NewSessionNotFoundError(token)
	}
	model, ok := state.models[name]
	if !ok {
		return nil, core.NewModelNotFoundError(name)
	}
	return model, nil
}

// DeleteSession drops all state for the token
func (s *MemoryStore) DeleteSession(token core.SessionToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// CleanupExpired evicts sessions idle for longer than ttl and returns how
// many were removed.
func (s *MemoryStore) CleanupExpired(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for token, state := range s.sessions {
		if state.lastAccess.Before(cutoff) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
