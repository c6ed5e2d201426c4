// Package session owns the places search-session token.
package session

import (
	"sync"

	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Generator issues a fresh opaque token.
type Generator func() places.SessionToken

// Manager holds the current session token. Callers read it with Current and
// attach the value to outgoing calls; only Refresh replaces it.
type Manager struct {
	mu       sync.Mutex
	token    places.SessionToken
	generate Generator
	issued   int
}

// Option configures a Manager.
type Option func(*Manager)

// WithGenerator replaces the default UUID generator.
func WithGenerator(g Generator) Option {
	return func(m *Manager) {
		m.generate = g
	}
}

// NewManager returns a Manager with no token yet.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		generate: func() places.SessionToken {
			return places.SessionToken(uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the active token, creating one on first use.
func (m *Manager) Current() places.SessionToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		m.token = m.next()
	}
	return m.token
}

// Refresh discards the active token and returns a new one.
func (m *Manager) Refresh() places.SessionToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = m.next()
	log.Debugf("Session token refreshed (%d issued)", m.issued)
	return m.token
}

// Issued reports how many tokens have been created.
func (m *Manager) Issued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issued
}

func (m *Manager) next() places.SessionToken {
	m.issued++
	return m.generate()
}
