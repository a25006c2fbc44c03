// Package session is the process-wide view-session cache: an explicit,
// clock-injected TTL map replacing ambient module-level session state, so
// eviction is deterministic under test.
package session

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"philately/catalog/internal/view"
)

// Session holds the per-session state the assistant handoff and shared-view
// surfaces need to reproduce a catalog view.
type Session struct {
	ID       string     `json:"id"`
	Query    view.Query `json:"query"`
	LastSeen time.Time  `json:"lastSeen"`
}

// Cache is a TTL-evicting session store keyed by session id.
type Cache struct {
	clk clock.Clock
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewCache(clk clock.Clock, ttl time.Duration) *Cache {
	return &Cache{
		clk:      clk,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session for the given query and returns it.
func (c *Cache) Create(q view.Query) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	s := &Session{
		ID:       uuid.NewString(),
		Query:    q,
		LastSeen: c.clk.Now(),
	}
	c.sessions[s.ID] = s
	return s
}

// Get returns a live session and refreshes its TTL. Expired sessions are
// evicted and reported as absent.
func (c *Cache) Get(id string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[id]
	if !ok {
		return nil, false
	}
	if c.clk.Now().Sub(s.LastSeen) > c.ttl {
		delete(c.sessions, id)
		return nil, false
	}
	s.LastSeen = c.clk.Now()
	return s, true
}

// Update replaces the stored query for a live session.
func (c *Cache) Update(id string, q view.Query) bool {
	s, ok := c.Get(id)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s.Query = q
	return true
}

// Len reports the number of live sessions after sweeping expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	return len(c.sessions)
}

func (c *Cache) sweepLocked() {
	now := c.clk.Now()
	for id, s := range c.sessions {
		if now.Sub(s.LastSeen) > c.ttl {
			delete(c.sessions, id)
		}
	}
}
