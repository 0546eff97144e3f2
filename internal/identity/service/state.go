package service

import (
	"fmt"
	"sync"
	"time"

	"bitid/internal/identity/models"
)

// serialized guards the directory and session pointer. The HTTP server is
// concurrent, so unlike the single-tab original every mutation runs under
// one lock and commits only after the store write succeeded.
type serialized struct {
	mu      sync.RWMutex
	users   []*models.User
	current string
	lastID  int64
}

func (s *serialized) init(users []*models.User, current string) {
	s.users = users
	s.current = current
}

func (s *serialized) lock()    { s.mu.Lock() }
func (s *serialized) unlock()  { s.mu.Unlock() }
func (s *serialized) rlock()   { s.mu.RLock() }
func (s *serialized) runlock() { s.mu.RUnlock() }

// snapshot copies the slice header so a mutation can build the next
// collection without aliasing the committed one. The records themselves
// are shared; mutations replace records, never edit them in place.
func (s *serialized) snapshot() []*models.User {
	return append([]*models.User(nil), s.users...)
}

func (s *serialized) snapshotDeep() []*models.User {
	out := make([]*models.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

func (s *serialized) commit(users []*models.User, current string) {
	s.users = users
	s.current = current
}

// nextID synthesizes a time-based opaque id. Millisecond collisions within
// one process bump monotonically so two records created in the same tick
// still get distinct ids.
func (s *serialized) nextID(prefix string, now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return fmt.Sprintf("%s_%d", prefix, ms)
}
