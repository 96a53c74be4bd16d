package upload

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is a queue bound to the property its images are for
type Session struct {
	ID         string    `json:"id"`
	PropertyID uint      `json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
	Queue      *Queue    `json:"-"`

	lastUsed time.Time
}

// Sessions keeps upload queues between requests. Idle sessions expire
// after ttl and have their previews released.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (s *Sessions) Create(propertyID uint, q *Queue) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &Session{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		CreatedAt:  now,
		Queue:      q,
		lastUsed:   now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a live session and marks it used
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastUsed = s.now()
	return sess, true
}

// Delete closes and forgets a session
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.Queue.Close()
	}
	return ok
}

// Expire closes every session idle for longer than the ttl
func (s *Sessions) Expire() int {
	s.mu.Lock()
	cutoff := s.now().Add(-s.ttl)
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Queue.Close()
	}
	if len(expired) > 0 {
		log.Printf("[upload] expired %d idle sessions", len(expired))
	}
	return len(expired)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CloseAll releases every session, used on shutdown
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range all {
		sess.Queue.Close()
	}
}
