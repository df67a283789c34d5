package conversation

import (
	"errors"
	"sync"
	"time"

	"proconnect/backend/internal/ttlstore"
)

// SessionTimeout is the inactivity window after which a session is logically
// absent.
const SessionTimeout = 30 * time.Minute

// ErrNoActiveConversation is returned by Update when the user has no live
// session. Callers must treat an expired session exactly like one that never
// started.
var ErrNoActiveConversation = errors.New("no active conversation")

// ProfileDraft accumulates validated profile fields across steps. It is only
// turned into a directory update at the confirm step. Empty optional fields
// mean "skipped".
type ProfileDraft struct {
	Name        string
	Title       string
	Description string
	Github      string
	Linkedin    string
	Website     string
	WorldID     string
}

// Fields returns the draft as a partial-update map for the directory.
func (d *ProfileDraft) Fields() map[string]any {
	return map[string]any{
		"name":        d.Name,
		"title":       d.Title,
		"description": d.Description,
		"github":      d.Github,
		"linkedin":    d.Linkedin,
		"website":     d.Website,
		"world_id":    d.WorldID,
	}
}

// Session is the per-user conversational state. At most one exists per user.
type Session struct {
	UserID       uint
	Step         Step
	Draft        ProfileDraft
	Filters      []string
	CreatedAt    time.Time
	LastActivity time.Time
}

// SessionStore keeps sessions on the shared TTL substrate, keyed by user id.
// Every update re-inserts the session so the TTL tracks last activity. The
// store-level mutex serializes read-modify-write cycles on the same user.
type SessionStore struct {
	mu    sync.Mutex
	store *ttlstore.Store[uint, Session]

	now func() time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		store: ttlstore.New[uint, Session](),
		now:   time.Now,
	}
}

// Start creates a session for userID at the given step, silently replacing
// any existing one (last writer wins).
func (s *SessionStore) Start(userID uint, step Step) Session {
	now := s.now()
	session := Session{
		UserID:       userID,
		Step:         step,
		CreatedAt:    now,
		LastActivity: now,
	}
	s.store.Set(userID, session, SessionTimeout)
	return session
}

// Get returns the live session for userID. Expired sessions are absent.
func (s *SessionStore) Get(userID uint) (Session, bool) {
	return s.store.Get(userID)
}

// Active reports whether userID has a live session.
func (s *SessionStore) Active(userID uint) bool {
	return s.store.Has(userID)
}

// Update replaces the session's step and applies mutate to it, refreshing the
// inactivity window. Returns ErrNoActiveConversation when no live session
// exists.
func (s *SessionStore) Update(userID uint, step Step, mutate func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.store.Get(userID)
	if !ok {
		return Session{}, ErrNoActiveConversation
	}

	session.Step = step
	if mutate != nil {
		mutate(&session)
	}
	session.LastActivity = s.now()
	s.store.Set(userID, session, SessionTimeout)
	return session, nil
}

// End removes the session and reports whether one existed.
func (s *SessionStore) End(userID uint) bool {
	return s.store.Delete(userID)
}

// Sweep removes expired sessions and returns how many were reaped.
func (s *SessionStore) Sweep() int {
	return s.store.Sweep()
}
