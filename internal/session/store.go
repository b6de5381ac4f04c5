package session

import (
	"errors"
	"sync"
	"time"

	"github.com/talkincode/storebuilder/internal/annotation"
	"github.com/talkincode/storebuilder/internal/cart"
	"github.com/talkincode/storebuilder/internal/upload"
	"github.com/talkincode/storebuilder/internal/wizard"
)

var ErrNotFound = errors.New("session: not found")

// Options configure the engines of a new session.
type Options struct {
	Onboarding    *wizard.Flow
	Milestones    []annotation.Milestone
	AnnotationCap int
	// Attachment tags every new comment; empty leaves comments untagged.
	Attachment string
	NextID     func() int64
}

// Store holds live sessions keyed by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

func NewStore(opts Options) *Store {
	return &Store{sessions: make(map[string]*Session), opts: opts}
}

func (st *Store) newSession(id string) *Session {
	now := time.Now()
	board := annotation.NewBoard(string(PageHome), st.opts.NextID,
		annotation.WithCap(st.opts.AnnotationCap), annotation.WithAttachment(st.opts.Attachment))
	s := &Session{
		ID:         id,
		Onboarding: wizard.NewRun(st.opts.Onboarding),
		Board:      board,
		Milestones: annotation.NewTracker(st.opts.Milestones),
		Cart:       cart.New(),
		Upload:     upload.NewForm(),
		page:       PageHome,
		device:     DeviceDesktop,
		created:    now,
		lastSeen:   now,
	}
	return s
}

// Get returns a live session.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// GetOrCreate returns the session for id, creating it on first use.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if s, err := st.Get(id); err == nil {
		return s, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s, false
	}
	s = st.newSession(id)
	st.sessions[id] = s
	return s, true
}

// Delete drops a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns their ids.
func (st *Store) Sweep(now time.Time, ttl time.Duration) []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	var expired []string
	for id, s := range st.sessions {
		if now.Sub(s.LastSeen()) > ttl {
			expired = append(expired, id)
			delete(st.sessions, id)
		}
	}
	return expired
}
