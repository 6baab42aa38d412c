package memory

import (
	"context"
	"sync"
	"time"

	"github.com/phenrril/sheetstore/internal/domain"
)

type entry struct {
	state   domain.NavState
	touched time.Time
}

// SessionRepo es el store por defecto: un mapa por proceso con vencimiento por inactividad.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]entry
	idle     time.Duration
	now      func() time.Time
}

var _ domain.SessionStore = (*SessionRepo)(nil)

func NewSessionRepo(idle time.Duration) *SessionRepo {
	return &SessionRepo{sessions: make(map[string]entry), idle: idle, now: time.Now}
}

func (r *SessionRepo) Get(_ context.Context, id string) (*domain.NavState, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || r.expired(e) {
		return nil, domain.ErrNotFound
	}
	st := clone(e.state)
	return &st, nil
}

func (r *SessionRepo) Save(_ context.Context, id string, st *domain.NavState) error {
	if st == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = entry{state: clone(*st), touched: r.now()}
	return nil
}

func (r *SessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Purge descarta las sesiones vencidas y devuelve cuántas borró.
func (r *SessionRepo) Purge(_ context.Context, _ time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.sessions {
		if r.expired(e) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *SessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *SessionRepo) expired(e entry) bool {
	return r.idle > 0 && r.now().Sub(e.touched) > r.idle
}

func clone(st domain.NavState) domain.NavState {
	if st.Selected != nil {
		p := *st.Selected
		st.Selected = &p
	}
	if st.Flash != nil {
		f := *st.Flash
		st.Flash = &f
	}
	return st
}
