package grid

import (
	"sync"
	"time"

	"hatchery-backend/internal/application/hatchcycles"
)

// Workspace is the grid page of one session.
type Workspace struct {
	Sheet  *Sheet
	Editor *Editor

	lastUsed time.Time
}

// Registry holds one workspace per session and forgets idle ones on Sweep.
type Registry struct {
	svc *hatchcycles.Service
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	spaces map[string]*Workspace
}

func NewRegistry(svc *hatchcycles.Service, ttl time.Duration) *Registry {
	return &Registry{svc: svc, ttl: ttl, now: time.Now, spaces: map[string]*Workspace{}}
}

// Open returns the session's workspace, creating an empty one when needed.
func (r *Registry) Open(sessionID, actor string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.spaces[sessionID]
	if !ok {
		sheet := NewSheet(r.svc)
		ws = &Workspace{Sheet: sheet, Editor: NewEditor(sheet, actor)}
		r.spaces[sessionID] = ws
	}
	ws.lastUsed = r.now()
	return ws
}

// Get returns the session's workspace or ErrNoWorkspace.
func (r *Registry) Get(sessionID string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.spaces[sessionID]
	if !ok {
		return nil, ErrNoWorkspace
	}
	ws.lastUsed = r.now()
	return ws, nil
}

// Sweep drops workspaces unused for longer than the idle TTL and returns how many
// it dropped. Background saves of a dropped workspace still complete.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, ws := range r.spaces {
		if now.Sub(ws.lastUsed) > r.ttl {
			delete(r.spaces, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}
