package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apper-canvas/employee-registry-backend/internal/form"
)

const (
	defaultFormIdleTTL = time.Hour
	defaultMaxForms    = 10000
)

type formSession struct {
	form    *form.Form
	touched time.Time
}

// formSessions keeps in-progress forms between requests. Sessions live in
// process memory only and are dropped on restart. A session idle for longer
// than idleTTL is expired on the next create; at maxForms the least recently
// used session is evicted.
type formSessions struct {
	mu       sync.Mutex
	sessions map[string]*formSession
	newForm  func() *form.Form
	idleTTL  time.Duration
	maxForms int
	now      func() time.Time
}

func newFormSessions(newForm func() *form.Form, idleTTL time.Duration, maxForms int) *formSessions {
	if idleTTL <= 0 {
		idleTTL = defaultFormIdleTTL
	}
	if maxForms <= 0 {
		maxForms = defaultMaxForms
	}

	return &formSessions{
		sessions: make(map[string]*formSession),
		newForm:  newForm,
		idleTTL:  idleTTL,
		maxForms: maxForms,
		now:      time.Now,
	}
}

func (fs *formSessions) create() (string, *form.Form) {
	id := uuid.NewString()
	f := fs.newForm()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	now := fs.now()
	fs.sweep(now)
	if len(fs.sessions) >= fs.maxForms {
		fs.evictOldest()
	}
	fs.sessions[id] = &formSession{form: f, touched: now}

	return id, f
}

func (fs *formSessions) get(id string) (*form.Form, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	s, ok := fs.sessions[id]
	if !ok {
		return nil, false
	}

	now := fs.now()
	if now.Sub(s.touched) > fs.idleTTL {
		delete(fs.sessions, id)
		return nil, false
	}
	s.touched = now

	return s.form, true
}

func (fs *formSessions) remove(id string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.sessions[id]; !ok {
		return false
	}
	delete(fs.sessions, id)
	return true
}

func (fs *formSessions) len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return len(fs.sessions)
}

// sweep drops idle sessions. Callers hold mu.
func (fs *formSessions) sweep(now time.Time) {
	for id, s := range fs.sessions {
		if now.Sub(s.touched) > fs.idleTTL {
			delete(fs.sessions, id)
		}
	}
}

// evictOldest drops the least recently used session. Callers hold mu.
func (fs *formSessions) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, s := range fs.sessions {
		if oldestID == "" || s.touched.Before(oldest) {
			oldestID, oldest = id, s.touched
		}
	}
	delete(fs.sessions, oldestID)
}
