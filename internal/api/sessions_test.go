package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/employee-registry-backend/internal/form"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSessions(ttl time.Duration, maxForms int) (*formSessions, *fakeClock) {
	v := validation.New()
	fs := newFormSessions(func() *form.Form { return form.New(v) }, ttl, maxForms)
	clock := &fakeClock{t: fixedNow}
	fs.now = clock.now
	return fs, clock
}

func TestFormSessions_IdleSessionsExpire(t *testing.T) {
	fs, clock := newTestSessions(time.Minute, 100)

	idle, _ := fs.create()
	active, _ := fs.create()

	clock.advance(45 * time.Second)
	_, ok := fs.get(active)
	require.True(t, ok)

	clock.advance(30 * time.Second)
	_, ok = fs.get(idle)
	assert.False(t, ok, "idle past the TTL")
	_, ok = fs.get(active)
	assert.True(t, ok, "touched within the TTL")
}

func TestFormSessions_CreateSweepsExpired(t *testing.T) {
	fs, clock := newTestSessions(time.Minute, 100)

	for i := 0; i < 5; i++ {
		fs.create()
	}
	require.Equal(t, 5, fs.len())

	clock.advance(2 * time.Minute)
	fs.create()
	assert.Equal(t, 1, fs.len())
}

func TestFormSessions_CapEvictsLeastRecentlyUsed(t *testing.T) {
	fs, clock := newTestSessions(time.Hour, 2)

	first, _ := fs.create()
	clock.advance(time.Second)
	second, _ := fs.create()
	clock.advance(time.Second)
	_, ok := fs.get(first)
	require.True(t, ok)

	clock.advance(time.Second)
	third, _ := fs.create()

	assert.Equal(t, 2, fs.len())
	_, ok = fs.get(second)
	assert.False(t, ok)
	_, ok = fs.get(first)
	assert.True(t, ok)
	_, ok = fs.get(third)
	assert.True(t, ok)
}

func TestFormSessions_Defaults(t *testing.T) {
	fs := newFormSessions(func() *form.Form { return nil }, 0, 0)
	assert.Equal(t, defaultFormIdleTTL, fs.idleTTL)
	assert.Equal(t, defaultMaxForms, fs.maxForms)
}
