package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGroup returns the scripted Consume results in order, then blocks until
// the context ends.
type fakeGroup struct {
	mu      sync.Mutex
	results []error
	calls   int
	closed  bool
	errs    chan error
}

func newFakeGroup(results ...error) *fakeGroup {
	return &fakeGroup{results: results, errs: make(chan error)}
}

func (g *fakeGroup) Consume(ctx context.Context, _ []string, _ sarama.ConsumerGroupHandler) error {
	g.mu.Lock()
	i := g.calls
	g.calls++
	g.mu.Unlock()

	if i < len(g.results) {
		return g.results[i]
	}
	<-ctx.Done()
	return ctx.Err()
}

func (g *fakeGroup) Errors() <-chan error { return g.errs }

func (g *fakeGroup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.closed = true
		close(g.errs)
	}
	return nil
}

func (g *fakeGroup) Pause(map[string][]int32)  {}
func (g *fakeGroup) Resume(map[string][]int32) {}
func (g *fakeGroup) PauseAll()                 {}
func (g *fakeGroup) ResumeAll()                {}

func (g *fakeGroup) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func testRunner(g *fakeGroup) *Runner {
	r := newRunner("broker-1:9092, broker-2:9092,", "group", "topic", &handler{}, zerolog.Nop())
	r.minBackoff = time.Millisecond
	r.maxBackoff = 4 * time.Millisecond
	r.newGroup = func(brokers []string, groupID string, _ *sarama.Config) (sarama.ConsumerGroup, error) {
		return g, nil
	}
	return r
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers(" a:9092 ,b:9092,,"))
	assert.Nil(t, splitBrokers(""))
}

func TestRunner_RetriesUntilCancelled(t *testing.T) {
	g := newFakeGroup(errors.New("broker down"), errors.New("broker down"), nil)
	r := testRunner(g)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, r.brokers)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return g.Calls() >= 4 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}
	assert.True(t, g.closed)
}

func TestRunner_StopsWhenGroupClosed(t *testing.T) {
	g := newFakeGroup(sarama.ErrClosedConsumerGroup)

	require.NoError(t, testRunner(g).Start(context.Background()))
	assert.Equal(t, 1, g.Calls())
}

func TestRunner_CancelDuringBackoff(t *testing.T) {
	g := newFakeGroup(errors.New("broker down"))
	r := testRunner(g)
	r.minBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, r.Start(ctx))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, g.Calls())
}
