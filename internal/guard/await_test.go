package guard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

// fakeSource lets a test publish states
type fakeSource struct {
	mu      sync.Mutex
	state   session.State
	changed chan struct{}
}

func newFakeSource(s session.State) *fakeSource {
	return &fakeSource{state: s, changed: make(chan struct{})}
}

func (f *fakeSource) Snapshot() (session.State, <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.changed
}

func (f *fakeSource) publish(s session.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
	close(f.changed)
	f.changed = make(chan struct{})
}

func TestAwait_ReturnsImmediatelyWhenSettled(t *testing.T) {
	src := newFakeSource(session.State{User: userWithRole(models.RoleDonor)})

	d, state := Await(context.Background(), src, Authenticated, time.Hour)
	assert.Equal(t, Allow, d.Kind)
	assert.NotNil(t, state.User)
}

func TestAwait_ReevaluatesOnChange(t *testing.T) {
	src := newFakeSource(session.State{Loading: true})

	go func() {
		time.Sleep(20 * time.Millisecond)
		src.publish(session.State{Loading: true})
		time.Sleep(20 * time.Millisecond)
		src.publish(session.State{User: userWithRole(models.RoleDonor)})
	}()

	d, _ := Await(context.Background(), src, Admin, 2*time.Second)
	assert.Equal(t, Decision{Kind: Redirect, Location: "/"}, d)
}

func TestAwait_GivesUpAfterWait(t *testing.T) {
	src := newFakeSource(session.State{Loading: true})

	start := time.Now()
	d, _ := Await(context.Background(), src, Authenticated, 30*time.Millisecond)

	assert.Equal(t, Pending, d.Kind)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAwait_StopsOnContextCancel(t *testing.T) {
	src := newFakeSource(session.State{Loading: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _ := Await(ctx, src, Authenticated, time.Hour)
	assert.Equal(t, Pending, d.Kind)
}
