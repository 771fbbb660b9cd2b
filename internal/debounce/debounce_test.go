package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) deliver(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, v)
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func TestKeystrokesSettleOnLastValue(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Unix(0, 0))
	rec := &recorder{}
	d := New(clk, 300*time.Millisecond, rec.deliver)

	d.Push("Q")
	clk.Step(100 * time.Millisecond)
	d.Push("Qw")
	clk.Step(150 * time.Millisecond)
	d.Push("Qwe")

	// t=500: 250ms after the last keystroke, nothing delivered yet.
	clk.Step(250 * time.Millisecond)
	assert.Empty(t, rec.values())

	// t=600
	clk.Step(100 * time.Millisecond)
	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"Qwe"}, rec.values())

	_, pending := d.Pending()
	assert.False(t, pending)
	assert.False(t, clk.HasWaiters())
}

func TestSeparatedPushesDeliverEach(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Unix(0, 0))
	rec := &recorder{}
	d := New(clk, 0, rec.deliver)
	assert.Equal(t, DefaultDelay, d.Delay())

	d.Push("a")
	clk.Step(DefaultDelay)
	d.Push("b")
	clk.Step(DefaultDelay)
	assert.Equal(t, []string{"a", "b"}, rec.values())
}

func TestFlushDeliversImmediately(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Unix(0, 0))
	rec := &recorder{}
	d := New(clk, time.Second, rec.deliver)

	assert.False(t, d.Flush())
	d.Push("now")
	v, ok := d.Pending()
	assert.True(t, ok)
	assert.Equal(t, "now", v)

	assert.True(t, d.Flush())
	assert.Equal(t, []string{"now"}, rec.values())

	clk.Step(2 * time.Second)
	assert.Equal(t, []string{"now"}, rec.values(), "flushed value must not be delivered twice")
}

func TestStopDropsPending(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Unix(0, 0))
	rec := &recorder{}
	d := New(clk, 300*time.Millisecond, rec.deliver)

	d.Push("lost")
	d.Stop()
	clk.Step(time.Second)
	d.Push("ignored")
	clk.Step(time.Second)
	assert.Empty(t, rec.values())
	assert.False(t, clk.HasWaiters())
}

func TestCancelDropsPendingButKeepsRunning(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Unix(0, 0))
	rec := &recorder{}
	d := New(clk, 300*time.Millisecond, rec.deliver)

	d.Push("stale")
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel(), "nothing left to drop")
	clk.Step(time.Second)
	assert.Empty(t, rec.values())

	d.Push("fresh")
	clk.Step(time.Second)
	assert.Equal(t, []string{"fresh"}, rec.values())
}

func TestRealClock(t *testing.T) {
	rec := &recorder{}
	d := New[string](nil, 10*time.Millisecond, rec.deliver)
	d.Push("x")
	d.Push("xy")
	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"xy"}, rec.values())
}
