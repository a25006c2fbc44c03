package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *recorder) record(input string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, input)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fired...)
}

func TestFiresAfterWait(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	d := New(mock, 300*time.Millisecond, rec.record)

	d.Trigger("penny")
	assert.Empty(t, rec.get())

	mock.Add(300 * time.Millisecond)
	assert.Equal(t, []string{"penny"}, rec.get())
}

func TestNewestInputWins(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	d := New(mock, 300*time.Millisecond, rec.record)

	d.Trigger("p")
	mock.Add(100 * time.Millisecond)
	d.Trigger("pe")
	mock.Add(100 * time.Millisecond)
	d.Trigger("penny")

	// The earlier triggers were superseded before their wait elapsed.
	mock.Add(300 * time.Millisecond)
	assert.Equal(t, []string{"penny"}, rec.get())
}

func TestSeparateBurstsFireSeparately(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	d := New(mock, 300*time.Millisecond, rec.record)

	d.Trigger("first")
	mock.Add(300 * time.Millisecond)
	d.Trigger("second")
	mock.Add(300 * time.Millisecond)

	assert.Equal(t, []string{"first", "second"}, rec.get())
}

func TestStopCancelsPendingFire(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	d := New(mock, 300*time.Millisecond, rec.record)

	d.Trigger("penny")
	d.Stop()
	mock.Add(time.Second)
	assert.Empty(t, rec.get())
}

func TestZeroWaitFallsBackToDefault(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	d := New(mock, 0, rec.record)

	d.Trigger("penny")
	mock.Add(DefaultWait)
	assert.Equal(t, []string{"penny"}, rec.get())
}
