package prefetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) Warm(ctx context.Context) error {
	w.calls.Add(1)
	return w.err
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(&countingWarmer{}, 0, time.Second)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPrefetcher_Runs(t *testing.T) {
	w := &countingWarmer{}
	p, err := New(w, 50*time.Millisecond, time.Second)
	require.NoError(t, err)
	require.NotNil(t, p)

	p.Start()
	assert.Eventually(t, func() bool { return w.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, p.Stop())

	// 停止后不再执行
	n := w.calls.Load()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, n, w.calls.Load())
}

func TestPrefetcher_ErrorKeepsRunning(t *testing.T) {
	w := &countingWarmer{err: errors.New("upstream down")}
	p, err := New(w, 30*time.Millisecond, time.Second)
	require.NoError(t, err)

	p.Start()
	defer p.Stop()
	assert.Eventually(t, func() bool { return w.calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}
