//go:build !windows

package exec

import (
	"bytes"
	"context"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readyWriter closes ready the first time the child writes "ready".
type readyWriter struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	once  sync.Once
	ready chan struct{}
}

func (w *readyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.buf.Write(p)
	if bytes.Contains(w.buf.Bytes(), []byte("ready")) {
		w.once.Do(func() { close(w.ready) })
	}
	return n, err
}

func TestLocalRunner_Run_ForwardsInterruptToChild(t *testing.T) {
	out := &readyWriter{ready: make(chan struct{})}
	r := &LocalRunner{Stdout: out, Stderr: &bytes.Buffer{}}

	go func() {
		select {
		case <-out.ready:
			_ = syscall.Kill(syscall.Getpid(), syscall.SIGINT)
		case <-time.After(5 * time.Second):
		}
	}()

	code, err := r.Run(context.Background(), "sh", "-c", "trap 'exit 42' INT; echo ready; sleep 3 >/dev/null 2>&1 & wait")

	require.NoError(t, err)
	assert.Equal(t, 42, code, "the child's own exit status comes back, and this process survives the interrupt")
}
