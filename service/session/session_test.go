package session

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/runcell/model/execution"
)

// The tests drive the session against /bin/sh standing in for the
// interpreter; sh accepts the same -u -c invocation shape.
const shell = "/bin/sh"

const echoBootstrap = `printf '<<<READY>>>\n'
while IFS= read -r line; do
  printf 'ok\n<<<SUCCESS>>>\n'
done`

const slowBootstrap = `printf '<<<READY>>>\n'
while IFS= read -r line; do
  sleep 1
  printf '<<<SUCCESS>>>\n'
done`

const crashBootstrap = `printf '<<<READY>>>\n'
IFS= read -r line
exit 3`

func requireShell(t *testing.T) {
	if _, err := os.Stat(shell); err != nil {
		t.Skipf("shell %v not available", shell)
	}
}

func startSession(t *testing.T, bootstrap string, options ...Option) *Session {
	t.Helper()
	requireShell(t)
	options = append([]Option{WithBootstrap(bootstrap), WithPumpMode(PumpNever)}, options...)
	sess := New(shell, options...)
	require.NoError(t, sess.Start(context.Background()))
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func submit(t *testing.T, sess *Session, source string) *execution.Event {
	t.Helper()
	events := make(chan *execution.Event, 1)
	err := sess.Submit(execution.NewCommand(source, "test.py", 1), func(event *execution.Event) {
		events <- event
	})
	require.NoError(t, err)
	select {
	case event := <-events:
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSession_RoundTrip(t *testing.T) {
	sess := startSession(t, echoBootstrap)
	require.True(t, sess.Ready())

	event := submit(t, sess, "print('hi')")
	assert.Equal(t, execution.EventSuccess, event.Kind)
	assert.Equal(t, "ok\n", event.Output)
}

// Issuing a second command while one is outstanding yields ErrBusy and the
// first command still resolves exactly once.
func TestSession_SerializationInvariant(t *testing.T) {
	sess := startSession(t, slowBootstrap)

	var calls int
	var mu sync.Mutex
	done := make(chan struct{})
	err := sess.Submit(execution.NewCommand("first", "test.py", 1), func(event *execution.Event) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(done)
	})
	require.NoError(t, err)

	err = sess.Submit(execution.NewCommand("second", "test.py", 1), func(*execution.Event) {})
	assert.ErrorIs(t, err, ErrBusy)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first command never resolved")
	}
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestSession_StartupTimeout(t *testing.T) {
	requireShell(t)
	sess := New(shell,
		WithBootstrap("sleep 5"),
		WithReadyTimeout(200*time.Millisecond))
	err := sess.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "readiness")

	// No command may be dispatched without an explicit retry.
	err = sess.Submit(execution.NewCommand("x", "test.py", 1), func(*execution.Event) {})
	assert.ErrorIs(t, err, ErrNoSession)
}

// Unsolicited subprocess death clears state, surfaces a diagnostic and
// resolves the pending callback with a synthetic error event.
func TestSession_UnsolicitedExit(t *testing.T) {
	requireShell(t)
	var mu sync.Mutex
	var captured strings.Builder
	sess := New(shell,
		WithBootstrap(crashBootstrap),
		WithPumpMode(PumpNever),
		WithOutput(func(text string) {
			mu.Lock()
			captured.WriteString(text)
			mu.Unlock()
		}))
	require.NoError(t, sess.Start(context.Background()))
	t.Cleanup(func() { _ = sess.Close() })

	events := make(chan *execution.Event, 1)
	err := sess.Submit(execution.NewCommand("boom", "test.py", 1), func(event *execution.Event) {
		events <- event
	})
	require.NoError(t, err)

	select {
	case event := <-events:
		assert.Equal(t, execution.EventError, event.Kind)
		assert.Contains(t, event.Output, "exit code 3")
	case <-time.After(5 * time.Second):
		t.Fatal("pending callback was never resolved")
	}
	assert.False(t, sess.Ready())
	mu.Lock()
	assert.Contains(t, captured.String(), "exited unexpectedly")
	mu.Unlock()
}

func TestSession_SubmitWithoutStart(t *testing.T) {
	sess := New(shell)
	err := sess.Submit(execution.NewCommand("x", "test.py", 1), func(*execution.Event) {})
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, sess.Close())
}

func TestSession_CloseTwice(t *testing.T) {
	sess := startSession(t, echoBootstrap)
	assert.NoError(t, sess.Close())
	assert.NoError(t, sess.Close())
}

func TestNeedsEventPump(t *testing.T) {
	assert.True(t, NeedsEventPump("import matplotlib.pyplot as plt"))
	assert.True(t, NeedsEventPump("plt.show()"))
	assert.False(t, NeedsEventPump("print('hello')"))
}

func TestBuildEnv(t *testing.T) {
	env := buildEnv("/opt/py/bin/python3", PumpAlways)
	var path, encoding, pump string
	for _, entry := range env {
		switch {
		case strings.HasPrefix(strings.ToUpper(entry), "PATH="):
			path = entry
		case strings.HasPrefix(entry, "PYTHONIOENCODING="):
			encoding = entry
		case strings.HasPrefix(entry, pumpEnvKey+"="):
			pump = entry
		}
	}
	assert.Contains(t, path, "/opt/py/bin")
	assert.Equal(t, "PYTHONIOENCODING=utf-8", encoding)
	assert.Equal(t, pumpEnvKey+"=always", pump)
}
