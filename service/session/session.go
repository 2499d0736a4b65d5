package session

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/viant/runcell/internal/idgen"
	"github.com/viant/runcell/model/execution"
	"github.com/viant/runcell/protocol"
)

const defaultReadyTimeout = 5 * time.Second

// plotKeywords trigger GUI event pumping in auto mode.
var plotKeywords = []string{"matplotlib", "pyplot", "pylab", "plt."}

// Session owns one interpreter subprocess plus its readiness state. A
// session is single-use: once its process exits it cannot be restarted, the
// owner creates a fresh one instead.
type Session struct {
	id           string
	interpreter  string
	workDir      string
	pumpMode     PumpMode
	bootstrap    string
	readyTimeout time.Duration
	output       func(text string)

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	decoder   *protocol.Decoder
	ready     bool
	closing   bool
	pending   func(event *execution.Event)
	readyCh   chan struct{}
	readyOnce sync.Once
}

// New creates a session bound to the given interpreter path. The subprocess
// is not spawned until Start.
func New(interpreter string, options ...Option) *Session {
	ret := &Session{
		id:           idgen.New(),
		interpreter:  interpreter,
		pumpMode:     PumpAuto,
		bootstrap:    bootstrapSource,
		readyTimeout: defaultReadyTimeout,
		output:       func(string) {},
		readyCh:      make(chan struct{}),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Interpreter returns the interpreter path the session is bound to.
func (s *Session) Interpreter() string { return s.interpreter }

// Ready reports whether the subprocess reported readiness and is alive.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil && s.ready
}

// Start spawns the interpreter with the bootstrap program passed as inline
// source and waits for the READY sentinel. On timeout or spawn error the
// subprocess is torn down and the failure returned; there is no retry.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return fmt.Errorf("session %v already started", s.id)
	}
	cmd := exec.Command(s.interpreter, "-u", "-c", s.bootstrap)
	cmd.Env = buildEnv(s.interpreter, s.pumpMode)
	cmd.Dir = s.workDir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to start interpreter %v: %w", s.interpreter, err)
	}
	s.cmd = cmd
	s.stdin = stdin
	s.decoder = protocol.NewDecoder(&streamHandler{session: s})
	decoder := s.decoder
	s.mu.Unlock()

	go func() {
		_, _ = io.Copy(decoder, stdout)
	}()
	go func() {
		_, _ = io.Copy(sinkWriter(s.output), stderr)
	}()
	go s.waitForExit(cmd)

	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		_ = s.Close()
		return ctx.Err()
	case <-time.After(s.readyTimeout):
		_ = s.Close()
		return fmt.Errorf("interpreter %v did not report readiness within %s", s.interpreter, s.readyTimeout)
	}
}

// Submit writes one encoded command line and registers a single-shot
// callback the decoded event layer invokes exactly once. Submission is
// rejected when no session exists, the session is not ready, or another
// command is outstanding - nothing is written to the subprocess then.
func (s *Session) Submit(cmd *execution.Command, callback func(event *execution.Event)) error {
	s.mu.Lock()
	if s.cmd == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	if !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.pending != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	switch s.pumpMode {
	case PumpAuto:
		if !cmd.Pump {
			cmd.Pump = NeedsEventPump(cmd.Source)
		}
	case PumpNever:
		cmd.Pump = false
	}
	data, err := protocol.Encode(cmd)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.pending = callback
	stdin, decoder := s.stdin, s.decoder
	s.mu.Unlock()

	decoder.Await(true)
	if _, err := stdin.Write(data); err != nil {
		decoder.Await(false)
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		return fmt.Errorf("failed to write command %v: %w", cmd.ID, err)
	}
	return nil
}

// Close forcibly terminates the subprocess and clears session state. It is
// a no-op when no subprocess exists.
func (s *Session) Close() error {
	s.mu.Lock()
	cmd, stdin := s.cmd, s.stdin
	if cmd != nil {
		s.closing = true
	}
	s.cmd = nil
	s.stdin = nil
	s.ready = false
	s.pending = nil
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if stdin != nil {
		_ = stdin.Close()
	}
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	return nil
}

// NeedsEventPump reports whether source text references a plotting library.
func NeedsEventPump(source string) bool {
	for _, keyword := range plotKeywords {
		if strings.Contains(source, keyword) {
			return true
		}
	}
	return false
}

// waitForExit observes unsolicited subprocess termination: session state is
// cleared, a diagnostic is appended to the output surface and a pending
// callback, if any, is resolved with a synthetic error event rather than
// left dangling.
func (s *Session) waitForExit(cmd *exec.Cmd) {
	err := cmd.Wait()

	s.mu.Lock()
	closing := s.closing
	callback := s.pending
	s.pending = nil
	s.cmd = nil
	s.stdin = nil
	s.ready = false
	s.mu.Unlock()

	if closing {
		return
	}
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}
	diagnostic := fmt.Sprintf("interpreter exited unexpectedly (exit code %v)\n", exitCode)
	s.output(diagnostic)
	if callback != nil {
		callback(&execution.Event{Kind: execution.EventError, Output: diagnostic})
	}
}

func (s *Session) onReady() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.readyCh) })
}

func (s *Session) onResult(event *execution.Event) {
	s.mu.Lock()
	callback := s.pending
	s.pending = nil
	s.mu.Unlock()
	if callback != nil {
		callback(event)
	}
}

// streamHandler adapts decoder callbacks onto the session.
type streamHandler struct {
	session *Session
}

func (h *streamHandler) OnReady() { h.session.onReady() }

func (h *streamHandler) OnResult(event *execution.Event) { h.session.onResult(event) }

func (h *streamHandler) OnOutput(text string) { h.session.output(text) }

// sinkWriter adapts a text sink to io.Writer for the stderr pump.
type sinkWriter func(text string)

func (w sinkWriter) Write(p []byte) (int, error) {
	w(string(p))
	return len(p), nil
}
