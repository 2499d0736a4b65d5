package protocol

import (
	"strings"
	"sync"

	"github.com/viant/runcell/model/execution"
)

// Handler receives decoded protocol events. OnResult is invoked at most once
// per awaited command; OnOutput carries incidental text that does not belong
// to any pending result (prints between commands, stray output).
type Handler interface {
	OnReady()
	OnResult(event *execution.Event)
	OnOutput(text string)
}

// Decoder turns the interpreter's main-channel byte stream into discrete
// events. It implements io.Writer so the subprocess stdout can be copied
// straight into it. Sentinels may arrive split across chunks; the decoder
// only acts once a complete sentinel substring is buffered.
type Decoder struct {
	handler  Handler
	mu       sync.Mutex
	buf      strings.Builder
	awaiting bool
}

// NewDecoder returns a decoder dispatching to the supplied handler.
func NewDecoder(handler Handler) *Decoder {
	return &Decoder{handler: handler}
}

// Await marks whether a command result is currently expected. While awaiting,
// buffered text is held back as the prospective captured output of the
// pending command; otherwise it is forwarded as incidental output.
func (d *Decoder) Await(on bool) {
	d.mu.Lock()
	d.awaiting = on
	d.mu.Unlock()
}

// Write consumes one chunk of the interpreter output stream.
func (d *Decoder) Write(p []byte) (int, error) {
	d.mu.Lock()
	d.buf.WriteString(string(p))
	var actions []func()
	d.scan(&actions)
	d.mu.Unlock()
	for _, action := range actions {
		action()
	}
	return len(p), nil
}

// scan processes every complete sentinel in the buffer, collecting handler
// invocations to run outside the lock.
func (d *Decoder) scan(actions *[]func()) {
	for {
		data := d.buf.String()
		kind, index := earliestSentinel(data)
		if index < 0 {
			if !d.awaiting {
				d.flushIncidental(data, actions)
			}
			return
		}
		head := data[:index]
		rest := stripLineBreak(data[index+len(sentinelText(kind)):])
		d.buf.Reset()
		d.buf.WriteString(rest)

		switch kind {
		case execution.EventReady:
			d.forward(head, actions)
			handler := d.handler
			*actions = append(*actions, func() { handler.OnReady() })
		case execution.EventSuccess:
			typeName, output := extractType(head)
			d.emit(&execution.Event{Kind: execution.EventSuccess, Output: output, TypeName: typeName}, actions)
		case execution.EventError:
			d.emit(&execution.Event{Kind: execution.EventError, Output: head}, actions)
		}
	}
}

// emit routes a decoded result to the single-shot waiter when one is
// registered; stray results degrade to incidental output.
func (d *Decoder) emit(event *execution.Event, actions *[]func()) {
	handler := d.handler
	if d.awaiting {
		d.awaiting = false
		*actions = append(*actions, func() { handler.OnResult(event) })
		return
	}
	d.forward(event.Output, actions)
}

func (d *Decoder) forward(text string, actions *[]func()) {
	if text == "" {
		return
	}
	handler := d.handler
	*actions = append(*actions, func() { handler.OnOutput(text) })
}

// flushIncidental forwards buffered text while keeping back any trailing
// bytes that may still grow into a sentinel.
func (d *Decoder) flushIncidental(data string, actions *[]func()) {
	hold := holdback(data)
	if hold >= len(data) {
		return
	}
	d.buf.Reset()
	d.buf.WriteString(data[len(data)-hold:])
	d.forward(data[:len(data)-hold], actions)
}

func sentinelText(kind execution.EventKind) string {
	switch kind {
	case execution.EventReady:
		return ReadySentinel
	case execution.EventSuccess:
		return SuccessSentinel
	}
	return ErrorSentinel
}

// earliestSentinel locates the first complete READY/SUCCESS/ERROR sentinel.
func earliestSentinel(data string) (execution.EventKind, int) {
	kind, index := execution.EventKind(""), -1
	for _, candidate := range []struct {
		kind     execution.EventKind
		sentinel string
	}{
		{execution.EventReady, ReadySentinel},
		{execution.EventSuccess, SuccessSentinel},
		{execution.EventError, ErrorSentinel},
	} {
		if i := strings.Index(data, candidate.sentinel); i >= 0 && (index < 0 || i < index) {
			kind, index = candidate.kind, i
		}
	}
	return kind, index
}

// extractType pulls an optional TYPE sentinel out of the captured output.
func extractType(head string) (typeName, output string) {
	match := typeSentinel.FindStringSubmatchIndex(head)
	if match == nil {
		return "", head
	}
	typeName = head[match[2]:match[3]]
	return typeName, head[:match[0]] + head[match[1]:]
}

// stripLineBreak removes the single line break that follows each sentinel.
func stripLineBreak(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	if strings.HasPrefix(s, "\n") {
		return s[1:]
	}
	return s
}

// holdback returns how many trailing bytes must stay buffered because they
// could be the beginning of a sentinel split across chunks.
func holdback(data string) int {
	start := 0
	if max := len(SuccessSentinel) + 64; len(data) > max {
		start = len(data) - max
	}
	for i := start; i < len(data); i++ {
		if data[i] != '<' {
			continue
		}
		if couldStartSentinel(data[i:]) {
			return len(data) - i
		}
	}
	return 0
}

// couldStartSentinel reports whether s is a prefix of some sentinel, or an
// unterminated TYPE sentinel.
func couldStartSentinel(s string) bool {
	for _, sentinel := range []string{ReadySentinel, SuccessSentinel, ErrorSentinel} {
		if strings.HasPrefix(sentinel, s) {
			return true
		}
	}
	if len(s) <= len(typeSentinelPrefix) {
		return strings.HasPrefix(typeSentinelPrefix, s)
	}
	return strings.HasPrefix(s, typeSentinelPrefix) && !strings.Contains(s, sentinelClose)
}
