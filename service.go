package runcell

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/runcell/extension"
	"github.com/viant/runcell/internal/clock"
	"github.com/viant/runcell/policy"
	"github.com/viant/runcell/progress"
	"github.com/viant/runcell/runtime/orchestrator"
	"github.com/viant/runcell/service/event"
	"github.com/viant/runcell/service/meta"
	"github.com/viant/runcell/service/pyenv"
	"github.com/viant/runcell/service/selector"
	"github.com/viant/runcell/service/session"
	"github.com/viant/runcell/service/stream"
	"github.com/viant/runcell/service/surface"
	"github.com/viant/runcell/service/transcript"
	"github.com/viant/runcell/service/watcher"
)

// Service is the engine façade wiring configuration, interpreter discovery,
// block selection and the execution orchestrator together.
type Service struct {
	runtime     *Runtime
	config      *Config
	settingsURL string

	metaService *meta.Service
	metaBaseURL string
	pyenv       *pyenv.Service

	oracle  selector.RangeOracle
	symbols selector.SymbolOracle

	adapters    *extension.Adapters
	adapterName string
	marker      surface.Marker
	output      surface.OutputSink
	results     surface.ResultSink
	notifier    surface.Notifier

	events     *event.Service
	tracker    *progress.Tracker
	transcript *transcript.Buffer
	stream     *stream.Server
	watcher    *watcher.Watcher
}

// New builds the engine. Configuration precedence: explicit options override
// the settings document, which overrides DefaultConfig.
func New(options ...Option) (*Service, error) {
	ret := &Service{runtime: &Runtime{}, adapters: extension.NewAdapters()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(context.Background()); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init(ctx context.Context) error {
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.settingsURL != "" {
		if err := s.metaService.Load(ctx, s.settingsURL, s.config); err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.pyenv == nil {
		s.pyenv = pyenv.New()
	}
	if s.config.Interpreter == "" {
		interpreter, err := s.pyenv.Resolve(ctx, s.config.Host)
		if err != nil {
			return fmt.Errorf("no interpreter configured and discovery failed: %w", err)
		}
		s.config.Interpreter = interpreter
	}
	if s.oracle == nil {
		s.oracle = selector.IndentOracle{}
	}
	if s.events == nil {
		s.events = event.New()
	}
	if s.tracker == nil {
		s.tracker = progress.NewTracker(nil)
	}
	if s.transcript == nil {
		size := s.config.TranscriptSize
		if size == 0 {
			size = DefaultConfig().TranscriptSize
		}
		s.transcript = transcript.NewBuffer(size)
	}
	s.applyAdapter()
	if s.marker == nil {
		s.marker = surface.NewStore()
	}
	if s.output == nil {
		s.output = surface.OutputFunc(func(string) {})
	}
	if s.results == nil {
		s.results = surface.ResultFunc(func(string, string) {})
	}
	if s.notifier == nil {
		s.notifier = surface.NotifyFunc(func(message string) { log.Println(message) })
	}

	s.runtime.orchestrator = orchestrator.New(
		selector.New(s.oracle),
		s.newSession,
		orchestrator.WithInterpreter(s.config.Interpreter),
		orchestrator.WithSymbolOracle(s.symbols),
		orchestrator.WithMarker(s.marker),
		orchestrator.WithOutput(s.output),
		orchestrator.WithResult(s.results),
		orchestrator.WithNotifier(s.notifier),
		orchestrator.WithExpressionChecker(s.pyenv, s.config.Host),
		orchestrator.WithEvents(s.events),
		orchestrator.WithTracker(s.tracker),
		orchestrator.WithTranscript(s.transcript),
		orchestrator.WithPolicy(policy.FromConfig(s.config.Policy)),
		orchestrator.WithCursorAdvance(s.config.cursorAdvance()),
		orchestrator.WithPumpMode(session.PumpMode(s.config.GUIEventPump)),
	)
	s.runtime.tracker = s.tracker
	s.runtime.transcript = s.transcript
	s.runtime.events = s.events

	if s.stream != nil {
		if err := s.stream.Attach(s.events); err != nil {
			return fmt.Errorf("failed to attach stream server: %w", err)
		}
		s.runtime.stream = s.stream
	}
	if err := s.watchSettings(); err != nil {
		return err
	}
	return nil
}

// applyAdapter installs the surfaces of the selected adapter, if any.
func (s *Service) applyAdapter() {
	if s.adapterName == "" {
		return
	}
	adapter := s.adapters.Lookup(s.adapterName)
	if adapter == nil {
		log.Printf("surface adapter %q not registered", s.adapterName)
		return
	}
	if s.marker == nil {
		s.marker = adapter.Marker()
	}
	if s.output == nil {
		s.output = adapter.Output()
	}
	if s.results == nil {
		s.results = adapter.Result()
	}
	if s.notifier == nil {
		s.notifier = adapter.Notifier()
	}
}

// newSession builds an interpreter session forwarding incidental output to
// the output surface, the transcript and any stream clients.
func (s *Service) newSession(interpreter string) orchestrator.Session {
	options := []session.Option{
		session.WithWorkingDir(s.config.WorkingDir),
		session.WithPumpMode(session.PumpMode(s.config.GUIEventPump)),
		session.WithOutput(s.forwardOutput),
	}
	if s.config.ReadyTimeoutMs > 0 {
		options = append(options, session.WithReadyTimeout(readyTimeout(s.config.ReadyTimeoutMs)))
	}
	return session.New(interpreter, options...)
}

func (s *Service) forwardOutput(text string) {
	s.output.Append(text)
	s.transcript.Append("", text)
	if s.stream != nil {
		s.stream.BroadcastOutput(transcript.Entry{Text: text, At: clock.Now()})
	}
}

// watchSettings starts the settings watcher when the settings document lives
// on the local filesystem.
func (s *Service) watchSettings() error {
	if s.settingsURL == "" || strings.Contains(s.settingsURL, "://") {
		return nil
	}
	s.watcher = watcher.New(s.settingsURL, func(path string) {
		s.reloadSettings(context.Background())
	})
	if err := s.watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch settings: %w", err)
	}
	s.runtime.watcher = s.watcher
	return nil
}

// reloadSettings re-reads the settings document; an interpreter path change
// restarts the session on the next run.
func (s *Service) reloadSettings(ctx context.Context) {
	updated := DefaultConfig()
	if err := s.metaService.Load(ctx, s.settingsURL, updated); err != nil {
		log.Printf("failed to reload settings: %v", err)
		return
	}
	if err := updated.Validate(); err != nil {
		log.Printf("ignoring invalid settings: %v", err)
		return
	}
	previous := s.config.Interpreter
	s.config = updated
	if updated.Interpreter != "" && updated.Interpreter != previous {
		s.runtime.orchestrator.SetInterpreter(updated.Interpreter)
		if err := s.runtime.orchestrator.Restart(); err != nil {
			log.Printf("failed to restart session: %v", err)
		}
	}
}

// Runtime exposes the execution entry points.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Adapters returns the surface adapter registry.
func (s *Service) Adapters() *extension.Adapters {
	return s.adapters
}

// Shutdown stops the watcher, closes the session and releases interpreter
// discovery resources.
func (s *Service) Shutdown() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	err := s.runtime.Shutdown()
	if closeErr := s.pyenv.Close(context.Background()); err == nil {
		err = closeErr
	}
	return err
}
