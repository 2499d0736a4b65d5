package runcell

import (
	"time"

	"github.com/viant/runcell/extension"
	"github.com/viant/runcell/progress"
	"github.com/viant/runcell/service/event"
	"github.com/viant/runcell/service/meta"
	"github.com/viant/runcell/service/pyenv"
	"github.com/viant/runcell/service/selector"
	"github.com/viant/runcell/service/stream"
	"github.com/viant/runcell/service/surface"
	"github.com/viant/runcell/service/transcript"
	"github.com/viant/runcell/tracing"
)

// Option customises the engine façade.
type Option func(s *Service)

// WithConfig supplies the full configuration; later options may still
// override individual fields.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithSettingsURL loads (and watches, when local) the settings document.
func WithSettingsURL(URL string) Option {
	return func(s *Service) { s.settingsURL = URL }
}

// WithInterpreter sets the interpreter path explicitly, skipping discovery.
func WithInterpreter(path string) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Interpreter = path
	}
}

// WithMetaService sets the meta service
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) { s.metaService = service }
}

// WithMetaBaseURL sets the meta base URL
func WithMetaBaseURL(url string) Option {
	return func(s *Service) { s.metaBaseURL = url }
}

// WithPyenv replaces the interpreter discovery service.
func WithPyenv(service *pyenv.Service) Option {
	return func(s *Service) { s.pyenv = service }
}

// WithRangeOracle installs the language-analysis range oracle; without one
// an indentation-based fallback is used.
func WithRangeOracle(oracle selector.RangeOracle) Option {
	return func(s *Service) { s.oracle = oracle }
}

// WithSymbolOracle installs the analysis readiness gate.
func WithSymbolOracle(oracle selector.SymbolOracle) Option {
	return func(s *Service) { s.symbols = oracle }
}

// WithSurfaces sets the presentation surfaces directly; nil members keep
// their defaults.
func WithSurfaces(marker surface.Marker, output surface.OutputSink, results surface.ResultSink, notifier surface.Notifier) Option {
	return func(s *Service) {
		s.marker = marker
		s.output = output
		s.results = results
		s.notifier = notifier
	}
}

// WithAdapters sets a pre-populated surface adapter registry.
func WithAdapters(adapters *extension.Adapters) Option {
	return func(s *Service) {
		if adapters != nil {
			s.adapters = adapters
		}
	}
}

// WithAdapter selects the registered surface adapter to render through.
func WithAdapter(name string) Option {
	return func(s *Service) { s.adapterName = name }
}

// WithEventService sets the run-event bus.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.events = service }
}

// WithTracker sets the progress tracker.
func WithTracker(tracker *progress.Tracker) Option {
	return func(s *Service) { s.tracker = tracker }
}

// WithTranscript sets the output retention buffer.
func WithTranscript(buffer *transcript.Buffer) Option {
	return func(s *Service) { s.transcript = buffer }
}

// WithStream attaches a WebSocket stream server fed by run events and
// output.
func WithStream(server *stream.Server) Option {
	return func(s *Service) { s.stream = server }
}

// WithTracing configures OpenTelemetry tracing for the engine. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The function is safe to call multiple times; the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

func readyTimeout(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
