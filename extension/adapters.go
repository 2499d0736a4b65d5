package extension

import (
	"sync"

	"github.com/viant/runcell/service/surface"
	"github.com/viant/x"
)

// Adapter bundles the presentation surfaces a host contributes under a
// single name.
type Adapter interface {
	Name() string
	Marker() surface.Marker
	Output() surface.OutputSink
	Result() surface.ResultSink
	Notifier() surface.Notifier
}

// TypesIniter lets an adapter register its config payload types on
// registration.
type TypesIniter interface {
	InitTypes(types *Types)
}

// Adapters provides the adapter registry.
type Adapters struct {
	types    *Types
	adapters map[string]Adapter
	mux      sync.RWMutex
}

func (s *Adapters) Types() *Types {
	return s.types
}

// Lookup returns an adapter by name
func (s *Adapters) Lookup(name string) Adapter {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.adapters[name]
}

// Register registers an adapter
func (s *Adapters) Register(adapter Adapter) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if typer, ok := adapter.(TypesIniter); ok {
		typer.InitTypes(s.types)
	}
	s.adapters[adapter.Name()] = adapter
}

// Names lists registered adapter names.
func (s *Adapters) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	names := make([]string, 0, len(s.adapters))
	for name := range s.adapters {
		names = append(names, name)
	}
	return names
}

// NewAdapters creates a new adapter registry
func NewAdapters(goTypes ...*x.Type) *Adapters {
	ret := &Adapters{
		types:    NewTypes(),
		adapters: make(map[string]Adapter),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
