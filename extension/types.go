package extension

import (
	"reflect"
	"strings"

	"github.com/viant/x"
)

// Types registers the Go types adapters accept as configuration payloads.
type Types struct {
	x.Registry
}

// Lookup returns a data type from the registry; a package-qualified name
// falls back to the bare type name when the qualified lookup misses.
func (t *Types) Lookup(dataType string) *x.Type {
	if ret := t.Registry.Lookup(dataType); ret != nil {
		return ret
	}
	if idx := strings.LastIndex(dataType, "."); idx != -1 {
		return t.Registry.Lookup(dataType[idx+1:])
	}
	return nil
}

// RegisterType is a convenience wrapper registering a reflect type under its
// own name.
func (t *Types) RegisterType(rType reflect.Type, options ...x.Option) {
	t.Registry.Register(x.NewType(rType, options...))
}

// NewTypes creates a new types registry.
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{
		Registry: *x.NewRegistry(options...),
	}
}
