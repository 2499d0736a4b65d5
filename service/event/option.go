package event

import (
	"github.com/viant/runcell/service/messaging/memory"
)

type Option func(s *Service)

// WithNewQueueConfig sets the per-queue memory configuration factory
func WithNewQueueConfig(newQueue func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newQueue
	}
}
