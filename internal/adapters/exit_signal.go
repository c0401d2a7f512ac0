package adapters

import (
	"sync"

	"github.com/rs/zerolog/log"

	"livebundle/internal/ports"
)

// ExitSignal records exit requests so the host process can reload once the
// current command returns.
type ExitSignal struct {
	mu      sync.Mutex
	reasons []string
}

func NewExitSignal() *ExitSignal {
	return &ExitSignal{}
}

func (s *ExitSignal) RequestExit(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons = append(s.reasons, reason)
	log.Info().Str("reason", reason).Msg("application exit requested")
}

// Requested reports whether an exit was requested and the first reason.
func (s *ExitSignal) Requested() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reasons) == 0 {
		return false, ""
	}
	return true, s.reasons[0]
}

var _ ports.LifecyclePort = (*ExitSignal)(nil)
