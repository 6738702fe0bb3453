package loop

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
)

// Registry tracks the live sessions of a multi-session host.
type Registry struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	tuning   *config.Tuning // last reloaded tuning, handed to new sessions
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[*Session]struct{})}
}

// Add registers s. If tuning has been reloaded since startup, s gets it too.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s] = struct{}{}
	if r.tuning != nil {
		s.ApplyTuning(*r.tuning)
	}
}

func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ApplyTuning forwards t to every live session and remembers it for new ones.
func (r *Registry) ApplyTuning(t config.Tuning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tuning = &t
	for s := range r.sessions {
		s.ApplyTuning(t)
	}
}

// Shutdown notifies every live session at once and waits for all of them.
func (r *Registry) Shutdown(timeout time.Duration, log *zap.Logger) {
	r.mu.Lock()
	live := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()

	log.Info("notifying players about shutdown", zap.Int("sessions", len(live)))
	var wg sync.WaitGroup
	for _, s := range live {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Shutdown(timeout)
		}()
	}
	wg.Wait()
}
