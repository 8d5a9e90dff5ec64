package app

import (
	"log"
	"sync"

	"yaws/internal/config"
)

// Target is what a reload is applied to.
type Target interface {
	Apply(s config.Settings) error
}

// Reloader hands settings from the config watcher to the render loop. Only
// the newest pending settings are kept.
type Reloader struct {
	mu      sync.Mutex
	pending *config.Settings
}

func NewReloader() *Reloader { return &Reloader{} }

// Offer queues s; safe to call from any goroutine.
func (r *Reloader) Offer(s config.Settings) {
	r.mu.Lock()
	r.pending = &s
	r.mu.Unlock()
}

// Apply installs the pending settings, if any, on t and the global config.
// Call it between frames. Invalid settings are logged and dropped; the
// returned error comes from t.
func (r *Reloader) Apply(t Target) (bool, error) {
	if r == nil {
		return false, nil
	}
	r.mu.Lock()
	s := r.pending
	r.pending = nil
	r.mu.Unlock()
	if s == nil {
		return false, nil
	}

	if err := config.Set(*s); err != nil {
		log.Printf("config reload rejected: %v", err)
		return false, nil
	}
	if err := t.Apply(*s); err != nil {
		return false, err
	}
	log.Printf("config reloaded: %dx%d, fps limit %d", s.Width, s.Height, s.FPSLimit)
	return true, nil
}
