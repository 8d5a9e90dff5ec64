package app

import (
	"time"

	"yaws/internal/config"
)

// IdleFPS caps the loop while the window is minimized.
const IdleFPS = 30

// FPSLimiter provides high-precision frame rate limiting
type FPSLimiter struct {
	next time.Time
}

// NewFPSLimiter creates a new FPS limiter
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{}
}

// Wait blocks until the next frame should be rendered based on the FPS limit.
// Uses a hybrid sleep/spin approach for better precision on high FPS caps.
func (f *FPSLimiter) Wait(idle bool) {
	f.WaitFor(EffectiveLimit(config.GetFPSLimit(), idle))
}

// EffectiveLimit returns the cap that applies; 0 means uncapped.
func EffectiveLimit(limit int, idle bool) int {
	if idle && (limit <= 0 || limit > IdleFPS) {
		return IdleFPS
	}
	return limit
}

// WaitFor is Wait with an explicit frame cap.
func (f *FPSLimiter) WaitFor(effectiveLimit int) {
	if effectiveLimit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(effectiveLimit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// busy-wait for the final few microseconds
		// yields substantially better precision on high FPS caps
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// If we're significantly late (e.g., hitch), resync to avoid drift
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
