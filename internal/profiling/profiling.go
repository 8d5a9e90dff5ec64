package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Per-frame CPU time buckets. Pass kernels run on worker goroutines, so every
// access goes through mu.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	lastFrame   = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("pass.CloudLighting")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame moves the current totals into the previous-frame snapshot and
// starts a fresh frame. Call once at the top of every frame.
func ResetFrame() {
	mu.Lock()
	lastFrame = frameTotals
	frameTotals = make(map[string]time.Duration, len(lastFrame))
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// LastFrame returns a copy of the totals recorded before the latest ResetFrame.
func LastFrame() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(lastFrame))
	for k, v := range lastFrame {
		out[k] = v
	}
	return out
}

// SumWithPrefix adds up every bucket of the current frame whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for k, v := range frameTotals {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

// TopN formats the n most expensive buckets of the current frame.
// Example: "pass.AtmosphericIntegration:4.2ms, pass.CloudLighting:2.1ms"
func TopN(n int) string {
	return formatTop(Snapshot(), n)
}

func formatTop(totals map[string]time.Duration, n int) string {
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(totals))
	for k, v := range totals {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms", list[i].name, ms))
	}
	return strings.Join(parts, ", ")
}
