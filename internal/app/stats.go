package app

import (
	"fmt"
	"log"
	"time"

	"yaws/internal/config"
	"yaws/internal/profiling"
)

// FrameStats prints the frame rate once per second and logs frames that
// blow the budget.
type FrameStats struct {
	frames    int
	lastCheck time.Time
}

func NewFrameStats() *FrameStats {
	return &FrameStats{lastCheck: time.Now()}
}

// budget is the processing time allowed per frame under the current cap.
func budget(limit int) time.Duration {
	if limit <= 0 {
		return 16 * time.Millisecond
	}
	return time.Second / time.Duration(limit)
}

// Record counts one frame that took processing to produce.
func (s *FrameStats) Record(processing time.Duration) {
	s.frames++
	if time.Since(s.lastCheck) >= time.Second {
		fmt.Println("FPS: ", s.frames)
		s.frames = 0
		s.lastCheck = time.Now()
	}

	if target := budget(config.GetFPSLimit()); processing > target {
		log.Printf("Slow frame: %v (target %v). Top tasks: %s", processing, target, profiling.TopN(5))
	}
}
