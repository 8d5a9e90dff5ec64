package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAndReset(t *testing.T) {
	ResetFrame()
	ResetFrame()

	stop := Track("pass.Geometry")
	time.Sleep(time.Millisecond)
	stop()
	Track("pass.Tonemap")()
	Track("app.Present")()

	snap := Snapshot()
	if snap["pass.Geometry"] < time.Millisecond {
		t.Errorf("expected at least 1ms for pass.Geometry, got %v", snap["pass.Geometry"])
	}
	if got := SumWithPrefix("pass."); got < snap["pass.Geometry"] {
		t.Errorf("SumWithPrefix(pass.) = %v, want >= %v", got, snap["pass.Geometry"])
	}

	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Errorf("expected empty frame after reset, got %v", Snapshot())
	}
	if _, ok := LastFrame()["pass.Geometry"]; !ok {
		t.Errorf("expected pass.Geometry in previous frame totals")
	}
}

func TestFormatTop(t *testing.T) {
	totals := map[string]time.Duration{
		"a": 1 * time.Millisecond,
		"b": 3 * time.Millisecond,
		"c": 2 * time.Millisecond,
	}
	got := formatTop(totals, 2)
	if !strings.HasPrefix(got, "b:3.0ms, c:2.0ms") {
		t.Errorf("unexpected format %q", got)
	}
	if got := formatTop(totals, 10); strings.Count(got, ",") != 2 {
		t.Errorf("expected all three entries, got %q", got)
	}
}
