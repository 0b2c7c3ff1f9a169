package driver

import "time"

// Stats is the driver's rolling performance monitor: executed ticks over a
// 1s window, reported as achieved vs. target rate (spec §4.9).
type Stats struct {
	AchievedHz float64
	TargetHz   float64
	Percent    float64
}

// perfMonitor accumulates tick counts over a 1s window.
type perfMonitor struct {
	windowStart time.Time
	ticks       int
	last        Stats
}

func newPerfMonitor(now time.Time) *perfMonitor {
	return &perfMonitor{windowStart: now}
}

// tick records one executed cycle and, once the window has elapsed,
// recomputes last against target.
func (m *perfMonitor) tick(now time.Time, target float64) {
	m.ticks++

	elapsed := now.Sub(m.windowStart)
	if elapsed < time.Second {
		return
	}

	achieved := float64(m.ticks) / elapsed.Seconds()

	percent := 100.0
	if target > 0 {
		percent = 100 * achieved / target
	}

	m.last = Stats{AchievedHz: achieved, TargetHz: target, Percent: percent}
	m.ticks = 0
	m.windowStart = now
}

func (m *perfMonitor) stats() Stats { return m.last }
