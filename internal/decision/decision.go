// Package decision turns window summaries and per-frame severities into
// alert triggers and the wait before the next capture cycle.
package decision

import "DROWSY_GUARD/go-monitor/internal/models"

// WaitSchedule maps the dominant label of a window to the wait before the
// next capture cycle, in seconds. Labels missing from the map fall back to
// the configured default wait.
type WaitSchedule map[models.AlertnessLabel]int

// GraduatedSchedule recaptures quickly after drowsy windows and backs off
// after alert ones.
func GraduatedSchedule() WaitSchedule {
	return WaitSchedule{
		models.AlertnessVeryDrowsy:  5,
		models.AlertnessLowVigilant: 10,
		models.AlertnessAlert:       30,
	}
}

type Config struct {
	// SeverityThreshold arms the immediate per-frame trigger; a single
	// frame scoring above it fires an alert before the window closes.
	SeverityThreshold float64
	// AlertCountThreshold arms the window trigger; strictly more Very
	// Drowsy frames than this fires an alert when the window closes.
	AlertCountThreshold int
	// DefaultWaitSeconds is the fallback wait between cycles.
	DefaultWaitSeconds int
	// Schedule, when set, sizes the wait from the window's dominant label.
	Schedule WaitSchedule
}

type Decision struct {
	AlertFired      bool   `json:"alert_fired"`
	NextWaitSeconds int    `json:"next_wait_seconds"`
	Reason          string `json:"reason,omitempty"`
}

// Evaluate decides the end-of-window alert and the next wait. It is total:
// any summary yields a decision, the conservative default being no alert
// with the fallback wait.
func Evaluate(summary models.WindowSummary, cfg Config) Decision {
	d := Decision{NextWaitSeconds: cfg.DefaultWaitSeconds}
	if d.NextWaitSeconds <= 0 {
		d.NextWaitSeconds = 10
	}

	if cfg.Schedule != nil {
		if wait, ok := cfg.Schedule[summary.DominantLabel]; ok && wait > 0 {
			d.NextWaitSeconds = wait
		}
	}

	if summary.Counts[models.AlertnessVeryDrowsy] > cfg.AlertCountThreshold {
		d.AlertFired = true
		d.Reason = "very_drowsy_count"
	}

	return d
}

// FrameAlert reports whether a single classification trips the immediate
// trigger. Independent of Evaluate: either may fire on its own.
func FrameAlert(fc models.FrameClassification, cfg Config) bool {
	return fc.Severity > cfg.SeverityThreshold
}
