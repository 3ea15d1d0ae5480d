package ports

import (
	"context"
	"time"

	"DROWSY_GUARD/go-monitor/internal/decision"
	"DROWSY_GUARD/go-monitor/internal/models"
)

// ClipHandle is an in-progress camera recording.
type ClipHandle interface {
	// Stop ends the recording and returns a reference to the stored media.
	Stop() (string, error)
}

// CaptureDevice abstracts the forward-facing camera.
type CaptureDevice interface {
	StartClip(ctx context.Context, duration time.Duration) (ClipHandle, error)
	CaptureStill(ctx context.Context) ([]byte, error)
}

// FrameScorer scores one captured still against the pretrained model.
type FrameScorer interface {
	Classify(ctx context.Context, frame []byte, seq int32) (models.FrameClassification, error)
	Ready() bool
}

// SummaryStore persists closed windows. A failing store must never stall
// the capture loop.
type SummaryStore interface {
	SaveWindow(ctx context.Context, window models.CaptureWindow, summary models.WindowSummary, d decision.Decision) error
}

// EventSink emits monitor state/events to the UI surface.
type EventSink interface {
	PhaseChanged(phase models.Phase, cycle int, reason string)
	FrameScored(windowID string, fc models.FrameClassification)
	WindowAnalyzed(summary models.WindowSummary, d decision.Decision)
	AlertRaised(windowID string, severity float64)
	MonitorError(code models.ErrorCode, detail string)
}

// Sinks fans every event out to each member, in order.
type Sinks []EventSink

func (s Sinks) PhaseChanged(phase models.Phase, cycle int, reason string) {
	for _, sink := range s {
		sink.PhaseChanged(phase, cycle, reason)
	}
}

func (s Sinks) FrameScored(windowID string, fc models.FrameClassification) {
	for _, sink := range s {
		sink.FrameScored(windowID, fc)
	}
}

func (s Sinks) WindowAnalyzed(summary models.WindowSummary, d decision.Decision) {
	for _, sink := range s {
		sink.WindowAnalyzed(summary, d)
	}
}

func (s Sinks) AlertRaised(windowID string, severity float64) {
	for _, sink := range s {
		sink.AlertRaised(windowID, severity)
	}
}

func (s Sinks) MonitorError(code models.ErrorCode, detail string) {
	for _, sink := range s {
		sink.MonitorError(code, detail)
	}
}
