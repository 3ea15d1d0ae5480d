package services

import (
	"time"

	"DROWSY_GUARD/go-monitor/internal/decision"
	"DROWSY_GUARD/go-monitor/internal/models"
)

// MetricsSink feeds monitoring events into the counters served by
// /api/metrics.
type MetricsSink struct {
	m *Metrics
}

func NewMetricsSink(m *Metrics) *MetricsSink {
	return &MetricsSink{m: m}
}

func (s *MetricsSink) PhaseChanged(phase models.Phase, cycle int, reason string) {}

func (s *MetricsSink) FrameScored(windowID string, fc models.FrameClassification) {
	s.m.IncrementFrames()
	if fc.InferenceMs > 0 {
		s.m.RecordLatency(time.Duration(fc.InferenceMs * float64(time.Millisecond)))
	}
}

func (s *MetricsSink) WindowAnalyzed(summary models.WindowSummary, d decision.Decision) {
	s.m.IncrementWindows()
}

func (s *MetricsSink) AlertRaised(windowID string, severity float64) {
	s.m.IncrementAlerts()
}

func (s *MetricsSink) MonitorError(code models.ErrorCode, detail string) {
	switch code {
	case models.ErrorCodeCapture:
		s.m.IncrementCaptureFailures()
	case models.ErrorCodeInference:
		s.m.IncrementInferenceErrors()
	}
}
