package services

import (
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	framesScored    atomic.Int64
	inferenceErrors atomic.Int64
	captureFailures atomic.Int64
	windowsAnalyzed atomic.Int64
	alertsFired     atomic.Int64
	totalLatency    atomic.Int64
	lastFrameTime   atomic.Int64

	wsConnections atomic.Int64
	wsMessages    atomic.Int64
	wsErrors      atomic.Int64
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

func NewMetrics() *Metrics {
	return &Metrics{}
}

func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = NewMetrics()
	})
	return metricsInstance
}

func (m *Metrics) IncrementFrames() {
	m.framesScored.Add(1)
	m.lastFrameTime.Store(time.Now().Unix())
}

func (m *Metrics) IncrementInferenceErrors() {
	m.inferenceErrors.Add(1)
}

func (m *Metrics) IncrementCaptureFailures() {
	m.captureFailures.Add(1)
}

func (m *Metrics) IncrementWindows() {
	m.windowsAnalyzed.Add(1)
}

func (m *Metrics) IncrementAlerts() {
	m.alertsFired.Add(1)
}

func (m *Metrics) RecordLatency(duration time.Duration) {
	m.totalLatency.Add(duration.Milliseconds())
}

func (m *Metrics) GetTotalFrames() int64 {
	return m.framesScored.Load()
}

func (m *Metrics) GetInferenceErrors() int64 {
	return m.inferenceErrors.Load()
}

func (m *Metrics) GetCaptureFailures() int64 {
	return m.captureFailures.Load()
}

func (m *Metrics) GetWindowsAnalyzed() int64 {
	return m.windowsAnalyzed.Load()
}

func (m *Metrics) GetAlertsFired() int64 {
	return m.alertsFired.Load()
}

func (m *Metrics) GetAvgLatency() float64 {
	frames := m.framesScored.Load()
	if frames == 0 {
		return 0
	}
	return float64(m.totalLatency.Load()) / float64(frames)
}

func (m *Metrics) GetLastFrameTime() int64 {
	return m.lastFrameTime.Load()
}

func (m *Metrics) IncrementWebSocketConnections() {
	m.wsConnections.Add(1)
}

func (m *Metrics) DecrementWebSocketConnections() {
	m.wsConnections.Add(-1)
}

func (m *Metrics) GetWebSocketConnections() int64 {
	return m.wsConnections.Load()
}

func (m *Metrics) IncrementWebSocketMessages() {
	m.wsMessages.Add(1)
}

func (m *Metrics) IncrementWebSocketErrors() {
	m.wsErrors.Add(1)
}

// Snapshot returns all counters for the /api/metrics handler.
func (m *Metrics) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"frames_scored":    m.framesScored.Load(),
		"inference_errors": m.inferenceErrors.Load(),
		"capture_failures": m.captureFailures.Load(),
		"windows_analyzed": m.windowsAnalyzed.Load(),
		"alerts_fired":     m.alertsFired.Load(),
		"avg_latency_ms":   m.GetAvgLatency(),
		"last_frame_time":  m.lastFrameTime.Load(),
		"ws_connections":   m.wsConnections.Load(),
		"ws_messages":      m.wsMessages.Load(),
		"ws_errors":        m.wsErrors.Load(),
	}
}
