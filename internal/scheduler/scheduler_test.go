package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"DROWSY_GUARD/go-monitor/internal/decision"
	"DROWSY_GUARD/go-monitor/internal/models"
	"DROWSY_GUARD/go-monitor/internal/ports"
)

type fakeClip struct {
	onStop func()
}

func (c *fakeClip) Stop() (string, error) {
	if c.onStop != nil {
		c.onStop()
	}
	return "/tmp/clip.mp4", nil
}

type fakeCapture struct {
	mu        sync.Mutex
	failStart bool
	clipOpen  bool
	overlaps  int
	clips     int
}

func (c *fakeCapture) StartClip(ctx context.Context, duration time.Duration) (ports.ClipHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failStart {
		return nil, fmt.Errorf("%w: no camera", models.ErrCaptureFailure)
	}
	if c.clipOpen {
		c.overlaps++
	}
	c.clipOpen = true
	c.clips++
	return &fakeClip{onStop: func() {
		c.mu.Lock()
		c.clipOpen = false
		c.mu.Unlock()
	}}, nil
}

func (c *fakeCapture) CaptureStill(ctx context.Context) ([]byte, error) {
	return []byte("jpeg"), nil
}

func (c *fakeCapture) overlapCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlaps
}

type fakeScorer struct {
	mu    sync.Mutex
	label models.AlertnessLabel
	err   error
}

func (s *fakeScorer) Classify(ctx context.Context, frame []byte, seq int32) (models.FrameClassification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.FrameClassification{}, s.err
	}
	return models.FrameClassification{
		Sequence:   seq,
		Alertness:  s.label,
		Eyes:       models.EyesOpen,
		Yawn:       models.YawnNormal,
		Severity:   s.label.Severity(),
		CapturedAt: time.Now(),
	}, nil
}

func (s *fakeScorer) Ready() bool { return true }

type fakeStore struct {
	mu    sync.Mutex
	saved []models.WindowSummary
}

func (st *fakeStore) SaveWindow(ctx context.Context, window models.CaptureWindow, summary models.WindowSummary, d decision.Decision) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.saved = append(st.saved, summary)
	return nil
}

func (st *fakeStore) savedCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.saved)
}

type fakeSink struct {
	phases  chan models.Phase
	windows chan models.WindowSummary
	alerts  chan float64
	errs    chan models.ErrorCode
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		phases:  make(chan models.Phase, 256),
		windows: make(chan models.WindowSummary, 64),
		alerts:  make(chan float64, 256),
		errs:    make(chan models.ErrorCode, 64),
	}
}

func (f *fakeSink) PhaseChanged(phase models.Phase, cycle int, reason string) {
	select {
	case f.phases <- phase:
	default:
	}
}

func (f *fakeSink) FrameScored(windowID string, fc models.FrameClassification) {}

func (f *fakeSink) WindowAnalyzed(summary models.WindowSummary, d decision.Decision) {
	select {
	case f.windows <- summary:
	default:
	}
}

func (f *fakeSink) AlertRaised(windowID string, severity float64) {
	select {
	case f.alerts <- severity:
	default:
	}
}

func (f *fakeSink) MonitorError(code models.ErrorCode, detail string) {
	select {
	case f.errs <- code:
	default:
	}
}

func (f *fakeSink) waitPhase(t *testing.T, want models.Phase) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-f.phases:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %s", want)
		}
	}
}

func (f *fakeSink) waitWindow(t *testing.T) models.WindowSummary {
	t.Helper()
	select {
	case summary := <-f.windows:
		return summary
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for window summary")
		return models.WindowSummary{}
	}
}

func testConfig() Config {
	return Config{
		RecordDuration: 60 * time.Millisecond,
		BufferDuration: 5 * time.Millisecond,
		DefaultWait:    10 * time.Millisecond,
		SampleInterval: 15 * time.Millisecond,
		Decision: decision.Config{
			SeverityThreshold:   0.6,
			AlertCountThreshold: 3,
			DefaultWaitSeconds:  1,
		},
	}
}

func stopScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	s.Cancel()
	select {
	case <-s.Done():
	case <-time.After(3 * time.Second):
		t.Fatalf("scheduler did not stop after cancel")
	}
}

func TestSchedulerFullCycle(t *testing.T) {
	t.Parallel()

	capture := &fakeCapture{}
	store := &fakeStore{}
	sink := newFakeSink()
	s := New(capture, &fakeScorer{label: models.AlertnessAlert}, store, sink, testConfig())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	sink.waitPhase(t, models.PhaseBuffering)
	sink.waitPhase(t, models.PhaseCapturing)
	sink.waitPhase(t, models.PhaseAnalyzing)

	summary := sink.waitWindow(t)
	if summary.TotalFrames == 0 {
		t.Errorf("expected at least one scored frame")
	}
	if summary.DominantLabel != models.AlertnessAlert {
		t.Errorf("dominant = %s, want Alert", summary.DominantLabel)
	}

	sink.waitPhase(t, models.PhaseWaiting)
	// the loop must come back around on its own
	sink.waitPhase(t, models.PhaseBuffering)

	stopScheduler(t, s)

	if store.savedCount() == 0 {
		t.Errorf("summary was not persisted")
	}
	if s.AlertActive() {
		t.Errorf("alert fired for an all-Alert window")
	}
}

func TestSchedulerEmptyWindowStillAnalyzes(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{err: fmt.Errorf("%w: sidecar gone", models.ErrInference)}
	sink := newFakeSink()
	s := New(&fakeCapture{}, scorer, nil, sink, testConfig())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	summary := sink.waitWindow(t)
	if summary.TotalFrames != 0 {
		t.Errorf("all frames fail, total = %d, want 0", summary.TotalFrames)
	}

	// every dropped frame is reported as an inference error
	select {
	case code := <-sink.errs:
		if code != models.ErrorCodeInference {
			t.Errorf("error code = %s, want inference", code)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("dropped frames were never reported")
	}

	stopScheduler(t, s)
}

func TestSchedulerImmediateFrameAlert(t *testing.T) {
	t.Parallel()

	sink := newFakeSink()
	s := New(&fakeCapture{}, &fakeScorer{label: models.AlertnessVeryDrowsy}, nil, sink, testConfig())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	select {
	case severity := <-sink.alerts:
		if severity <= 0.6 {
			t.Errorf("alert severity = %v, want above threshold", severity)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("immediate alert never fired")
	}

	if !s.AlertActive() {
		t.Fatalf("alert should be latched")
	}

	stopScheduler(t, s)

	s.Acknowledge()
	if s.AlertActive() {
		t.Fatalf("acknowledge should clear the alert")
	}
}

func TestSchedulerCancelDuringCaptureDiscardsWindow(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RecordDuration = 5 * time.Second // cancel lands mid-window
	sink := newFakeSink()
	s := New(&fakeCapture{}, &fakeScorer{label: models.AlertnessAlert}, nil, sink, cfg)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	sink.waitPhase(t, models.PhaseCapturing)
	stopScheduler(t, s)

	if got := s.Phase(); got != models.PhaseCancelled {
		t.Fatalf("phase = %s, want cancelled", got)
	}

	select {
	case summary := <-sink.windows:
		t.Fatalf("cancelled window was analyzed: %+v", summary)
	default:
	}
}

func TestSchedulerCaptureFailureFallsBackToWaiting(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.CaptureFailureLimit = 2
	capture := &fakeCapture{failStart: true}
	sink := newFakeSink()
	s := New(capture, &fakeScorer{label: models.AlertnessAlert}, nil, sink, cfg)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	sink.waitPhase(t, models.PhaseBuffering)
	sink.waitPhase(t, models.PhaseWaiting)
	// loop survives and retries
	sink.waitPhase(t, models.PhaseBuffering)
	sink.waitPhase(t, models.PhaseWaiting)

	select {
	case code := <-sink.errs:
		if code != models.ErrorCodeCapture {
			t.Fatalf("error code = %s, want capture", code)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("repeated capture failures were never reported")
	}

	stopScheduler(t, s)
}

func TestSchedulerStartTwice(t *testing.T) {
	t.Parallel()

	sink := newFakeSink()
	s := New(&fakeCapture{}, &fakeScorer{label: models.AlertnessAlert}, nil, sink, testConfig())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	// the second call must lose even before the loop goroutine has run
	if err := s.Start(context.Background()); !errors.Is(err, models.ErrStateViolation) {
		t.Fatalf("second start: got %v, want state violation", err)
	}

	stopScheduler(t, s)

	// Cancelled is terminal; a fresh scheduler is required
	if err := s.Start(context.Background()); !errors.Is(err, models.ErrStateViolation) {
		t.Fatalf("start after cancel: got %v, want state violation", err)
	}
}

func TestSchedulerNeverOverlapsWindows(t *testing.T) {
	t.Parallel()

	capture := &fakeCapture{}
	sink := newFakeSink()
	s := New(capture, &fakeScorer{label: models.AlertnessAlert}, nil, sink, testConfig())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// let several cycles run
	for i := 0; i < 3; i++ {
		sink.waitWindow(t)
	}
	stopScheduler(t, s)

	if n := capture.overlapCount(); n != 0 {
		t.Fatalf("%d overlapping capture windows observed", n)
	}
}
