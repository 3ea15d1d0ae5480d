// Package scheduler drives the duty-cycled capture loop:
// buffer → capture → analyze → wait, repeated until cancelled.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"DROWSY_GUARD/go-monitor/internal/aggregator"
	"DROWSY_GUARD/go-monitor/internal/decision"
	"DROWSY_GUARD/go-monitor/internal/models"
	"DROWSY_GUARD/go-monitor/internal/ports"
)

type Config struct {
	RecordDuration time.Duration
	BufferDuration time.Duration
	DefaultWait    time.Duration
	SampleInterval time.Duration
	Decision       decision.Config
	// CaptureFailureLimit is how many consecutive capture failures are
	// tolerated before the condition is reported to the UI as systemic.
	CaptureFailureLimit int
}

// Scheduler is one capture/alert session. One loop per instance; Cancelled
// is terminal and a fresh Scheduler is needed to monitor again.
type Scheduler struct {
	capture ports.CaptureDevice
	scorer  ports.FrameScorer
	store   ports.SummaryStore
	events  ports.EventSink
	cfg     Config

	mu              sync.Mutex
	phase           models.Phase
	phaseStart      time.Time
	phaseLength     time.Duration
	window          *models.CaptureWindow
	nextWait        time.Duration
	alertActive     bool
	cycle           int
	captureFailures int

	cancel context.CancelFunc
	done   chan struct{}
}

// New wires a scheduler. store may be nil (persistence is best-effort);
// the other collaborators are required.
func New(capture ports.CaptureDevice, scorer ports.FrameScorer, store ports.SummaryStore, events ports.EventSink, cfg Config) *Scheduler {
	if cfg.RecordDuration <= 0 {
		cfg.RecordDuration = 2 * time.Second
	}
	if cfg.BufferDuration < 0 {
		cfg.BufferDuration = 0
	}
	if cfg.DefaultWait <= 0 {
		cfg.DefaultWait = 10 * time.Second
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Second
	}
	if cfg.CaptureFailureLimit <= 0 {
		cfg.CaptureFailureLimit = 3
	}
	return &Scheduler{
		capture:  capture,
		scorer:   scorer,
		store:    store,
		events:   events,
		cfg:      cfg,
		phase:    models.PhaseIdle,
		nextWait: cfg.DefaultWait,
		done:     make(chan struct{}),
	}
}

// Start launches the capture loop. It fails if the scheduler has already
// been started or cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != models.PhaseIdle {
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("%w: start while %s", models.ErrStateViolation, phase)
	}
	// leave Idle before releasing the lock so a second Start cannot pass
	// the guard while the loop goroutine is still spinning up
	s.phase = models.PhaseBuffering
	s.phaseStart = time.Now()
	s.phaseLength = s.cfg.BufferDuration
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Cancel terminates the session. In-flight capture and inference are
// allowed to finish but their results are discarded.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done closes once the loop has fully stopped after Cancel.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Acknowledge clears an active alert ("I'm awake").
func (s *Scheduler) Acknowledge() {
	s.mu.Lock()
	s.alertActive = false
	s.mu.Unlock()
	log.Println("Alert acknowledged")
}

func (s *Scheduler) AlertActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alertActive
}

func (s *Scheduler) Phase() models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Progress reports how far the current phase has advanced, clamped to
// [0,1]. Monotonic within a phase.
func (s *Scheduler) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phaseLength <= 0 {
		return 0
	}
	p := float64(time.Since(s.phaseStart)) / float64(s.phaseLength)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (s *Scheduler) Status() models.MonitorStatus {
	progress := s.Progress()

	s.mu.Lock()
	defer s.mu.Unlock()
	return models.MonitorStatus{
		Phase:           s.phase,
		Cycle:           s.cycle,
		Progress:        progress,
		AlertActive:     s.alertActive,
		NextWaitSeconds: int(s.nextWait / time.Second),
		Degraded:        s.captureFailures > 0 || !s.scorer.Ready(),
		CaptureFailures: s.captureFailures,
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	for {
		if ctx.Err() != nil {
			s.enterCancelled()
			return
		}

		s.mu.Lock()
		s.cycle++
		cycle := s.cycle
		s.mu.Unlock()

		s.setPhase(models.PhaseBuffering, s.cfg.BufferDuration, "cycle start")
		if !s.sleepPhase(ctx, s.cfg.BufferDuration) {
			s.enterCancelled()
			return
		}

		window := s.runCapture(ctx)

		if ctx.Err() != nil {
			// results of a cancelled window are discarded
			s.enterCancelled()
			return
		}

		if window == nil {
			// capture never started; fall back to the default wait so the
			// loop keeps breathing
			s.setWait(s.cfg.DefaultWait)
		} else {
			s.setPhase(models.PhaseAnalyzing, 0, "window closed")
			s.analyze(ctx, window, cycle)
		}

		s.mu.Lock()
		wait := s.nextWait
		s.mu.Unlock()

		s.setPhase(models.PhaseWaiting, wait, "cooldown")
		if !s.sleepPhase(ctx, wait) {
			s.enterCancelled()
			return
		}
	}
}

// runCapture records one window: a clip for persistence plus periodic
// stills for scoring. Returns nil if capture could not start or the
// session was cancelled mid-window.
func (s *Scheduler) runCapture(ctx context.Context) *models.CaptureWindow {
	clip, err := s.capture.StartClip(ctx, s.cfg.RecordDuration)
	if err != nil {
		s.noteCaptureFailure(err)
		return nil
	}

	window := &models.CaptureWindow{
		ID:             uuid.NewString(),
		StartedAt:      time.Now(),
		DurationTarget: s.cfg.RecordDuration,
	}

	s.mu.Lock()
	s.window = window
	s.captureFailures = 0
	s.mu.Unlock()

	s.setPhase(models.PhaseCapturing, s.cfg.RecordDuration, "recording")

	ticker := time.NewTicker(s.cfg.SampleInterval)
	deadline := time.NewTimer(s.cfg.RecordDuration)
	defer ticker.Stop()
	defer deadline.Stop()

	var seq int32
	cancelled := false

sampling:
	for {
		select {
		case <-ctx.Done():
			cancelled = true
			break sampling
		case <-deadline.C:
			break sampling
		case <-ticker.C:
			s.sampleFrame(ctx, window, seq)
			seq++
		}
	}

	mediaRef, stopErr := clip.Stop()
	if stopErr != nil {
		log.Printf("Clip stop error (window %s): %v", window.ID, stopErr)
	}

	s.mu.Lock()
	s.window = nil
	s.mu.Unlock()

	if cancelled {
		return nil
	}

	endedAt := time.Now()
	window.EndedAt = &endedAt
	window.MediaRef = mediaRef
	return window
}

// sampleFrame grabs and scores one still. Every failure here is isolated
// to the frame: log, skip, keep the window running.
func (s *Scheduler) sampleFrame(ctx context.Context, window *models.CaptureWindow, seq int32) {
	frame, err := s.capture.CaptureStill(ctx)
	if err != nil {
		log.Printf("Still capture failed (seq %d): %v", seq, err)
		return
	}

	fc, err := s.scorer.Classify(ctx, frame, seq)
	if err != nil {
		log.Printf("Frame %d dropped: %v", seq, err)
		s.events.MonitorError(models.ErrorCodeInference,
			fmt.Sprintf("frame %d dropped: %v", seq, err))
		return
	}

	if ctx.Err() != nil {
		// completed after cancel: discard
		return
	}

	window.Samples = append(window.Samples, fc)
	s.events.FrameScored(window.ID, fc)

	if decision.FrameAlert(fc, s.cfg.Decision) {
		s.raiseAlert(window.ID, fc.Severity)
	}
}

func (s *Scheduler) analyze(ctx context.Context, window *models.CaptureWindow, cycle int) {
	summary := aggregator.Summarize(*window)
	d := decision.Evaluate(summary, s.cfg.Decision)

	log.Printf("Cycle %d: window %s, %d frames, dominant %s, alert=%v, next wait %ds",
		cycle, window.ID, summary.TotalFrames, summary.DominantLabel, d.AlertFired, d.NextWaitSeconds)

	if d.AlertFired {
		s.raiseAlert(window.ID, 1.0)
	}
	s.events.WindowAnalyzed(summary, d)

	if s.store != nil {
		if err := s.store.SaveWindow(ctx, *window, summary, d); err != nil {
			log.Printf("Failed to persist window %s: %v", window.ID, err)
			s.events.MonitorError(models.ErrorCodeStore, err.Error())
		}
	}

	s.setWait(time.Duration(d.NextWaitSeconds) * time.Second)
}

func (s *Scheduler) raiseAlert(windowID string, severity float64) {
	s.mu.Lock()
	already := s.alertActive
	s.alertActive = true
	s.mu.Unlock()

	if !already {
		log.Printf("DROWSINESS ALERT (window %s, severity %.2f)", windowID, severity)
	}
	s.events.AlertRaised(windowID, severity)
}

func (s *Scheduler) noteCaptureFailure(err error) {
	s.mu.Lock()
	s.captureFailures++
	failures := s.captureFailures
	s.mu.Unlock()

	log.Printf("Capture failed (%d consecutive): %v", failures, err)
	if failures >= s.cfg.CaptureFailureLimit {
		s.events.MonitorError(models.ErrorCodeCapture,
			fmt.Sprintf("capture failed %d times in a row: %v", failures, err))
	}
}

func (s *Scheduler) setWait(wait time.Duration) {
	if wait <= 0 {
		wait = s.cfg.DefaultWait
	}
	s.mu.Lock()
	s.nextWait = wait
	s.mu.Unlock()
}

func (s *Scheduler) setPhase(phase models.Phase, length time.Duration, reason string) {
	s.mu.Lock()
	s.phase = phase
	s.phaseStart = time.Now()
	s.phaseLength = length
	cycle := s.cycle
	s.mu.Unlock()

	s.events.PhaseChanged(phase, cycle, reason)
}

func (s *Scheduler) enterCancelled() {
	s.setPhase(models.PhaseCancelled, 0, "session cancelled")
	log.Println("Monitoring session cancelled")
}

// sleepPhase waits out a phase duration. Returns false if cancelled first.
func (s *Scheduler) sleepPhase(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
