// Package capture grabs webcam footage through ffmpeg: short clips for
// evidence and single JPEG stills for scoring.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"DROWSY_GUARD/go-monitor/internal/models"
	"DROWSY_GUARD/go-monitor/internal/ports"
)

type Config struct {
	Command string // ffmpeg binary, defaults to "ffmpeg"
	Format  string // input format, e.g. v4l2 / avfoundation
	Device  string // input device, e.g. /dev/video0
	ClipDir string // where recorded clips land
}

type FFMPEGCapture struct {
	cfg Config
}

func NewFFMPEGCapture(cfg Config) *FFMPEGCapture {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.Format == "" {
		cfg.Format = "v4l2"
	}
	if cfg.Device == "" {
		cfg.Device = "/dev/video0"
	}
	if cfg.ClipDir == "" {
		cfg.ClipDir = os.TempDir()
	}
	return &FFMPEGCapture{cfg: cfg}
}

// CaptureStill grabs one JPEG frame from the device. The whole run is
// bounded by ctx; a dead camera surfaces as ErrCaptureFailure.
func (c *FFMPEGCapture) CaptureStill(ctx context.Context) ([]byte, error) {
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", c.cfg.Format,
		"-i", c.cfg.Device,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"-",
	}

	cmd := exec.CommandContext(ctx, c.cfg.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: still capture: %v: %s",
			models.ErrCaptureFailure, err, trimmed(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: still capture produced no data", models.ErrCaptureFailure)
	}
	return stdout.Bytes(), nil
}

// StartClip begins recording to a file under ClipDir. The returned handle
// stops the recorder and reports the clip path.
func (c *FFMPEGCapture) StartClip(ctx context.Context, duration time.Duration) (ports.ClipHandle, error) {
	if err := os.MkdirAll(c.cfg.ClipDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: clip dir: %v", models.ErrCaptureFailure, err)
	}

	path := filepath.Join(c.cfg.ClipDir,
		fmt.Sprintf("window_%s.mp4", time.Now().Format("20060102_150405.000")))

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", c.cfg.Format,
		"-i", c.cfg.Device,
		"-t", fmt.Sprintf("%.1f", duration.Seconds()+1),
		"-y",
		path,
	}

	cmd := exec.CommandContext(ctx, c.cfg.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", models.ErrCaptureFailure, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// catch instant deaths (bad device, busy camera) before the caller
	// commits to the window
	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("%w: ffmpeg exited before recording started: %v: %s",
				models.ErrCaptureFailure, err, trimmed(stderr.String()))
		}
		return nil, fmt.Errorf("%w: ffmpeg exited before recording started", models.ErrCaptureFailure)
	case <-time.After(250 * time.Millisecond):
	}

	return &ffmpegClip{
		path:    path,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

type ffmpegClip struct {
	path   string
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

// Stop finishes the recording and returns the clip path. Interrupt gives
// ffmpeg a chance to finalize the container; Kill is the fallback.
func (c *ffmpegClip) Stop() (string, error) {
	c.stopOnce.Do(func() {
		if c.process != nil {
			_ = c.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-c.waitErr:
			if ok {
				c.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if c.process != nil {
				_ = c.process.Kill()
			}
			err, ok := <-c.waitErr
			if ok {
				c.stopErr = normalizeStopErr(err)
			}
		}

		if c.stopErr != nil && c.stderr.Len() > 0 {
			c.stopErr = fmt.Errorf("%w: %s", c.stopErr, trimmed(c.stderr.String()))
		}
	})

	return c.path, c.stopErr
}

// normalizeStopErr swallows the non-zero exit ffmpeg reports when it is
// interrupted on purpose.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimmed(s string) string {
	if s == "" {
		return s
	}
	return string(bytes.TrimSpace([]byte(s)))
}
