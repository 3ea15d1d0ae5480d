package models

import "errors"

// Error taxonomy for the capture/score/decide loop. Per-frame errors
// (ErrInference, ErrModelNotReady) drop the frame and leave the window
// running; ErrCaptureFailure skips the cycle; ErrStateViolation signals a
// programming error and is not recovered from.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrModelNotReady  = errors.New("model not ready")
	ErrInference      = errors.New("inference failed")
	ErrCaptureFailure = errors.New("capture failed")
	ErrStateViolation = errors.New("operation not allowed in current phase")
)
