package models

// Phase is the state of the capture loop, as surfaced to UI clients.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseBuffering Phase = "buffering"
	PhaseCapturing Phase = "capturing"
	PhaseAnalyzing Phase = "analyzing"
	PhaseWaiting   Phase = "waiting"
	PhaseCancelled Phase = "cancelled"
)

// ErrorCode identifies non-fatal monitor errors pushed to the UI.
type ErrorCode string

const (
	ErrorCodeCapture   ErrorCode = "capture"
	ErrorCodeInference ErrorCode = "inference"
	ErrorCodeStore     ErrorCode = "store"
)

// MonitorStatus summarizes the current runtime status for /api/status.
type MonitorStatus struct {
	Phase           Phase   `json:"phase"`
	Cycle           int     `json:"cycle"`
	Progress        float64 `json:"progress"`
	AlertActive     bool    `json:"alert_active"`
	NextWaitSeconds int     `json:"next_wait_seconds"`
	Degraded        bool    `json:"degraded"`
	CaptureFailures int     `json:"consecutive_capture_failures"`
}
