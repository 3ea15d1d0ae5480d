package models

import "time"

// AlertnessLabel is the primary classification head of the drowsiness model.
type AlertnessLabel string

const (
	AlertnessAlert       AlertnessLabel = "Alert"
	AlertnessLowVigilant AlertnessLabel = "Low Vigilant"
	AlertnessVeryDrowsy  AlertnessLabel = "Very Drowsy"
)

// Severity maps an alertness label onto a [0,1] scale used for the
// per-frame alert trigger. Unknown labels count as fully alert.
func (l AlertnessLabel) Severity() float64 {
	switch l {
	case AlertnessVeryDrowsy:
		return 1.0
	case AlertnessLowVigilant:
		return 0.5
	default:
		return 0.0
	}
}

type EyesLabel string

const (
	EyesOpen   EyesLabel = "Eyes Open"
	EyesClosed EyesLabel = "Eyes Closed"
)

type YawnLabel string

const (
	YawnNormal  YawnLabel = "Normal"
	YawnTalking YawnLabel = "Talking"
	YawnYawning YawnLabel = "Yawning"
)

// RawScores keeps the model's unnormalized output vectors for auditability.
type RawScores struct {
	Alertness []float64 `json:"alertness"`
	Eyes      []float64 `json:"eyes"`
	Yawn      []float64 `json:"yawn"`
}

// FrameClassification is the scored result of one camera still. Immutable
// once produced; owned by the window it was captured in.
type FrameClassification struct {
	Sequence    int32          `json:"sequence_number"`
	Alertness   AlertnessLabel `json:"alertness_label"`
	Eyes        EyesLabel      `json:"eyes_label"`
	Yawn        YawnLabel      `json:"yawn_label"`
	Severity    float64        `json:"severity"`
	Raw         RawScores      `json:"raw_scores"`
	InferenceMs float64        `json:"inference_ms,omitempty"`
	CapturedAt  time.Time      `json:"captured_at"`
}

// CaptureWindow is one bounded recording interval. Samples are appended in
// temporal order while the window is open; once EndedAt is set the window
// is history and must not be mutated.
type CaptureWindow struct {
	ID             string                `json:"id"`
	StartedAt      time.Time             `json:"started_at"`
	EndedAt        *time.Time            `json:"ended_at,omitempty"`
	DurationTarget time.Duration         `json:"duration_target"`
	Samples        []FrameClassification `json:"samples"`
	MediaRef       string                `json:"media_ref,omitempty"`
}

// WindowSummary aggregates one closed capture window.
type WindowSummary struct {
	WindowID         string                     `json:"window_id"`
	Counts           map[AlertnessLabel]int     `json:"alertness_counts"`
	Percentages      map[AlertnessLabel]float64 `json:"alertness_percentages"`
	EyesClosedFrames int                        `json:"eyes_closed_frames"`
	YawningFrames    int                        `json:"yawning_frames"`
	TotalFrames      int                        `json:"total_frames"`
	DominantLabel    AlertnessLabel             `json:"dominant_label"`
}
