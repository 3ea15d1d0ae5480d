package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"DROWSY_GUARD/go-monitor/internal/models"
	"DROWSY_GUARD/go-monitor/pkg/pb"
)

// ErrBusy is returned when an inference is already in flight. Invocations
// are rejected, not queued, to bound memory on the inference side.
var ErrBusy = errors.New("classifier busy: inference already in flight")

// Fixed label tables per classification head. The model's output
// dimensionality is validated against these on every prediction instead of
// being guessed from vector lengths.
var (
	alertnessLabels = []models.AlertnessLabel{
		models.AlertnessAlert,
		models.AlertnessLowVigilant,
		models.AlertnessVeryDrowsy,
	}
	eyesLabels = []models.EyesLabel{
		models.EyesOpen,
		models.EyesClosed,
	}
	yawnLabels = []models.YawnLabel{
		models.YawnNormal,
		models.YawnTalking,
		models.YawnYawning,
	}
)

// ModelPredictor is the slice of the model service the classifier needs.
type ModelPredictor interface {
	Predict(ctx context.Context, tensor *pb.ImageTensor) (*pb.Prediction, error)
}

// FrameClassifier turns one captured still into a FrameClassification.
// At most one inference per instance is in flight at any time.
type FrameClassifier struct {
	model     ModelPredictor
	imageSize int

	ready    atomic.Bool
	inFlight atomic.Bool
}

func New(model ModelPredictor, imageSize int) *FrameClassifier {
	if imageSize <= 0 {
		imageSize = 224
	}
	return &FrameClassifier{
		model:     model,
		imageSize: imageSize,
	}
}

// WarmUp pushes a zero tensor through the model once and marks the
// classifier ready. Until it succeeds, Classify fails with ErrModelNotReady.
func (fc *FrameClassifier) WarmUp(ctx context.Context) error {
	if fc.model == nil {
		return fmt.Errorf("%w: no model service", models.ErrModelNotReady)
	}

	dummy := &pb.ImageTensor{
		Data:     make([]float32, fc.imageSize*fc.imageSize*3),
		Width:    int32(fc.imageSize),
		Height:   int32(fc.imageSize),
		Channels: 3,
	}
	pred, err := fc.model.Predict(ctx, dummy)
	if err != nil {
		return fmt.Errorf("%w: warm-up: %v", models.ErrModelNotReady, err)
	}
	if err := validateHeads(pred); err != nil {
		return fmt.Errorf("%w: warm-up: %v", models.ErrModelNotReady, err)
	}

	fc.ready.Store(true)
	return nil
}

func (fc *FrameClassifier) Ready() bool {
	return fc.ready.Load()
}

// Classify scores one JPEG still. Failures are per-frame: the caller skips
// the frame and keeps the capture window running.
func (fc *FrameClassifier) Classify(ctx context.Context, frame []byte, seq int32) (models.FrameClassification, error) {
	if !fc.ready.Load() {
		return models.FrameClassification{}, models.ErrModelNotReady
	}
	if !fc.inFlight.CompareAndSwap(false, true) {
		return models.FrameClassification{}, ErrBusy
	}
	defer fc.inFlight.Store(false)

	tensor, err := Preprocess(frame, fc.imageSize)
	if err != nil {
		return models.FrameClassification{}, err
	}
	tensor.Timestamp = time.Now().UnixMilli()
	tensor.SequenceNumber = seq

	pred, err := fc.model.Predict(ctx, tensor)
	if err != nil {
		return models.FrameClassification{}, fmt.Errorf("%w: %v", models.ErrInference, err)
	}
	if err := validateHeads(pred); err != nil {
		return models.FrameClassification{}, err
	}

	alertnessIdx, err := argMax(pred.Alertness)
	if err != nil {
		return models.FrameClassification{}, err
	}
	eyesIdx, err := argMax(pred.Eyes)
	if err != nil {
		return models.FrameClassification{}, err
	}
	yawnIdx, err := argMax(pred.Yawn)
	if err != nil {
		return models.FrameClassification{}, err
	}

	alertness := alertnessLabels[alertnessIdx]

	return models.FrameClassification{
		Sequence:  seq,
		Alertness: alertness,
		Eyes:      eyesLabels[eyesIdx],
		Yawn:      yawnLabels[yawnIdx],
		Severity:  alertness.Severity(),
		Raw: models.RawScores{
			Alertness: pred.Alertness,
			Eyes:      pred.Eyes,
			Yawn:      pred.Yawn,
		},
		InferenceMs: float64(pred.InferenceTimeMs),
		CapturedAt:  time.Now(),
	}, nil
}

func validateHeads(pred *pb.Prediction) error {
	if pred == nil {
		return fmt.Errorf("%w: nil prediction", models.ErrInference)
	}
	if len(pred.Alertness) != len(alertnessLabels) {
		return fmt.Errorf("%w: alertness head has %d classes, want %d",
			models.ErrInference, len(pred.Alertness), len(alertnessLabels))
	}
	if len(pred.Eyes) != len(eyesLabels) {
		return fmt.Errorf("%w: eyes head has %d classes, want %d",
			models.ErrInference, len(pred.Eyes), len(eyesLabels))
	}
	if len(pred.Yawn) != len(yawnLabels) {
		return fmt.Errorf("%w: yawn head has %d classes, want %d",
			models.ErrInference, len(pred.Yawn), len(yawnLabels))
	}
	return nil
}
