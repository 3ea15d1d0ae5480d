// Package pb holds the hand-maintained stubs for the drowsiness.v1 model
// service (see proto/detection.proto). Both sides of the service use the
// gRPC JSON codec registered in codec.go, so there is no generated code
// and no protoc step in the build.
package pb

type Empty struct{}

// ImageTensor is a preprocessed square RGB frame, pixel values normalized
// to [0,1], flattened HWC.
type ImageTensor struct {
	Data           []float32 `json:"data"`
	Width          int32     `json:"width"`
	Height         int32     `json:"height"`
	Channels       int32     `json:"channels"`
	Timestamp      int64     `json:"timestamp,omitempty"`
	SequenceNumber int32     `json:"sequence_number,omitempty"`
}

// Prediction carries one raw score vector per classification head.
type Prediction struct {
	Alertness       []float64 `json:"alertness"`
	Eyes            []float64 `json:"eyes"`
	Yawn            []float64 `json:"yawn"`
	InferenceTimeMs float32   `json:"inference_time_ms,omitempty"`
	Timestamp       int64     `json:"timestamp,omitempty"`
	SequenceNumber  int32     `json:"sequence_number,omitempty"`
}

type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Version     string `json:"version,omitempty"`
}
