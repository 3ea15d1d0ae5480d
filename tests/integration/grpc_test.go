package integration

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"DROWSY_GUARD/go-monitor/pkg/pb"
)

// fakeModel stands in for the Python inference sidecar.
type fakeModel struct {
	healthy bool
}

func (m *fakeModel) Predict(ctx context.Context, in *pb.ImageTensor) (*pb.Prediction, error) {
	return &pb.Prediction{
		Alertness:       []float64{0.1, 0.2, 0.7},
		Eyes:            []float64{0.3, 0.7},
		Yawn:            []float64{0.8, 0.1, 0.1},
		InferenceTimeMs: 12,
		Timestamp:       time.Now().Unix(),
		SequenceNumber:  in.SequenceNumber,
	}, nil
}

func (m *fakeModel) Health(ctx context.Context, in *pb.Empty) (*pb.HealthStatus, error) {
	return &pb.HealthStatus{
		Status:      "SERVING",
		ModelLoaded: m.healthy,
		Version:     "test",
	}, nil
}

func startModelServer(t *testing.T) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	pb.RegisterDrowsinessModelServer(srv, &fakeModel{healthy: true})

	go func() {
		if err := srv.Serve(lis); err != nil {
			t.Logf("server stopped: %v", err)
		}
	}()
	t.Cleanup(func() {
		srv.Stop()
		lis.Close()
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPredictRoundTrip(t *testing.T) {
	conn := startModelServer(t)
	client := pb.NewDrowsinessModelClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pred, err := client.Predict(ctx, &pb.ImageTensor{
		Data:           make([]float32, 4*4*3),
		Width:          4,
		Height:         4,
		Channels:       3,
		SequenceNumber: 7,
	})
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	if len(pred.Alertness) != 3 || len(pred.Eyes) != 2 || len(pred.Yawn) != 3 {
		t.Fatalf("unexpected head lengths: %d/%d/%d",
			len(pred.Alertness), len(pred.Eyes), len(pred.Yawn))
	}
	if pred.SequenceNumber != 7 {
		t.Fatalf("sequence = %d, want 7", pred.SequenceNumber)
	}
}

func TestHealthRoundTrip(t *testing.T) {
	conn := startModelServer(t)
	client := pb.NewDrowsinessModelClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.Health(ctx, &pb.Empty{})
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if !status.ModelLoaded {
		t.Fatalf("model should report loaded")
	}
	if status.Status != "SERVING" {
		t.Fatalf("status = %q", status.Status)
	}
}
