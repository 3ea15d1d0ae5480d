package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"DROWSY_GUARD/go-monitor/internal/models"
	"DROWSY_GUARD/go-monitor/pkg/pb"
)

// ModelClient talks to the Python inference sidecar that serves the
// pretrained multi-head classifier.
type ModelClient struct {
	conn    *grpc.ClientConn
	client  pb.DrowsinessModelClient
	url     string
	timeout time.Duration
}

func NewModelClient(url string, timeout time.Duration) (*ModelClient, error) {
	log.Printf("Connecting to model service at %s", url)

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(50*1024*1024),
			grpc.MaxCallSendMsgSize(50*1024*1024),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             3 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	conn, err := grpc.Dial(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not connect to model service at %s: %w", url, err)
	}

	client := pb.NewDrowsinessModelClient(conn)
	log.Printf("Connected to model service at %s", url)

	return &ModelClient{
		conn:    conn,
		client:  client,
		url:     url,
		timeout: timeout,
	}, nil
}

// Predict scores one preprocessed frame. The call is bounded by the
// configured inference timeout so a slow sidecar costs one frame, not the
// whole cycle.
func (mc *ModelClient) Predict(ctx context.Context, tensor *pb.ImageTensor) (*pb.Prediction, error) {
	if mc == nil || mc.client == nil {
		return nil, fmt.Errorf("could not score frame: %w", models.ErrModelNotReady)
	}

	ctx, cancel := context.WithTimeout(ctx, mc.timeout)
	defer cancel()

	result, err := mc.client.Predict(ctx, tensor)
	if err != nil {
		return nil, fmt.Errorf("could not score frame: %w", err)
	}
	return result, nil
}

func (mc *ModelClient) HealthCheck() bool {
	if mc == nil || mc.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	status, err := mc.client.Health(ctx, &pb.Empty{})
	return err == nil && status.ModelLoaded
}

func (mc *ModelClient) Close() error {
	if mc.conn != nil {
		return mc.conn.Close()
	}
	return nil
}
