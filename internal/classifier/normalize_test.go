package classifier

import (
	"errors"
	"testing"

	"DROWSY_GUARD/go-monitor/internal/models"
)

func TestOneHotUniqueMax(t *testing.T) {
	t.Parallel()

	out, err := OneHot([]float64{0.1, 0.7, 0.2})
	if err != nil {
		t.Fatalf("one-hot failed: %v", err)
	}
	want := []float64{0, 1, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("unexpected one-hot: %v", out)
		}
	}
}

func TestOneHotTiesPickLowestIndex(t *testing.T) {
	t.Parallel()

	for i := 0; i < 10; i++ {
		out, err := OneHot([]float64{0.4, 0.4, 0.2})
		if err != nil {
			t.Fatalf("one-hot failed: %v", err)
		}
		if out[0] != 1 || out[1] != 0 || out[2] != 0 {
			t.Fatalf("tie not broken by lowest index: %v", out)
		}
	}
}

func TestOneHotHasExactlyOneHotEntry(t *testing.T) {
	t.Parallel()

	out, err := OneHot([]float64{-3, -1, -2, -1.5})
	if err != nil {
		t.Fatalf("one-hot failed: %v", err)
	}
	ones := 0
	for _, v := range out {
		switch v {
		case 1:
			ones++
		case 0:
		default:
			t.Fatalf("unexpected value in one-hot vector: %v", out)
		}
	}
	if ones != 1 {
		t.Fatalf("expected exactly one hot entry, got %d: %v", ones, out)
	}
	if out[1] != 1 {
		t.Fatalf("argmax should be index 1: %v", out)
	}
}

func TestOneHotEmptyVector(t *testing.T) {
	t.Parallel()

	if _, err := OneHot(nil); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestOneHotPreservesLength(t *testing.T) {
	t.Parallel()

	for n := 2; n <= 6; n++ {
		scores := make([]float64, n)
		scores[n-1] = 1
		out, err := OneHot(scores)
		if err != nil {
			t.Fatalf("one-hot failed for length %d: %v", n, err)
		}
		if len(out) != n {
			t.Fatalf("length changed: got %d, want %d", len(out), n)
		}
	}
}
