package classifier

import (
	"fmt"

	"DROWSY_GUARD/go-monitor/internal/models"
)

// OneHot collapses a raw score vector into a one-hot vector marking the
// maximum score. Ties resolve to the lowest index, matching scan order, so
// repeated calls on the same input are stable.
func OneHot(scores []float64) ([]float64, error) {
	idx, err := argMax(scores)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(scores))
	out[idx] = 1
	return out, nil
}

func argMax(scores []float64) (int, error) {
	if len(scores) == 0 {
		return 0, fmt.Errorf("%w: empty score vector", models.ErrInvalidInput)
	}
	max := 0
	for i, s := range scores {
		if s > scores[max] {
			max = i
		}
	}
	return max, nil
}
