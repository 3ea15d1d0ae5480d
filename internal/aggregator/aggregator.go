// Package aggregator folds the per-frame classifications of one closed
// capture window into a WindowSummary.
package aggregator

import (
	"sort"

	"DROWSY_GUARD/go-monitor/internal/models"
)

// dominantPriority breaks count ties on the dominant label. The more
// severe label wins: a window split evenly between drowsy and alert frames
// is treated as drowsy.
var dominantPriority = []models.AlertnessLabel{
	models.AlertnessVeryDrowsy,
	models.AlertnessLowVigilant,
	models.AlertnessAlert,
}

// Summarize computes the summary of a closed window. Samples are ordered
// by sequence number first so late inference completions cannot reorder
// the fold. An empty window yields zero counts and percentages and a
// dominant label of Alert.
func Summarize(window models.CaptureWindow) models.WindowSummary {
	samples := make([]models.FrameClassification, len(window.Samples))
	copy(samples, window.Samples)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Sequence < samples[j].Sequence
	})

	counts := map[models.AlertnessLabel]int{
		models.AlertnessAlert:       0,
		models.AlertnessLowVigilant: 0,
		models.AlertnessVeryDrowsy:  0,
	}
	eyesClosed := 0
	yawning := 0

	for _, s := range samples {
		counts[s.Alertness]++
		if s.Eyes == models.EyesClosed {
			eyesClosed++
		}
		if s.Yawn == models.YawnYawning {
			yawning++
		}
	}

	total := len(samples)
	percentages := make(map[models.AlertnessLabel]float64, len(counts))
	for label, count := range counts {
		if total == 0 {
			percentages[label] = 0
			continue
		}
		percentages[label] = float64(count) / float64(total) * 100
	}

	dominant := models.AlertnessAlert
	best := -1
	for _, label := range dominantPriority {
		if counts[label] > best {
			best = counts[label]
			dominant = label
		}
	}
	if total == 0 {
		dominant = models.AlertnessAlert
	}

	return models.WindowSummary{
		WindowID:         window.ID,
		Counts:           counts,
		Percentages:      percentages,
		EyesClosedFrames: eyesClosed,
		YawningFrames:    yawning,
		TotalFrames:      total,
		DominantLabel:    dominant,
	}
}
