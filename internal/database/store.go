package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"DROWSY_GUARD/go-monitor/internal/decision"
	"DROWSY_GUARD/go-monitor/internal/models"
)

// Store persists analyzed capture windows.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveWindow writes the window and its summary in one transaction.
func (s *Store) SaveWindow(ctx context.Context, window models.CaptureWindow, summary models.WindowSummary, d decision.Decision) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var endedAt interface{}
	if window.EndedAt != nil {
		endedAt = *window.EndedAt
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO capture_windows (id, started_at, ended_at, duration_target_ms, media_ref)
		VALUES ($1, $2, $3, $4, $5)`,
		window.ID, window.StartedAt, endedAt,
		window.DurationTarget.Milliseconds(), window.MediaRef)
	if err != nil {
		return fmt.Errorf("insert window: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO window_summaries (
			window_id, total_frames, dominant_label,
			alert_count, low_vigilant_count, very_drowsy_count,
			eyes_closed_frames, yawning_frames,
			alert_fired, next_wait_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		summary.WindowID, summary.TotalFrames, string(summary.DominantLabel),
		summary.Counts[models.AlertnessAlert],
		summary.Counts[models.AlertnessLowVigilant],
		summary.Counts[models.AlertnessVeryDrowsy],
		summary.EyesClosedFrames, summary.YawningFrames,
		d.AlertFired, d.NextWaitSeconds)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	return tx.Commit()
}

// SummaryRecord is one stored window summary, shaped for the REST API.
type SummaryRecord struct {
	WindowID         string    `json:"windowId"`
	StartedAt        time.Time `json:"startedAt"`
	TotalFrames      int       `json:"totalFrames"`
	DominantLabel    string    `json:"dominantLabel"`
	AlertCount       int       `json:"alertCount"`
	LowVigilantCount int       `json:"lowVigilantCount"`
	VeryDrowsyCount  int       `json:"veryDrowsyCount"`
	EyesClosedFrames int       `json:"eyesClosedFrames"`
	YawningFrames    int       `json:"yawningFrames"`
	AlertFired       bool      `json:"alertFired"`
	NextWaitSeconds  int       `json:"nextWaitSeconds"`
	MediaRef         string    `json:"mediaRef,omitempty"`
}

// RecentSummaries returns the latest analyzed windows, newest first.
func (s *Store) RecentSummaries(ctx context.Context, limit int) ([]SummaryRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ws.window_id, cw.started_at, ws.total_frames, ws.dominant_label,
		       ws.alert_count, ws.low_vigilant_count, ws.very_drowsy_count,
		       ws.eyes_closed_frames, ws.yawning_frames,
		       ws.alert_fired, ws.next_wait_seconds, COALESCE(cw.media_ref, '')
		FROM window_summaries ws
		JOIN capture_windows cw ON cw.id = ws.window_id
		ORDER BY ws.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []SummaryRecord
	for rows.Next() {
		var r SummaryRecord
		if err := rows.Scan(&r.WindowID, &r.StartedAt, &r.TotalFrames, &r.DominantLabel,
			&r.AlertCount, &r.LowVigilantCount, &r.VeryDrowsyCount,
			&r.EyesClosedFrames, &r.YawningFrames,
			&r.AlertFired, &r.NextWaitSeconds, &r.MediaRef); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
