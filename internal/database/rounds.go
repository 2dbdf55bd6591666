package database

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Round statuses
const (
	RoundStarted       = "started"
	RoundCompleted     = "completed"
	RoundCaptureFailed = "capture_failed"
)

// Round is one capture, detect and click pass over the game window
type Round struct {
	ID              int64
	Session         string
	WindowTitle     string
	WindowLeft      int
	WindowTop       int
	WindowWidth     int
	WindowHeight    int
	Status          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	Detections      int
	ClicksAttempted int
	ClicksFailed    int
	FrameHash       *string
	FrameUnchanged  bool
	DetectMs        int64
	ClickMs         int64
	TotalMs         int64
	ErrorMessage    *string
	Labels          map[string]int
}

// RoundStart identifies the session and window geometry of a new round
type RoundStart struct {
	Session string
	Title   string
	Left    int
	Top     int
	Width   int
	Height  int
}

// RoundResult carries the measurements of a finished round
type RoundResult struct {
	Detections      int
	ClicksAttempted int
	ClicksFailed    int
	FrameHash       string
	FrameUnchanged  bool
	DetectDuration  time.Duration
	ClickDuration   time.Duration
	TotalDuration   time.Duration
	Labels          map[string]int // detections per template label
}

// RoundStats aggregates all recorded rounds
type RoundStats struct {
	Total          int
	Completed      int
	CaptureFailed  int
	TotalClicks    int
	FailedClicks   int
	AverageTotalMs float64
}

// StartRound records the start of a round and returns its ID
func (db *DB) StartRound(w RoundStart) (int64, error) {
	result, err := db.conn.Exec(`
		INSERT INTO rounds (session_id, window_title, window_left, window_top, window_width, window_height, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, w.Session, w.Title, w.Left, w.Top, w.Width, w.Height, RoundStarted, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to start round: %w", err)
	}
	return result.LastInsertId()
}

// CompleteRound stores the results of a round and marks it completed
func (db *DB) CompleteRound(id int64, r RoundResult) error {
	return db.ExecTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE rounds
			SET status = ?,
				completed_at = ?,
				detections = ?,
				clicks_attempted = ?,
				clicks_failed = ?,
				frame_hash = ?,
				frame_unchanged = ?,
				detect_ms = ?,
				click_ms = ?,
				total_ms = ?
			WHERE id = ? AND status = ?
		`, RoundCompleted, time.Now().UTC(), r.Detections, r.ClicksAttempted, r.ClicksFailed,
			nullString(r.FrameHash), r.FrameUnchanged,
			r.DetectDuration.Milliseconds(), r.ClickDuration.Milliseconds(), r.TotalDuration.Milliseconds(),
			id, RoundStarted)
		if err != nil {
			return fmt.Errorf("failed to complete round: %w", err)
		}
		if err := expectOneRow(res, id); err != nil {
			return err
		}

		labels := make([]string, 0, len(r.Labels))
		for label := range r.Labels {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			if _, err := tx.Exec(`
				INSERT INTO round_labels (round_id, label, count) VALUES (?, ?, ?)
			`, id, label, r.Labels[label]); err != nil {
				return fmt.Errorf("failed to record label counts: %w", err)
			}
		}
		return nil
	})
}

// FailRound marks a round as ended by a capture failure
func (db *DB) FailRound(id int64, errorMessage string, total time.Duration) error {
	res, err := db.conn.Exec(`
		UPDATE rounds
		SET status = ?, completed_at = ?, error_message = ?, total_ms = ?
		WHERE id = ? AND status = ?
	`, RoundCaptureFailed, time.Now().UTC(), errorMessage, total.Milliseconds(), id, RoundStarted)
	if err != nil {
		return fmt.Errorf("failed to fail round: %w", err)
	}
	return expectOneRow(res, id)
}

// GetRound retrieves a round with its label counts
func (db *DB) GetRound(id int64) (*Round, error) {
	row := db.conn.QueryRow(roundSelect+` WHERE id = ?`, id)
	round, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("round %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if round.Labels, err = db.roundLabels(id); err != nil {
		return nil, err
	}
	return round, nil
}

// ListRounds returns the most recent rounds, newest first
func (db *DB) ListRounds(limit int) ([]*Round, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.Query(roundSelect+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

// GetRoundStats aggregates every recorded round
func (db *DB) GetRoundStats() (*RoundStats, error) {
	stats := &RoundStats{}
	var avg sql.NullFloat64
	err := db.conn.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'capture_failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(clicks_attempted), 0),
			COALESCE(SUM(clicks_failed), 0),
			AVG(CASE WHEN status = 'completed' THEN total_ms END)
		FROM rounds
	`).Scan(&stats.Total, &stats.Completed, &stats.CaptureFailed, &stats.TotalClicks, &stats.FailedClicks, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to get round stats: %w", err)
	}
	stats.AverageTotalMs = avg.Float64
	return stats, nil
}

const roundSelect = `
	SELECT id, session_id, window_title, window_left, window_top, window_width, window_height,
		status, started_at, completed_at, detections, clicks_attempted, clicks_failed,
		frame_hash, frame_unchanged, detect_ms, click_ms, total_ms, error_message
	FROM rounds`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRound(row rowScanner) (*Round, error) {
	r := &Round{}
	var completedAt sql.NullTime
	var frameHash, errorMessage sql.NullString

	err := row.Scan(
		&r.ID, &r.Session, &r.WindowTitle, &r.WindowLeft, &r.WindowTop, &r.WindowWidth, &r.WindowHeight,
		&r.Status, &r.StartedAt, &completedAt, &r.Detections, &r.ClicksAttempted, &r.ClicksFailed,
		&frameHash, &r.FrameUnchanged, &r.DetectMs, &r.ClickMs, &r.TotalMs, &errorMessage,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		r.CompletedAt = &completedAt.Time
	}
	if frameHash.Valid {
		r.FrameHash = &frameHash.String
	}
	if errorMessage.Valid {
		r.ErrorMessage = &errorMessage.String
	}
	return r, nil
}

func (db *DB) roundLabels(id int64) (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT label, count FROM round_labels WHERE round_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load label counts: %w", err)
	}
	defer rows.Close()

	labels := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		labels[label] = count
	}
	return labels, rows.Err()
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("round %d not found or already finished", id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
