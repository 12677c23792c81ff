package database

import (
	"context"
	"time"
)

// RecordMatchResult inserts one finished-match row. No-op without a
// configured pool.
func RecordMatchResult(ctx context.Context, roomCode, winnerID string, actions int) error {
	if DB == nil {
		return nil
	}
	q := `
		INSERT INTO match_results (room_code, winner_id, action_count, finished_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := DB.Exec(ctx, q, roomCode, winnerID, actions, time.Now())
	return err
}
