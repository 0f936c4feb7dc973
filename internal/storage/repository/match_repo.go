package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
)

// MatchRepository stores the pick sequences of fetched matches.
type MatchRepository interface {
	// SaveAll inserts or replaces the given drafts.
	SaveAll(ctx context.Context, drafts []*models.MatchDraft) error

	// GetRecent returns up to limit drafts, newest fetch first.
	GetRecent(ctx context.Context, limit int) ([]*models.MatchDraft, error)

	// Exists reports whether a match has already been stored.
	Exists(ctx context.Context, matchID int64) (bool, error)

	// Count returns the number of stored drafts.
	Count(ctx context.Context) (int, error)
}

type matchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *sql.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) SaveAll(ctx context.Context, drafts []*models.MatchDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO match_drafts (match_id, start_time, picks, pick_count, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare draft insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, draft := range drafts {
		fetchedAt := draft.FetchedAt.UTC()
		if fetchedAt.IsZero() {
			fetchedAt = now
		}

		var startTime any
		if !draft.StartTime.IsZero() {
			startTime = draft.StartTime.UTC()
		}

		if _, err := stmt.ExecContext(ctx,
			draft.MatchID,
			startTime,
			joinItems(draft.Picks),
			len(draft.Picks),
			fetchedAt,
		); err != nil {
			return fmt.Errorf("failed to save draft %d: %w", draft.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit drafts: %w", err)
	}
	return nil
}

func (r *matchRepository) GetRecent(ctx context.Context, limit int) ([]*models.MatchDraft, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, start_time, picks, fetched_at
		FROM match_drafts
		ORDER BY fetched_at DESC, match_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drafts []*models.MatchDraft
	for rows.Next() {
		draft := &models.MatchDraft{}
		var startTime sql.NullTime
		var picks string
		if err := rows.Scan(&draft.MatchID, &startTime, &picks, &draft.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		if startTime.Valid {
			draft.StartTime = startTime.Time
		}
		draft.Picks = splitItems(picks)
		drafts = append(drafts, draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drafts: %w", err)
	}

	return drafts, nil
}

func (r *matchRepository) Exists(ctx context.Context, matchID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM match_drafts WHERE match_id = ?`, matchID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check draft: %w", err)
	}
	return true, nil
}

func (r *matchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_drafts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count drafts: %w", err)
	}
	return count, nil
}

// Item sequences are stored space separated, matching the pattern file format.
func joinItems(items []string) string {
	return strings.Join(items, " ")
}

func splitItems(s string) []string {
	return strings.Fields(s)
}
