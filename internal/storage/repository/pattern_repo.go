package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
)

// PatternRepository stores mined pattern sets.
type PatternRepository interface {
	// Save stores a set and its patterns atomically.
	Save(ctx context.Context, set *models.PatternSet) error

	// GetLatest returns the newest set with its patterns, or nil if none exist.
	GetLatest(ctx context.Context) (*models.PatternSet, error)

	// GetByID returns a set with its patterns, or nil if it does not exist.
	GetByID(ctx context.Context, id string) (*models.PatternSet, error)

	// ListSets returns set summaries (no patterns), newest first.
	ListSets(ctx context.Context, limit int) ([]*models.PatternSet, error)

	// Prune deletes all but the newest keep sets.
	Prune(ctx context.Context, keep int) (int64, error)
}

type patternRepository struct {
	db *sql.DB
}

// NewPatternRepository creates a new pattern repository.
func NewPatternRepository(db *sql.DB) PatternRepository {
	return &patternRepository{db: db}
}

func (r *patternRepository) Save(ctx context.Context, set *models.PatternSet) error {
	if set == nil || set.ID == "" {
		return fmt.Errorf("pattern set id is required")
	}

	createdAt := set.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pattern_sets (id, source, min_support, sequence_count, pattern_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		set.ID,
		set.Source,
		set.MinSupport,
		set.SequenceCount,
		len(set.Patterns),
		createdAt,
	); err != nil {
		return fmt.Errorf("failed to save pattern set: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO patterns (set_id, position, items, length, support)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare pattern insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range set.Patterns {
		if _, err := stmt.ExecContext(ctx, set.ID, i, joinItems(p.Items), len(p.Items), p.Support); err != nil {
			return fmt.Errorf("failed to save pattern %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pattern set: %w", err)
	}

	set.PatternCount = len(set.Patterns)
	set.CreatedAt = createdAt
	return nil
}

func (r *patternRepository) GetLatest(ctx context.Context) (*models.PatternSet, error) {
	sets, err := r.ListSets(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, nil
	}

	set := sets[0]
	if set.Patterns, err = r.loadPatterns(ctx, set.ID); err != nil {
		return nil, err
	}
	return set, nil
}

func (r *patternRepository) GetByID(ctx context.Context, id string) (*models.PatternSet, error) {
	set := &models.PatternSet{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, source, min_support, sequence_count, pattern_count, created_at
		FROM pattern_sets
		WHERE id = ?
	`, id).Scan(
		&set.ID,
		&set.Source,
		&set.MinSupport,
		&set.SequenceCount,
		&set.PatternCount,
		&set.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern set: %w", err)
	}

	if set.Patterns, err = r.loadPatterns(ctx, set.ID); err != nil {
		return nil, err
	}
	return set, nil
}

func (r *patternRepository) ListSets(ctx context.Context, limit int) ([]*models.PatternSet, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, min_support, sequence_count, pattern_count, created_at
		FROM pattern_sets
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pattern sets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sets []*models.PatternSet
	for rows.Next() {
		set := &models.PatternSet{}
		if err := rows.Scan(
			&set.ID,
			&set.Source,
			&set.MinSupport,
			&set.SequenceCount,
			&set.PatternCount,
			&set.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pattern set: %w", err)
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pattern sets: %w", err)
	}

	return sets, nil
}

func (r *patternRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM pattern_sets
		WHERE id NOT IN (
			SELECT id FROM pattern_sets ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune pattern sets: %w", err)
	}

	return result.RowsAffected()
}

func (r *patternRepository) loadPatterns(ctx context.Context, setID string) ([]models.Pattern, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT items, support FROM patterns WHERE set_id = ? ORDER BY position
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []models.Pattern
	for rows.Next() {
		var items string
		var p models.Pattern
		if err := rows.Scan(&items, &p.Support); err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		p.Items = splitItems(items)
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patterns: %w", err)
	}

	return patterns, nil
}
