// Package repository provides data access layers for draft companion data.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
)

// HeroRepository handles database operations for the hero catalog.
type HeroRepository interface {
	// UpsertAll replaces or inserts every hero in a single transaction.
	UpsertAll(ctx context.Context, heroes []*models.Hero) error

	// List returns all heroes ordered by name.
	List(ctx context.Context) ([]*models.Hero, error)

	// GetByID retrieves a hero, or nil if it is not stored.
	GetByID(ctx context.Context, id string) (*models.Hero, error)

	// LastUpdated returns the newest updated_at, or the zero time when empty.
	LastUpdated(ctx context.Context) (time.Time, error)
}

type heroRepository struct {
	db *sql.DB
}

// NewHeroRepository creates a new hero repository.
func NewHeroRepository(db *sql.DB) HeroRepository {
	return &heroRepository{db: db}
}

func (r *heroRepository) UpsertAll(ctx context.Context, heroes []*models.Hero) error {
	if len(heroes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO heroes (id, name, attack_type, primary_attr, role, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			attack_type = excluded.attack_type,
			primary_attr = excluded.primary_attr,
			role = excluded.role,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare hero upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, hero := range heroes {
		updatedAt := hero.UpdatedAt.UTC()
		if updatedAt.IsZero() {
			updatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			hero.ID,
			hero.Name,
			hero.AttackType,
			hero.PrimaryAttr,
			hero.Role,
			updatedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert hero %s: %w", hero.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit heroes: %w", err)
	}
	return nil
}

func (r *heroRepository) List(ctx context.Context) ([]*models.Hero, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, attack_type, primary_attr, role, updated_at
		FROM heroes
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list heroes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var heroes []*models.Hero
	for rows.Next() {
		hero := &models.Hero{}
		if err := rows.Scan(
			&hero.ID,
			&hero.Name,
			&hero.AttackType,
			&hero.PrimaryAttr,
			&hero.Role,
			&hero.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan hero: %w", err)
		}
		heroes = append(heroes, hero)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating heroes: %w", err)
	}

	return heroes, nil
}

func (r *heroRepository) GetByID(ctx context.Context, id string) (*models.Hero, error) {
	hero := &models.Hero{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, attack_type, primary_attr, role, updated_at
		FROM heroes
		WHERE id = ?
	`, id).Scan(
		&hero.ID,
		&hero.Name,
		&hero.AttackType,
		&hero.PrimaryAttr,
		&hero.Role,
		&hero.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hero: %w", err)
	}

	return hero, nil
}

func (r *heroRepository) LastUpdated(ctx context.Context) (time.Time, error) {
	var latest time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT updated_at FROM heroes ORDER BY updated_at DESC LIMIT 1
	`).Scan(&latest)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get hero update time: %w", err)
	}
	return latest, nil
}
