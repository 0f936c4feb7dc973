package storage

import (
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/repository"
)

// Service bundles the repositories over one database.
type Service struct {
	db       *DB
	heroes   repository.HeroRepository
	matches  repository.MatchRepository
	patterns repository.PatternRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:       db,
		heroes:   repository.NewHeroRepository(db.Conn()),
		matches:  repository.NewMatchRepository(db.Conn()),
		patterns: repository.NewPatternRepository(db.Conn()),
	}
}

// OpenService opens (and migrates) the database at path.
func OpenService(path string) (*Service, error) {
	config := DefaultConfig(path)
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		return nil, err
	}
	return NewService(db), nil
}

// Heroes returns the hero repository.
func (s *Service) Heroes() repository.HeroRepository { return s.heroes }

// Matches returns the match draft repository.
func (s *Service) Matches() repository.MatchRepository { return s.matches }

// Patterns returns the pattern set repository.
func (s *Service) Patterns() repository.PatternRepository { return s.patterns }

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}
