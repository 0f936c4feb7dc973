package gui

import (
	"context"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/heroes"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/opendota"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/events"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/refresh"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage"
)

// Default pick limits for a recommendation request.
const (
	DefaultMinPicks = 2
	DefaultMaxPicks = 4
)

// Services contains all shared services needed by facades.
// This struct is passed to each facade to provide access to common dependencies.
type Services struct {
	// Context for the application
	Context context.Context

	// Storage service for database operations (optional)
	Storage *storage.Service

	// Hero catalog loader; publishes into Recommender.Catalog()
	Heroes *heroes.Service

	// Shared OpenDota client, reported on /health (optional)
	OpenDota *opendota.Client

	// Hybrid recommender over the live pattern and catalog stores
	Recommender *recommend.Recommender

	// Pattern refresh pipeline
	Refresh *refresh.Service

	// Event dispatcher for refresh and reload notifications
	Dispatcher *events.EventDispatcher

	// Pick count limits for recommendation requests
	MinPicks int
	MaxPicks int
}

func (s *Services) context() context.Context {
	if s.Context != nil {
		return s.Context
	}
	return context.Background()
}

func (s *Services) pickLimits() (int, int) {
	minPicks, maxPicks := s.MinPicks, s.MaxPicks
	if minPicks <= 0 {
		minPicks = DefaultMinPicks
	}
	if maxPicks < minPicks {
		maxPicks = max(DefaultMaxPicks, minPicks)
	}
	return minPicks, maxPicks
}

// Facades holds one instance of each facade over shared services.
type Facades struct {
	Draft   *DraftFacade
	Hero    *HeroFacade
	Pattern *PatternFacade
}

// NewFacades creates every facade over services.
func NewFacades(services *Services) *Facades {
	return &Facades{
		Draft:   NewDraftFacade(services),
		Hero:    NewHeroFacade(services),
		Pattern: NewPatternFacade(services),
	}
}
