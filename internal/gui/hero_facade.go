package gui

import (
	"context"
	"errors"
	"fmt"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/heroes"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/events"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// DefaultSearchLimit caps hero search results when no limit is given.
const DefaultSearchLimit = 10

// HeroFacade exposes the hero catalog.
type HeroFacade struct {
	services *Services
}

// NewHeroFacade creates a new HeroFacade.
func NewHeroFacade(services *Services) *HeroFacade {
	return &HeroFacade{services: services}
}

// GetCatalog returns the current catalog, loading it if needed.
func (h *HeroFacade) GetCatalog(ctx context.Context) (*recommend.Catalog, error) {
	if h.services.Heroes == nil {
		if h.services.Recommender != nil {
			return h.services.Recommender.Catalog().Load(), nil
		}
		return nil, &AppError{Message: "Hero catalog not initialized", Err: ErrNotConfigured}
	}

	catalog, err := h.services.Heroes.Catalog(ctx)
	if err != nil {
		if errors.Is(err, heroes.ErrNoCatalog) {
			return nil, &AppError{Message: "No hero data available yet. Check your connection and retry.", Err: err}
		}
		return nil, &AppError{Message: fmt.Sprintf("Failed to load heroes: %v", err), Err: err}
	}
	return catalog, nil
}

// ListHeroes returns every hero in catalog order.
func (h *HeroFacade) ListHeroes(ctx context.Context) ([]recommend.Item, error) {
	catalog, err := h.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.List(), nil
}

// SearchHeroes fuzzy-matches hero names.
func (h *HeroFacade) SearchHeroes(ctx context.Context, query string, limit int) ([]heroes.SearchResult, error) {
	catalog, err := h.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	results := heroes.Search(catalog, query, limit)
	if results == nil {
		results = []heroes.SearchResult{}
	}
	return results, nil
}

// RefreshHeroes reloads the catalog from OpenDota, ignoring the cache TTL.
func (h *HeroFacade) RefreshHeroes(ctx context.Context) (int, error) {
	if h.services.Heroes == nil {
		return 0, &AppError{Message: "Hero catalog not initialized", Err: ErrNotConfigured}
	}
	catalog, err := h.services.Heroes.Refresh(ctx)
	if err != nil {
		return catalog.Len(), &AppError{Message: fmt.Sprintf("Failed to refresh heroes: %v", err), Err: err}
	}
	h.services.Dispatcher.Dispatch(events.New(events.TypeHeroesUpdated, events.HeroesUpdatedEvent{Heroes: catalog.Len()}))
	return catalog.Len(), nil
}
