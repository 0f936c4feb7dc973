package gui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/heroes"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/metrics"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// DraftFacade handles recommendation requests from the CLI, API, and window.
type DraftFacade struct {
	services *Services
}

// NewDraftFacade creates a new DraftFacade with the given services.
func NewDraftFacade(services *Services) *DraftFacade {
	return &DraftFacade{services: services}
}

// PickView is one resolved pick of a request.
type PickView struct {
	Input    string `json:"input"`
	HeroID   string `json:"hero_id"`
	HeroName string `json:"hero_name"`
	Resolved bool   `json:"resolved"`
}

// RecommendationResponse is the answer to a recommendation request.
// Result is nil when neither strategy produced a pick.
type RecommendationResponse struct {
	Picks       []PickView        `json:"picks"`
	Result      *recommend.Result `json:"result"`
	PortraitURL string            `json:"portrait_url,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// Recommend resolves picks (ids or names, blanks skipped) and runs the hybrid
// recommender. Unresolvable tokens are passed through as raw ids.
func (d *DraftFacade) Recommend(ctx context.Context, picks []string) (*RecommendationResponse, error) {
	if d.services.Recommender == nil {
		return nil, &AppError{Message: "Recommender not initialized", Err: ErrNotConfigured}
	}

	views, err := d.ResolvePicks(ctx, picks)
	if err != nil {
		return nil, err
	}

	selection := make([]string, len(views))
	for i, v := range views {
		selection[i] = v.HeroID
	}

	resp := &RecommendationResponse{Picks: views}
	result, ok := d.services.Recommender.Recommend(selection)
	if !ok {
		resp.Message = recommend.NoResultMessage
		metrics.RecordRecommendation(metrics.OutcomeNone)
		logging.Debug().Strs("picks", selection).Msg("No recommendation")
		return resp, nil
	}

	resp.Result = &result
	resp.PortraitURL = heroes.PortraitURL(result.ItemName)
	metrics.RecordRecommendation(result.Source)
	logging.Debug().
		Strs("picks", selection).
		Str("hero", result.ItemID).
		Str("source", result.Source).
		Int("score", result.Score).
		Msg("Recommendation served")
	return resp, nil
}

// ResolvePicks validates the pick count and resolves each token against the
// current catalog.
func (d *DraftFacade) ResolvePicks(ctx context.Context, picks []string) ([]PickView, error) {
	tokens := make([]string, 0, len(picks))
	for _, p := range picks {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}

	minPicks, maxPicks := d.services.pickLimits()
	if len(tokens) < minPicks || len(tokens) > maxPicks {
		return nil, &AppError{
			Message: fmt.Sprintf("Select between %d and %d heroes (got %d)", minPicks, maxPicks, len(tokens)),
			Err:     ErrPickCount,
		}
	}

	catalog := d.catalog(ctx)
	views := make([]PickView, len(tokens))
	for i, token := range tokens {
		if item, ok := heroes.Resolve(catalog, token); ok {
			views[i] = PickView{Input: token, HeroID: item.ID, HeroName: item.Name, Resolved: true}
			continue
		}
		views[i] = PickView{Input: token, HeroID: token, HeroName: token}
	}
	return views, nil
}

// Tally returns the pattern vote table for the given picks.
func (d *DraftFacade) Tally(ctx context.Context, picks []string) ([]recommend.Candidate, error) {
	if d.services.Recommender == nil {
		return nil, &AppError{Message: "Recommender not initialized", Err: ErrNotConfigured}
	}
	views, err := d.ResolvePicks(ctx, picks)
	if err != nil {
		return nil, err
	}
	selection := make([]string, len(views))
	for i, v := range views {
		selection[i] = v.HeroID
	}
	return d.services.Recommender.Tally(selection), nil
}

// catalog makes sure the hero catalog is loaded and returns the current snapshot.
// A failed load leaves whatever snapshot is already published.
func (d *DraftFacade) catalog(ctx context.Context) *recommend.Catalog {
	if d.services.Heroes != nil {
		if _, err := d.services.Heroes.Catalog(ctx); err != nil {
			logging.Warn().Err(err).Msg("Hero catalog unavailable, using raw ids")
		}
	}
	if d.services.Recommender == nil {
		return recommend.NewCatalog(nil)
	}
	return d.services.Recommender.Catalog().Load()
}
