package gui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/refresh"
)

// DefaultPatternLimit caps pattern listings when no limit is given.
const DefaultPatternLimit = 20

// PatternFacade exposes the active pattern set and the refresh pipeline.
type PatternFacade struct {
	services *Services
	running  atomic.Bool
}

// NewPatternFacade creates a new PatternFacade.
func NewPatternFacade(services *Services) *PatternFacade {
	return &PatternFacade{services: services}
}

// PatternView is a pattern with display names resolved.
type PatternView struct {
	Items   []string `json:"hero_ids"`
	Names   []string `json:"hero_names"`
	Support int      `json:"support"`
}

// PatternSetStatus describes the active pattern set.
type PatternSetStatus struct {
	ID        string    `json:"id,omitempty"`
	Source    string    `json:"source,omitempty"`
	Patterns  int       `json:"patterns"`
	CreatedAt time.Time `json:"created_at"`
}

// PatternListResponse is the active set's status and its top patterns.
type PatternListResponse struct {
	Status   PatternSetStatus `json:"status"`
	Patterns []PatternView    `json:"patterns"`
}

// ListPatterns returns the highest-support patterns of the active set.
func (p *PatternFacade) ListPatterns(_ context.Context, limit int) (*PatternListResponse, error) {
	if p.services.Recommender == nil {
		return nil, &AppError{Message: "Recommender not initialized", Err: ErrNotConfigured}
	}
	if limit <= 0 {
		limit = DefaultPatternLimit
	}

	set := p.services.Recommender.Patterns().Load()
	catalog := p.services.Recommender.Catalog().Load()

	top := set.Top(limit)
	views := make([]PatternView, len(top))
	for i, pattern := range top {
		views[i] = toPatternView(pattern, catalog)
	}

	return &PatternListResponse{Status: statusOf(set), Patterns: views}, nil
}

// GetStatus describes the active pattern set.
func (p *PatternFacade) GetStatus() PatternSetStatus {
	if p.services.Recommender == nil {
		return PatternSetStatus{}
	}
	return statusOf(p.services.Recommender.Patterns().Load())
}

// RefreshPatterns runs the fetch, mine, and swap pipeline. A requested
// refresh does not wait out backoff left by earlier failures.
func (p *PatternFacade) RefreshPatterns(ctx context.Context) (*refresh.Report, error) {
	if p.services.Refresh == nil {
		return nil, &AppError{Message: "Refresh pipeline not initialized", Err: ErrNotConfigured}
	}
	if p.services.OpenDota != nil {
		p.services.OpenDota.ResetBackoff()
	}
	report, err := p.services.Refresh.Refresh(ctx)
	if err != nil {
		if errors.Is(err, refresh.ErrRefreshInProgress) {
			return nil, &AppError{Message: "A refresh is already running", Err: err}
		}
		return nil, &AppError{Message: fmt.Sprintf("Pattern refresh failed: %v", err), Err: err}
	}
	return &report, nil
}

// StartRefresh runs the refresh pipeline in the background on the
// application context. It returns false when a refresh started here is
// still running. onDone may be nil.
func (p *PatternFacade) StartRefresh(onDone func(*refresh.Report, error)) (bool, error) {
	if p.services.Refresh == nil {
		return false, &AppError{Message: "Refresh pipeline not initialized", Err: ErrNotConfigured}
	}
	if !p.running.CompareAndSwap(false, true) {
		return false, nil
	}

	go func() {
		defer p.running.Store(false)
		report, err := p.RefreshPatterns(p.services.context())
		if err != nil {
			logging.Warn().Err(err).Msg("Background pattern refresh failed")
		}
		if onDone != nil {
			onDone(report, err)
		}
	}()
	return true, nil
}

// Refreshing reports whether a background refresh is running.
func (p *PatternFacade) Refreshing() bool {
	return p.running.Load()
}

func statusOf(set *recommend.PatternSet) PatternSetStatus {
	return PatternSetStatus{
		ID:        set.ID,
		Source:    set.Source,
		Patterns:  set.Len(),
		CreatedAt: set.CreatedAt,
	}
}

func toPatternView(p recommend.Pattern, catalog *recommend.Catalog) PatternView {
	view := PatternView{
		Items:   p.Items,
		Names:   make([]string, len(p.Items)),
		Support: p.Support,
	}
	for i, id := range p.Items {
		view.Names[i] = catalog.DisplayName(id)
	}
	return view
}
