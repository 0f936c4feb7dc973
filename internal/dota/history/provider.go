// Package history turns recent public OpenDota matches into ordered hero
// pick sequences.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/opendota"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/metrics"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/repository"
)

// DefaultCacheTTL is how long the public match listing is reused.
const DefaultCacheTTL = time.Hour

// MatchSource lists and fetches matches. *opendota.Client satisfies it.
type MatchSource interface {
	GetPublicMatches(ctx context.Context) ([]opendota.PublicMatch, error)
	GetMatch(ctx context.Context, matchID int64) (*opendota.Match, error)
}

// Sequence is the ordered pick sequence of one match.
type Sequence struct {
	MatchID   int64
	StartTime time.Time
	Picks     []string
}

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	// Repo persists fetched sequences (optional).
	Repo repository.MatchRepository

	// CacheTTL for the public match listing (default: 1 hour).
	CacheTTL time.Duration

	// CSVPath, when set, receives a match_id,hero_pick_sequence export after
	// every fetch.
	CSVPath string
}

// Provider fetches recent pick sequences.
type Provider struct {
	source   MatchSource
	repo     repository.MatchRepository
	cacheTTL time.Duration
	csvPath  string
	now      func() time.Time

	mu       sync.Mutex
	listing  []opendota.PublicMatch
	listedAt time.Time
}

// NewProvider creates a history provider.
func NewProvider(source MatchSource, opts ProviderOptions) *Provider {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Provider{
		source:   source,
		repo:     opts.Repo,
		cacheTTL: opts.CacheTTL,
		csvPath:  opts.CSVPath,
		now:      time.Now,
	}
}

// RecentSequences fetches the pick sequences of up to n recent public
// matches. Matches without picks or unknown to OpenDota are skipped.
// Transport failures do not abort the fetch: the sequences gathered so far
// are returned together with the first error encountered.
func (p *Provider) RecentSequences(ctx context.Context, n int) ([]Sequence, error) {
	if n <= 0 {
		return nil, nil
	}

	listing, err := p.publicMatches(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to list recent public matches")
		return nil, fmt.Errorf("failed to list public matches: %w", err)
	}
	if len(listing) > n {
		listing = listing[:n]
	}

	var (
		sequences []Sequence
		firstErr  error
	)
	for _, pm := range listing {
		if ctx.Err() != nil {
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			break
		}

		match, err := p.source.GetMatch(ctx, pm.MatchID)
		if opendota.IsNotFound(err) {
			logging.Debug().Int64("match_id", pm.MatchID).Msg("Match not found, skipping")
			continue
		}
		if err != nil {
			logging.Debug().Err(err).Int64("match_id", pm.MatchID).Msg("Skipping match")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to fetch match %d: %w", pm.MatchID, err)
			}
			if isCircuitOpen(err) {
				break
			}
			continue
		}

		picks := Picks(match)
		if len(picks) == 0 {
			continue
		}

		startTime := pm.StartTime
		if match.StartTime != 0 {
			startTime = match.StartTime
		}
		sequences = append(sequences, Sequence{
			MatchID:   pm.MatchID,
			StartTime: unixTime(startTime),
			Picks:     picks,
		})
	}

	logging.Info().
		Int("requested", n).
		Int("listed", len(listing)).
		Int("sequences", len(sequences)).
		Msg("Fetched recent pick sequences")

	p.persist(ctx, sequences)

	if firstErr != nil {
		logging.Warn().Err(firstErr).Int("sequences", len(sequences)).Msg("Match history is partial")
	}
	return sequences, firstErr
}

// StoredSequences returns up to n previously persisted sequences, newest first.
func (p *Provider) StoredSequences(ctx context.Context, n int) ([]Sequence, error) {
	if p.repo == nil || n <= 0 {
		return nil, nil
	}

	drafts, err := p.repo.GetRecent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored sequences: %w", err)
	}

	sequences := make([]Sequence, 0, len(drafts))
	for _, d := range drafts {
		if len(d.Picks) == 0 {
			continue
		}
		sequences = append(sequences, Sequence{MatchID: d.MatchID, StartTime: d.StartTime, Picks: d.Picks})
	}
	return sequences, nil
}

// publicMatches returns the cached listing or fetches a new one.
func (p *Provider) publicMatches(ctx context.Context) ([]opendota.PublicMatch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.listing != nil && p.now().Sub(p.listedAt) < p.cacheTTL {
		metrics.RecordCache("public_matches", true)
		return p.listing, nil
	}
	metrics.RecordCache("public_matches", false)

	listing, err := p.source.GetPublicMatches(ctx)
	if err != nil {
		return nil, err
	}

	p.listing = listing
	p.listedAt = p.now()
	return listing, nil
}

func (p *Provider) persist(ctx context.Context, sequences []Sequence) {
	if len(sequences) == 0 {
		return
	}

	if p.repo != nil {
		drafts := make([]*models.MatchDraft, 0, len(sequences))
		for _, s := range sequences {
			drafts = append(drafts, &models.MatchDraft{MatchID: s.MatchID, StartTime: s.StartTime, Picks: s.Picks})
		}
		if err := p.repo.SaveAll(ctx, drafts); err != nil {
			logging.Warn().Err(err).Msg("Failed to persist match drafts")
		}
	}

	if p.csvPath != "" {
		if err := WriteCSV(p.csvPath, sequences); err != nil {
			logging.Warn().Err(err).Str("path", p.csvPath).Msg("Failed to write matches CSV")
		}
	}
}

// Picks returns the hero ids of a match's picks (bans excluded) ordered by
// draft order.
func Picks(match *opendota.Match) []string {
	if match == nil || len(match.PicksBans) == 0 {
		return nil
	}

	picks := make([]opendota.PickBan, 0, len(match.PicksBans))
	for _, pb := range match.PicksBans {
		if pb.IsPick {
			picks = append(picks, pb)
		}
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Order < picks[j].Order
	})

	ids := make([]string, 0, len(picks))
	for _, pb := range picks {
		ids = append(ids, strconv.Itoa(pb.HeroID))
	}
	return ids
}

// Items returns the bare pick lists of sequences.
func Items(sequences []Sequence) [][]string {
	out := make([][]string, 0, len(sequences))
	for _, s := range sequences {
		out = append(out, s.Picks)
	}
	return out
}

func isCircuitOpen(err error) bool {
	var apiErr *opendota.APIError
	return errors.As(err, &apiErr) && apiErr.Type == opendota.ErrCircuitOpen
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
