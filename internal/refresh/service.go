// Package refresh runs the fetch, mine, and swap pipeline that produces the
// active pattern set, and loads a set at startup.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/history"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/events"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/metrics"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/mining"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/repository"
)

// Pattern set sources other than miner names.
const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// ErrRefreshInProgress is returned when a refresh is already running.
var ErrRefreshInProgress = errors.New("pattern refresh already in progress")

// SequenceProvider supplies pick sequences. *history.Provider satisfies it.
type SequenceProvider interface {
	RecentSequences(ctx context.Context, n int) ([]history.Sequence, error)
}

// SequenceFunc adapts a function (e.g. Provider.StoredSequences) to SequenceProvider.
type SequenceFunc func(ctx context.Context, n int) ([]history.Sequence, error)

// RecentSequences calls f.
func (f SequenceFunc) RecentSequences(ctx context.Context, n int) ([]history.Sequence, error) {
	return f(ctx, n)
}

// Options configures a Service.
type Options struct {
	// MatchCount is how many recent matches to mine.
	MatchCount int

	// MinSupport is the miner's minimum support fraction.
	MinSupport float64

	// ExportPath receives the mined patterns in SPMF output format ("" disables).
	ExportPath string

	// KeepSets is how many persisted pattern sets to retain (default 10).
	KeepSets int
}

// Report summarizes one refresh run.
type Report struct {
	RunID      string        `json:"run_id"`
	Miner      string        `json:"miner"`
	Sequences  int           `json:"sequences"`
	Patterns   int           `json:"patterns"`
	MinSupport float64       `json:"min_support"`
	Degraded   bool          `json:"degraded"`
	Warnings   []string      `json:"warnings,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// Service owns pattern set production for one PatternStore.
type Service struct {
	provider   SequenceProvider
	miner      mining.Miner
	store      *recommend.PatternStore
	repo       repository.PatternRepository
	dispatcher *events.EventDispatcher
	opts       Options

	running sync.Mutex
}

// NewService creates a refresh service. repo and dispatcher may be nil.
func NewService(provider SequenceProvider, miner mining.Miner, store *recommend.PatternStore,
	repo repository.PatternRepository, dispatcher *events.EventDispatcher, opts Options) *Service {
	if opts.KeepSets <= 0 {
		opts.KeepSets = 10
	}
	return &Service{
		provider:   provider,
		miner:      miner,
		store:      store,
		repo:       repo,
		dispatcher: dispatcher,
		opts:       opts,
	}
}

// Store returns the pattern store the service swaps.
func (s *Service) Store() *recommend.PatternStore {
	return s.store
}

// Refresh fetches recent sequences, mines them, and swaps the result into the
// store. Fetch and mining failures degrade to an empty pattern set, which is
// still swapped in so recommendations fall back to similarity. Malformed
// miner output and cancellation return an error and leave the store as is.
func (s *Service) Refresh(ctx context.Context) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, ErrRefreshInProgress
	}
	defer s.running.Unlock()

	report := Report{
		RunID:      uuid.NewString(),
		Miner:      s.miner.Name(),
		MinSupport: s.opts.MinSupport,
		StartedAt:  time.Now().UTC(),
	}
	log := logging.Component("refresh").With().Str("run_id", report.RunID).Logger()
	s.dispatcher.Dispatch(events.New(events.TypeRefreshStarted, events.RefreshStartedEvent{RunID: report.RunID}))

	sequences, err := s.provider.RecentSequences(ctx, s.opts.MatchCount)
	if ctx.Err() != nil {
		return report, s.fail(report, ctx.Err())
	}
	if err != nil {
		log.Warn().Err(err).Int("sequences", len(sequences)).Msg("Sequence fetch degraded")
		report.Degraded = true
		report.Warnings = append(report.Warnings, err.Error())
	}
	report.Sequences = len(sequences)

	var patterns []recommend.Pattern
	if len(sequences) > 0 {
		patterns, err = s.miner.Mine(ctx, history.Items(sequences), s.opts.MinSupport)
		if ctx.Err() != nil {
			return report, s.fail(report, ctx.Err())
		}
		if err != nil {
			log.Warn().Err(err).Str("miner", s.miner.Name()).Msg("Mining failed, using empty pattern set")
			report.Degraded = true
			report.Warnings = append(report.Warnings, err.Error())
			patterns = nil
		}
	}

	set, err := recommend.NewPatternSet(patterns)
	if err != nil {
		return report, s.fail(report, fmt.Errorf("invalid mined patterns: %w", err))
	}
	set.ID = report.RunID
	set.Source = s.miner.Name()
	set.CreatedAt = report.StartedAt

	s.store.Replace(set)
	report.Patterns = set.Len()
	report.Duration = time.Since(report.StartedAt)

	s.persist(ctx, set, report)

	outcome := metrics.OutcomeSuccess
	if report.Degraded {
		outcome = metrics.OutcomeDegraded
	}
	metrics.RecordRefresh(outcome, report.Duration, report.Patterns)

	log.Info().
		Int("sequences", report.Sequences).
		Int("patterns", report.Patterns).
		Bool("degraded", report.Degraded).
		Dur("duration", report.Duration).
		Msg("Pattern refresh complete")

	s.dispatcher.Dispatch(events.New(events.TypePatternsRefreshed, events.PatternsRefreshedEvent{
		RunID:      report.RunID,
		Miner:      report.Miner,
		Sequences:  report.Sequences,
		Patterns:   report.Patterns,
		MinSupport: report.MinSupport,
		Degraded:   report.Degraded,
		DurationMs: report.Duration.Milliseconds(),
	}))

	return report, nil
}

func (s *Service) fail(report Report, err error) error {
	metrics.RecordRefresh(metrics.OutcomeError, time.Since(report.StartedAt), s.store.Load().Len())
	logging.Error().Err(err).Str("run_id", report.RunID).Msg("Pattern refresh failed")
	return err
}

// persist saves the set to the database and the export file. Failures are
// logged; the in-memory swap has already happened.
func (s *Service) persist(ctx context.Context, set *recommend.PatternSet, report Report) {
	if s.repo != nil {
		record := toModel(set)
		record.MinSupport = report.MinSupport
		record.SequenceCount = report.Sequences
		if err := s.repo.Save(ctx, record); err != nil {
			logging.Warn().Err(err).Msg("Failed to persist pattern set")
		} else if _, err := s.repo.Prune(ctx, s.opts.KeepSets); err != nil {
			logging.Warn().Err(err).Msg("Failed to prune pattern sets")
		}
	}

	if s.opts.ExportPath != "" {
		if err := mining.WritePatternFile(s.opts.ExportPath, set.Patterns()); err != nil {
			logging.Warn().Err(err).Str("path", s.opts.ExportPath).Msg("Failed to export patterns")
		}
	}
}

// WarmStart loads the export file into the store, falling back to the newest
// persisted set when the file is missing or empty. With neither, the store
// holds an empty set.
func (s *Service) WarmStart(ctx context.Context) (*recommend.PatternSet, error) {
	if s.opts.ExportPath != "" {
		patterns, err := mining.ReadPatternFile(s.opts.ExportPath)
		if err != nil {
			logging.Warn().Err(err).Str("path", s.opts.ExportPath).Msg("Ignoring unreadable pattern file")
		} else if len(patterns) > 0 {
			set, err := recommend.NewPatternSet(patterns)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern file: %w", err)
			}
			set.Source = SourceFile
			return s.swap(set), nil
		}
	}

	if s.repo != nil {
		record, err := s.repo.GetLatest(ctx)
		if err != nil {
			return nil, err
		}
		if record != nil {
			set, err := fromModel(record)
			if err != nil {
				return nil, fmt.Errorf("invalid stored pattern set %s: %w", record.ID, err)
			}
			return s.swap(set), nil
		}
	}

	return s.swap(recommend.EmptyPatternSet()), nil
}

// Import replaces the active set with the patterns in path. A missing file
// imports an empty set.
func (s *Service) Import(ctx context.Context, path string) (*recommend.PatternSet, error) {
	patterns, err := mining.ReadPatternFile(path)
	if err != nil {
		return nil, err
	}
	set, err := recommend.NewPatternSet(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern file: %w", err)
	}
	set.ID = uuid.NewString()
	set.Source = SourceFile
	set.CreatedAt = time.Now().UTC()

	s.swap(set)
	if s.repo != nil {
		if err := s.repo.Save(ctx, toModel(set)); err != nil {
			logging.Warn().Err(err).Msg("Failed to persist imported pattern set")
		}
	}
	return set, nil
}

// Export writes the active set to path.
func (s *Service) Export(path string) (int, error) {
	set := s.store.Load()
	if err := mining.WritePatternFile(path, set.Patterns()); err != nil {
		return 0, err
	}
	return set.Len(), nil
}

func (s *Service) swap(set *recommend.PatternSet) *recommend.PatternSet {
	s.store.Replace(set)
	metrics.PatternsLoaded.Set(float64(set.Len()))
	s.dispatcher.Dispatch(events.New(events.TypePatternsReloaded, events.PatternsReloadedEvent{
		Source:   set.Source,
		Patterns: set.Len(),
	}))
	logging.Info().Str("source", set.Source).Int("patterns", set.Len()).Msg("Pattern set loaded")
	return set
}

func toModel(set *recommend.PatternSet) *models.PatternSet {
	patterns := set.Patterns()
	record := &models.PatternSet{
		ID:        set.ID,
		Source:    set.Source,
		CreatedAt: set.CreatedAt,
		Patterns:  make([]models.Pattern, len(patterns)),
	}
	for i, p := range patterns {
		record.Patterns[i] = models.Pattern{Items: p.Items, Support: p.Support}
	}
	return record
}

func fromModel(record *models.PatternSet) (*recommend.PatternSet, error) {
	patterns := make([]recommend.Pattern, len(record.Patterns))
	for i, p := range record.Patterns {
		patterns[i] = recommend.Pattern{Items: p.Items, Support: p.Support}
	}
	set, err := recommend.NewPatternSet(patterns)
	if err != nil {
		return nil, err
	}
	set.ID = record.ID
	set.Source = SourceDatabase
	set.CreatedAt = record.CreatedAt
	return set, nil
}
