package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/config"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/heroes"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/history"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/opendota"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/events"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/gui"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/metrics"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/mining"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/refresh"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage"
)

// appOptions tweaks how the application is assembled for one command.
type appOptions struct {
	// offline mines previously stored sequences instead of calling OpenDota
	offline bool

	// csvPath mines sequences from a match CSV instead of calling OpenDota
	csvPath string
}

// application is the fully wired service graph shared by every command.
type application struct {
	cfg      *config.Config
	storage  *storage.Service
	patterns *recommend.PatternStore
	services *gui.Services
	facades  *gui.Facades
}

// newApplication opens storage, builds the OpenDota-backed services and loads
// the last known pattern set.
func newApplication(ctx context.Context, cfg *config.Config, opts appOptions) (*application, error) {
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}
	cacheTTL, err := cfg.GetCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}
	heroTTL, err := cfg.GetHeroCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid hero cache TTL: %w", err)
	}

	miner, err := mining.New(mining.Options{
		Kind:             strings.ToLower(cfg.Mining.Miner),
		MaxPatternLength: cfg.Mining.MaxPatternLength,
		SPMF: mining.SPMFOptions{
			JarPath:  cfg.Mining.SPMFJar,
			JavaPath: cfg.Mining.JavaPath,
			WorkDir:  cfg.Mining.WorkDir,
		},
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.OpenService(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	clientOpts := opendota.DefaultClientOptions()
	clientOpts.BaseURL = cfg.OpenDota.BaseURL
	clientOpts.RateLimit = rate.Limit(cfg.OpenDota.RateLimit)
	clientOpts.Timeout = timeout
	client := opendota.NewClient(clientOpts)

	catalogStore := recommend.NewCatalogStore(nil)
	heroService := heroes.NewService(client, store.Heroes(), catalogStore, heroTTL)

	providerOpts := history.ProviderOptions{Repo: store.Matches(), CacheTTL: cacheTTL}
	if cfg.OpenDota.WriteCSV {
		providerOpts.CSVPath = filepath.Join(filepath.Dir(cfg.Storage.DBPath), "matches.csv")
	}
	provider := history.NewProvider(client, providerOpts)

	var sequences refresh.SequenceProvider = provider
	switch {
	case opts.csvPath != "":
		sequences = csvSequences(opts.csvPath)
	case opts.offline:
		sequences = refresh.SequenceFunc(provider.StoredSequences)
	}

	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(events.NewLoggingObserver(debug))

	patternStore := recommend.NewPatternStore(nil)
	refreshService := refresh.NewService(sequences, miner, patternStore, store.Patterns(), dispatcher, refresh.Options{
		MatchCount: cfg.OpenDota.MatchCount,
		MinSupport: cfg.Mining.MinSupport,
		ExportPath: cfg.Patterns.ExportPath,
	})
	if _, err := refreshService.WarmStart(ctx); err != nil {
		logging.Warn().Err(err).Msg("Could not load saved patterns, starting with none")
	}

	services := &gui.Services{
		Context:     ctx,
		Storage:     store,
		Heroes:      heroService,
		OpenDota:    client,
		Recommender: recommend.NewRecommender(patternStore, catalogStore, nil),
		Refresh:     refreshService,
		Dispatcher:  dispatcher,
		MinPicks:    cfg.Recommend.MinPicks,
		MaxPicks:    cfg.Recommend.MaxPicks,
	}

	return &application{
		cfg:      cfg,
		storage:  store,
		patterns: patternStore,
		services: services,
		facades:  gui.NewFacades(services),
	}, nil
}

// csvSequences reads up to n sequences from a file written with
// [opendota] write_csv.
func csvSequences(path string) refresh.SequenceFunc {
	return func(_ context.Context, n int) ([]history.Sequence, error) {
		sequences, err := history.ReadCSV(path)
		if err != nil {
			return nil, err
		}
		if n > 0 && len(sequences) > n {
			sequences = sequences[:n]
		}
		return sequences, nil
	}
}

// watchPatterns reloads the export file into the live store whenever it
// changes on disk, until ctx is done.
func (a *application) watchPatterns(ctx context.Context) {
	if !a.cfg.Patterns.Watch || a.cfg.Patterns.ExportPath == "" {
		return
	}

	watcher := mining.NewWatcher(a.cfg.Patterns.ExportPath, a.patterns)
	watcher.OnReload = func(set *recommend.PatternSet) {
		metrics.PatternsLoaded.Set(float64(set.Len()))
		a.services.Dispatcher.DispatchAsync(events.New(events.TypePatternsReloaded, events.PatternsReloadedEvent{
			Source:   set.Source,
			Patterns: set.Len(),
		}))
	}

	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Error().Err(err).Msg("Pattern file watcher stopped")
		}
	}()
}

// Close releases the database.
func (a *application) Close() {
	if err := a.storage.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing database")
	}
}

// withApp builds the application for the duration of fn.
func withApp(ctx context.Context, opts appOptions, fn func(*application) error) error {
	app, err := newApplication(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
