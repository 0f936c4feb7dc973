package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/opendota"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
)

type fakeSource struct {
	listing    []opendota.PublicMatch
	listErr    error
	matches    map[int64]*opendota.Match
	matchErrs  map[int64]error
	listCalls  int
	matchCalls int
}

func (f *fakeSource) GetPublicMatches(ctx context.Context) ([]opendota.PublicMatch, error) {
	f.listCalls++
	return f.listing, f.listErr
}

func (f *fakeSource) GetMatch(ctx context.Context, matchID int64) (*opendota.Match, error) {
	f.matchCalls++
	if err := f.matchErrs[matchID]; err != nil {
		return nil, err
	}
	if m, ok := f.matches[matchID]; ok {
		return m, nil
	}
	return &opendota.Match{MatchID: matchID}, nil
}

type fakeRepo struct {
	saved []*models.MatchDraft
}

func (r *fakeRepo) SaveAll(ctx context.Context, drafts []*models.MatchDraft) error {
	r.saved = append(r.saved, drafts...)
	return nil
}

func (r *fakeRepo) GetRecent(ctx context.Context, limit int) ([]*models.MatchDraft, error) {
	if limit < len(r.saved) {
		return r.saved[:limit], nil
	}
	return r.saved, nil
}

func (r *fakeRepo) Exists(ctx context.Context, matchID int64) (bool, error) { return false, nil }

func (r *fakeRepo) Count(ctx context.Context) (int, error) { return len(r.saved), nil }

func draft(id int64, actions ...opendota.PickBan) *opendota.Match {
	return &opendota.Match{MatchID: id, StartTime: 1700000000, PicksBans: actions}
}

func pick(hero, order int) opendota.PickBan {
	return opendota.PickBan{IsPick: true, HeroID: hero, Order: order}
}

func ban(hero, order int) opendota.PickBan {
	return opendota.PickBan{IsPick: false, HeroID: hero, Order: order}
}

func newSource() *fakeSource {
	return &fakeSource{
		listing: []opendota.PublicMatch{{MatchID: 1}, {MatchID: 2}, {MatchID: 3}, {MatchID: 4}},
		matches: map[int64]*opendota.Match{
			1: draft(1, pick(5, 2), ban(99, 0), pick(1, 1)),
			2: draft(2), // no draft data
			3: draft(3, pick(7, 0), pick(8, 1)),
			4: draft(4, pick(9, 0)),
		},
	}
}

func TestPicks(t *testing.T) {
	m := draft(1, pick(5, 3), ban(99, 0), pick(1, 1), pick(2, 2))
	assert.Equal(t, []string{"1", "2", "5"}, Picks(m))
	assert.Nil(t, Picks(nil))
	assert.Nil(t, Picks(&opendota.Match{}))
}

func TestRecentSequences(t *testing.T) {
	source := newSource()
	repo := &fakeRepo{}
	p := NewProvider(source, ProviderOptions{Repo: repo})

	seqs, err := p.RecentSequences(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, seqs, 2, "match without picks is skipped")
	assert.Equal(t, []string{"1", "5"}, seqs[0].Picks)
	assert.Equal(t, []string{"7", "8"}, seqs[1].Picks)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), seqs[0].StartTime)
	assert.Equal(t, 3, source.matchCalls)
	assert.Len(t, repo.saved, 2)

	assert.Equal(t, [][]string{{"1", "5"}, {"7", "8"}}, Items(seqs))
}

func TestRecentSequences_ListingCached(t *testing.T) {
	source := newSource()
	p := NewProvider(source, ProviderOptions{CacheTTL: time.Hour})
	now := time.Now()
	p.now = func() time.Time { return now }

	_, err := p.RecentSequences(context.Background(), 1)
	require.NoError(t, err)
	_, err = p.RecentSequences(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, source.listCalls)

	now = now.Add(2 * time.Hour)
	_, err = p.RecentSequences(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, source.listCalls)
}

func TestRecentSequences_ListingFailure(t *testing.T) {
	source := &fakeSource{listErr: errors.New("connection refused")}
	p := NewProvider(source, ProviderOptions{})

	seqs, err := p.RecentSequences(context.Background(), 30)
	assert.Error(t, err)
	assert.Empty(t, seqs)
}

func TestRecentSequences_PartialFailure(t *testing.T) {
	source := newSource()
	source.matchErrs = map[int64]error{3: errors.New("timeout")}
	p := NewProvider(source, ProviderOptions{})

	seqs, err := p.RecentSequences(context.Background(), 4)
	assert.Error(t, err)
	require.Len(t, seqs, 2)
	assert.Equal(t, int64(1), seqs[0].MatchID)
	assert.Equal(t, int64(4), seqs[1].MatchID)
}

func TestRecentSequences_CircuitOpenStops(t *testing.T) {
	source := newSource()
	source.matchErrs = map[int64]error{1: &opendota.APIError{Type: opendota.ErrCircuitOpen, Message: "open"}}
	p := NewProvider(source, ProviderOptions{})

	seqs, err := p.RecentSequences(context.Background(), 4)
	assert.Error(t, err)
	assert.Empty(t, seqs)
	assert.Equal(t, 1, source.matchCalls)
}

func TestRecentSequences_MissingMatchDoesNotStallClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/publicMatches", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"match_id":1},{"match_id":2},{"match_id":3},{"match_id":4},{"match_id":5}]`))
	})
	mux.HandleFunc("/api/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "1" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprintf(w, `{"match_id":%s,"start_time":1700000000,"picks_bans":[
			{"is_pick":true,"hero_id":%s,"team":0,"order":0},
			{"is_pick":true,"hero_id":50,"team":1,"order":1}]}`, id, id)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := opendota.NewClient(opendota.ClientOptions{
		BaseURL:        server.URL,
		RateLimit:      rate.Inf,
		Timeout:        5 * time.Second,
		InitialBackoff: time.Hour,
	})
	p := NewProvider(client, ProviderOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seqs, err := p.RecentSequences(ctx, 5)
	require.NoError(t, err)
	require.Len(t, seqs, 4)
	assert.Equal(t, int64(2), seqs[0].MatchID)
	assert.Equal(t, []string{"2", "50"}, seqs[0].Picks)
	assert.Equal(t, "closed", client.BreakerState())
}

func TestRecentSequences_ZeroRequested(t *testing.T) {
	source := newSource()
	p := NewProvider(source, ProviderOptions{})

	seqs, err := p.RecentSequences(context.Background(), 0)
	assert.NoError(t, err)
	assert.Empty(t, seqs)
	assert.Equal(t, 0, source.listCalls)
}

func TestStoredSequences(t *testing.T) {
	repo := &fakeRepo{saved: []*models.MatchDraft{
		{MatchID: 1, Picks: []string{"1", "2"}},
		{MatchID: 2},
	}}
	p := NewProvider(newSource(), ProviderOptions{Repo: repo})

	seqs, err := p.StoredSequences(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	assert.Equal(t, []string{"1", "2"}, seqs[0].Picks)

	none, err := NewProvider(newSource(), ProviderOptions{}).StoredSequences(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "matches.csv")
	p := NewProvider(newSource(), ProviderOptions{CSVPath: path})

	seqs, err := p.RecentSequences(context.Background(), 4)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "match_id,hero_pick_sequence\n1,1 5\n3,7 8\n4,9\n", string(raw))

	read, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, read, len(seqs))
	for i := range seqs {
		assert.Equal(t, seqs[i].MatchID, read[i].MatchID)
		assert.Equal(t, seqs[i].Picks, read[i].Picks)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("match_id,hero_pick_sequence\nabc,1 2\n"), 0o644))
	_, err = ReadCSV(bad)
	assert.Error(t, err)
}
