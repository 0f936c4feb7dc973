package opendota

import (
	"errors"
	"fmt"
	"time"
)

// PublicMatch is one entry of the /api/publicMatches listing.
type PublicMatch struct {
	MatchID     int64 `json:"match_id"`
	StartTime   int64 `json:"start_time"`
	Duration    int   `json:"duration"`
	RadiantWin  bool  `json:"radiant_win"`
	LobbyType   int   `json:"lobby_type"`
	GameMode    int   `json:"game_mode"`
	AvgRankTier int   `json:"avg_rank_tier,omitempty"`
}

// PickBan is one draft action in a match.
type PickBan struct {
	IsPick bool `json:"is_pick"`
	HeroID int  `json:"hero_id"`
	Team   int  `json:"team"`
	Order  int  `json:"order"`
}

// Match is the subset of /api/matches/{id} the companion uses.
type Match struct {
	MatchID    int64     `json:"match_id"`
	StartTime  int64     `json:"start_time"`
	RadiantWin bool      `json:"radiant_win"`
	PicksBans  []PickBan `json:"picks_bans"`
}

// HeroStats is one entry of the /api/heroStats listing.
type HeroStats struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	LocalizedName string   `json:"localized_name"`
	PrimaryAttr   string   `json:"primary_attr"`
	AttackType    string   `json:"attack_type"`
	Roles         []string `json:"roles"`
}

// Error types
const (
	ErrRateLimited   = "rate_limited"
	ErrUnavailable   = "unavailable"
	ErrInvalidParams = "invalid_params"
	ErrParseError    = "parse_error"
	ErrCircuitOpen   = "circuit_open"
	ErrNotFound      = "not_found"
)

// APIError represents an error from the OpenDota API.
type APIError struct {
	Type       string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("opendota %s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("opendota %s: %s", e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an OpenDota 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrNotFound
}

// ClientStats tracks client request statistics.
type ClientStats struct {
	TotalRequests     int64
	FailedRequests    int64
	ConsecutiveErrors int
	LastRequestTime   time.Time
	LastSuccessTime   time.Time
	LastFailureTime   time.Time
	AverageLatency    time.Duration
}
