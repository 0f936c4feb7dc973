package events

// Event types.
const (
	TypeRefreshStarted    = "refresh:started"
	TypePatternsRefreshed = "patterns:refreshed"
	TypePatternsReloaded  = "patterns:reloaded"
	TypeHeroesUpdated     = "heroes:updated"
)

// RefreshStartedEvent is the payload for refresh:started events.
type RefreshStartedEvent struct {
	RunID string `json:"run_id"`
}

// PatternsRefreshedEvent is the payload for patterns:refreshed events.
// Sent after a refresh run swaps the active pattern set.
type PatternsRefreshedEvent struct {
	RunID      string  `json:"run_id"`
	Miner      string  `json:"miner"`
	Sequences  int     `json:"sequences"`
	Patterns   int     `json:"patterns"`
	MinSupport float64 `json:"min_support"`
	Degraded   bool    `json:"degraded"`
	DurationMs int64   `json:"duration_ms"`
}

// PatternsReloadedEvent is the payload for patterns:reloaded events.
// Sent when the pattern file is imported or changes on disk.
type PatternsReloadedEvent struct {
	Source   string `json:"source"`
	Patterns int    `json:"patterns"`
}

// HeroesUpdatedEvent is the payload for heroes:updated events.
type HeroesUpdatedEvent struct {
	Heroes int `json:"heroes"`
}
