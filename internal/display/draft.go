package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/heroes"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/gui"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/refresh"
)

// Displayer renders draft data as plain terminal text.
type Displayer struct {
	out io.Writer
}

// NewDisplayer creates a displayer writing to out (stdout when nil).
func NewDisplayer(out io.Writer) *Displayer {
	if out == nil {
		out = os.Stdout
	}
	return &Displayer{out: out}
}

func (d *Displayer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format, args...)
}

// DisplayRecommendation shows the resolved picks and the suggested hero.
func (d *Displayer) DisplayRecommendation(resp *gui.RecommendationResponse) {
	if resp == nil {
		d.printf("%s\n", recommend.NoResultMessage)
		return
	}

	d.printf("\nDraft So Far\n")
	d.printf("════════════\n")
	for i, pick := range resp.Picks {
		prefix := "├─"
		if i == len(resp.Picks)-1 {
			prefix = "└─"
		}
		if pick.Resolved {
			d.printf("%s %d. %s\n", prefix, i+1, pick.HeroName)
		} else {
			d.printf("%s %d. %s (unknown hero)\n", prefix, i+1, pick.Input)
		}
	}
	d.printf("\n")

	if resp.Result == nil {
		d.printf("%s\n", resp.Message)
		return
	}

	r := resp.Result
	switch r.Source {
	case recommend.SourcePattern:
		d.printf("Recommended Hero: %s\n", r.ItemName)
		d.printf("  Seen next in %d matching pick patterns\n", r.Score)
	default:
		d.printf("Recommended Hero: %s\n", r.ItemName)
		d.printf("  No pattern matched; similar to %s\n", lastPickName(resp.Picks))
	}
}

func lastPickName(picks []gui.PickView) string {
	if len(picks) == 0 {
		return "the last pick"
	}
	last := picks[len(picks)-1]
	if last.HeroName != "" {
		return last.HeroName
	}
	return last.Input
}

// DisplayTally lists every candidate the matching patterns voted for.
func (d *Displayer) DisplayTally(tally []recommend.Candidate, catalog *recommend.Catalog) {
	if len(tally) == 0 {
		d.printf("No pattern extends this draft.\n")
		return
	}

	d.printf("%-4s %-28s %s\n", "#", "Hero", "Votes")
	d.printf("%s\n", strings.Repeat("─", 42))
	for i, candidate := range tally {
		d.printf("%-4d %-28s %d\n", i+1, truncateString(catalog.DisplayName(candidate.ItemID), 26), candidate.Score)
	}
}

// DisplayPatterns shows the active set's status and its top patterns.
func (d *Displayer) DisplayPatterns(list *gui.PatternListResponse) {
	if list == nil || list.Status.Patterns == 0 {
		d.printf("No patterns loaded.\n")
		return
	}

	status := list.Status
	d.printf("\nPattern Set %s\n", status.ID)
	d.printf("Source:   %s\n", status.Source)
	d.printf("Patterns: %d\n", status.Patterns)
	if !status.CreatedAt.IsZero() {
		d.printf("Created:  %s\n", status.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	d.printf("\n%-8s %s\n", "Support", "Picks")
	d.printf("%s\n", strings.Repeat("─", 60))
	for _, p := range list.Patterns {
		d.printf("%-8d %s\n", p.Support, strings.Join(p.Names, " > "))
	}
}

// DisplayHeroSearch lists search matches best first.
func (d *Displayer) DisplayHeroSearch(results []heroes.SearchResult) {
	if len(results) == 0 {
		d.printf("No heroes found.\n")
		return
	}

	d.printf("%-6s %-24s %-10s %-8s %s\n", "ID", "Name", "Attr", "Attack", "Role")
	d.printf("%s\n", strings.Repeat("─", 64))
	for _, r := range results {
		h := r.Hero
		d.printf("%-6s %-24s %-10s %-8s %s\n", h.ID, truncateString(h.Name, 22), h.PrimaryAttribute, h.AttackType, h.Role)
	}
}

// DisplayRefreshReport summarizes a refresh run.
func (d *Displayer) DisplayRefreshReport(report refresh.Report) {
	d.printf("\nRefresh %s\n", report.RunID)
	d.printf("├─ Miner:       %s\n", report.Miner)
	d.printf("├─ Sequences:   %d\n", report.Sequences)
	d.printf("├─ Min support: %g\n", report.MinSupport)
	d.printf("├─ Patterns:    %d\n", report.Patterns)
	d.printf("└─ Duration:    %s\n", report.Duration.Round(time.Millisecond))
	if report.Degraded {
		d.printf("\nRefresh degraded; recommendations fall back to hero similarity.\n")
	}
	for _, w := range report.Warnings {
		d.printf("Warning: %s\n", w)
	}
}

// truncateString truncates a string to the specified length, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
