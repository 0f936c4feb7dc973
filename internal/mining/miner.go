// Package mining discovers frequent hero pick sequences and reads and writes
// the SPMF pattern file format.
package mining

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// Miner names accepted by New.
const (
	MinerBuiltin = "builtin"
	MinerSPMF    = "spmf"
)

var (
	// ErrMinerUnavailable is returned when an external mining tool is missing.
	ErrMinerUnavailable = errors.New("pattern miner unavailable")

	// ErrInvalidSupport is returned for a minimum support outside (0, 1].
	ErrInvalidSupport = errors.New("minimum support must be in (0, 1]")
)

// Miner mines frequent sequential patterns from ordered item sequences.
// minSupport is the fraction of sequences a pattern must appear in.
type Miner interface {
	Mine(ctx context.Context, sequences [][]string, minSupport float64) ([]recommend.Pattern, error)
	Name() string
}

// Options configures New.
type Options struct {
	// Kind is MinerBuiltin or MinerSPMF.
	Kind string

	// MaxPatternLength caps pattern length (0 = unlimited).
	MaxPatternLength int

	// SPMF settings, used when Kind is MinerSPMF.
	SPMF SPMFOptions
}

// New returns the miner selected by opts.Kind.
func New(opts Options) (Miner, error) {
	switch opts.Kind {
	case "", MinerBuiltin:
		return &PrefixSpan{MaxLength: opts.MaxPatternLength}, nil
	case MinerSPMF:
		spmf := NewSPMF(opts.SPMF)
		spmf.MaxLength = opts.MaxPatternLength
		return spmf, nil
	default:
		return nil, fmt.Errorf("unknown miner %q", opts.Kind)
	}
}

// MinCount converts a support fraction into the absolute number of
// sequences a pattern must appear in. It is never below 1.
func MinCount(minSupport float64, sequences int) (int, error) {
	if math.IsNaN(minSupport) || minSupport <= 0 || minSupport > 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidSupport, minSupport)
	}
	// The epsilon keeps 0.1*30 from rounding up to 4.
	count := int(math.Ceil(minSupport*float64(sequences) - 1e-9))
	if count < 1 {
		count = 1
	}
	return count, nil
}
