package mining

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// SPMFOptions locates the SPMF toolkit.
type SPMFOptions struct {
	// JarPath is the spmf.jar location (default: "spmf.jar").
	JarPath string

	// JavaPath is the java executable (default: "java", resolved via PATH).
	JavaPath string

	// WorkDir receives the input/output files (default: a temp dir per run).
	WorkDir string

	// Algorithm is the SPMF algorithm name (default: "PrefixSpan").
	Algorithm string
}

// SPMF runs the SPMF Java toolkit as an external process.
type SPMF struct {
	opts SPMFOptions

	// MaxLength drops patterns longer than this (0 = unlimited).
	MaxLength int

	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewSPMF creates an SPMF adapter.
func NewSPMF(opts SPMFOptions) *SPMF {
	if opts.JarPath == "" {
		opts.JarPath = "spmf.jar"
	}
	if opts.JavaPath == "" {
		opts.JavaPath = "java"
	}
	if opts.Algorithm == "" {
		opts.Algorithm = "PrefixSpan"
	}
	return &SPMF{
		opts:     opts,
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
	}
}

// Name implements Miner.
func (s *SPMF) Name() string { return MinerSPMF }

// Available reports whether java and the jar can be found.
func (s *SPMF) Available() error {
	if _, err := os.Stat(s.opts.JarPath); err != nil {
		return fmt.Errorf("%w: %s not found", ErrMinerUnavailable, s.opts.JarPath)
	}
	if _, err := s.lookPath(s.opts.JavaPath); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMinerUnavailable, s.opts.JavaPath, err)
	}
	return nil
}

// Mine writes the sequences as an SPMF database, runs the algorithm, and
// parses its output. SPMF items must be positive integers.
func (s *SPMF) Mine(ctx context.Context, sequences [][]string, minSupport float64) ([]recommend.Pattern, error) {
	if _, err := MinCount(minSupport, len(sequences)); err != nil {
		return nil, err
	}
	if len(sequences) == 0 {
		return nil, nil
	}
	if err := validateItems(sequences); err != nil {
		return nil, err
	}
	if err := s.Available(); err != nil {
		return nil, err
	}

	dir := s.opts.WorkDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "spmf-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create work dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(tmp) }()
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}

	inputPath := filepath.Join(dir, "spmf_input.txt")
	outputPath := filepath.Join(dir, "spmf_output.txt")

	if err := writeInputFile(inputPath, sequences); err != nil {
		return nil, err
	}
	// A stale output file would be read back if SPMF silently fails.
	_ = os.Remove(outputPath)

	args := []string{
		"-jar", s.opts.JarPath,
		"run", s.opts.Algorithm,
		inputPath, outputPath,
		strconv.FormatFloat(minSupport, 'f', -1, 64),
	}
	cmd := s.command(ctx, s.opts.JavaPath, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	logging.Debug().Str("java", s.opts.JavaPath).Strs("args", args).Msg("Running SPMF")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("spmf %s failed: %w: %s", s.opts.Algorithm, err, strings.TrimSpace(output.String()))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return nil, fmt.Errorf("spmf produced no output: %s", strings.TrimSpace(output.String()))
	}

	patterns, err := ReadPatternFile(outputPath)
	if err != nil {
		return nil, err
	}

	if s.MaxLength > 0 {
		kept := patterns[:0]
		for _, p := range patterns {
			if len(p.Items) <= s.MaxLength {
				kept = append(kept, p)
			}
		}
		patterns = kept
	}

	SortPatterns(patterns)
	return patterns, nil
}

func writeInputFile(path string, sequences [][]string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create spmf input: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := WriteSPMFInput(file, sequences); err != nil {
		return fmt.Errorf("failed to write spmf input: %w", err)
	}
	return nil
}

func validateItems(sequences [][]string) error {
	for i, seq := range sequences {
		for _, item := range seq {
			n, err := strconv.Atoi(item)
			if err != nil || n <= 0 {
				return fmt.Errorf("sequence %d: spmf items must be positive integers, got %q", i, item)
			}
		}
	}
	return nil
}
