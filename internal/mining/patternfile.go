package mining

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// SPMF sequence database and output tokens.
const (
	itemSeparator      = "-1"
	sequenceTerminator = "-2"
	supportMarker      = "#SUP:"
)

// WriteSPMFInput writes one sequence per line in SPMF sequence database
// format: "12 -1 34 -1 -2". Empty sequences are skipped.
func WriteSPMFInput(w io.Writer, sequences [][]string) error {
	bw := bufio.NewWriter(w)
	for _, seq := range sequences {
		if len(seq) == 0 {
			continue
		}
		for _, item := range seq {
			if _, err := bw.WriteString(item + " " + itemSeparator + " "); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(sequenceTerminator + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParsePatternLine parses one SPMF output record such as
// "12 -1 34 -1 #SUP: 7". ok is false for lines that carry no items. A record
// without a support marker has support 0.
func ParsePatternLine(line string) (p recommend.Pattern, ok bool, err error) {
	body, support, hasSupport := strings.Cut(line, supportMarker)

	for _, tok := range strings.Fields(body) {
		if tok == itemSeparator || tok == sequenceTerminator {
			continue
		}
		p.Items = append(p.Items, tok)
	}
	if len(p.Items) == 0 {
		return recommend.Pattern{}, false, nil
	}

	if hasSupport {
		// Extra SPMF columns (e.g. "#SID:") may follow the count.
		fields := strings.Fields(support)
		if len(fields) == 0 {
			return recommend.Pattern{}, false, fmt.Errorf("missing support value")
		}
		p.Support, err = strconv.Atoi(fields[0])
		if err != nil || p.Support < 0 {
			return recommend.Pattern{}, false, fmt.Errorf("invalid support %q", fields[0])
		}
	}
	return p, true, nil
}

// FormatPatternLine is the inverse of ParsePatternLine.
func FormatPatternLine(p recommend.Pattern) string {
	var b strings.Builder
	for _, item := range p.Items {
		b.WriteString(item)
		b.WriteString(" " + itemSeparator + " ")
	}
	b.WriteString(supportMarker + " " + strconv.Itoa(p.Support))
	return b.String()
}

// ReadPatterns parses SPMF output records from r, skipping blank lines.
func ReadPatterns(r io.Reader) ([]recommend.Pattern, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var patterns []recommend.Pattern
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		p, ok, err := ParsePatternLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if ok {
			patterns = append(patterns, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read patterns: %w", err)
	}
	return patterns, nil
}

// ReadPatternFile reads an SPMF output file. A missing file yields no
// patterns and no error.
func ReadPatternFile(path string) ([]recommend.Pattern, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer func() { _ = file.Close() }()

	patterns, err := ReadPatterns(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return patterns, nil
}

// WritePatterns writes one SPMF output record per pattern.
func WritePatterns(w io.Writer, patterns []recommend.Pattern) error {
	bw := bufio.NewWriter(w)
	for _, p := range patterns {
		if _, err := bw.WriteString(FormatPatternLine(p) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePatternFile replaces path with the given patterns. The file is written
// to a temp file in the same directory and renamed into place.
func WritePatternFile(path string, patterns []recommend.Pattern) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := WritePatterns(tmp, patterns); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write patterns: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace pattern file: %w", err)
	}
	return nil
}
