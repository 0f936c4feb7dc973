package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var csvHeader = []string{"match_id", "hero_pick_sequence"}

// WriteCSV writes sequences as match_id,hero_pick_sequence rows with the
// picks space separated.
func WriteCSV(path string, sequences []Sequence) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, s := range sequences {
		row := []string{strconv.FormatInt(s.MatchID, 10), strings.Join(s.Picks, " ")}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV reads a file written by WriteCSV. Rows with no picks are skipped.
func ReadCSV(path string) ([]Sequence, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	var sequences []Sequence
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		if line == 1 && record[0] == csvHeader[0] {
			continue
		}

		matchID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid match id on line %d: %w", line, err)
		}
		picks := strings.Fields(record[1])
		if len(picks) == 0 {
			continue
		}
		sequences = append(sequences, Sequence{MatchID: matchID, Picks: picks})
	}

	return sequences, nil
}
