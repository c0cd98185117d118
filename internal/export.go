package internal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// csvHeader is the first row of every export
var csvHeader = []string{"title", "url", "content"}

// WriteRecordsCSV writes the header and one row per record
func WriteRecordsCSV(w io.Writer, records []TranscriptionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write([]string{r.Title, r.URL, r.Content}); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRecordsCSV parses an export written by WriteRecordsCSV
func ReadRecordsCSV(r io.Reader) ([]TranscriptionRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty CSV file")
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if !slices.Equal(header, csvHeader) {
		return nil, fmt.Errorf("unexpected CSV header %v (want %v)", header, csvHeader)
	}

	var records []TranscriptionRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		records = append(records, TranscriptionRecord{Title: row[0], URL: row[1], Content: row[2]})
	}
	return records, nil
}

// ExportBatch writes the batch to "{title}_transcriptions.csv" in dir and returns the path.
// The file appears only once fully written.
func ExportBatch(dir string, batch *PlaylistBatch) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := EnsureDirs(dir); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	target := filepath.Join(dir, ExportFilename(batch.Title))
	tmp, err := os.CreateTemp(dir, ".transcriptions-*.csv")
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}

	writeErr := WriteRecordsCSV(tmp, batch.Records)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		cleanupFiles(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", target, writeErr)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		cleanupFiles(tmp.Name())
		return "", fmt.Errorf("saving %s: %w", target, err)
	}
	return target, nil
}

// LoadExport reads a CSV export from disk
func LoadExport(path string) ([]TranscriptionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecordsCSV(f)
}
