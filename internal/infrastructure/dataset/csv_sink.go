package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// CSVSink implements port.RecordSink by writing a labelled CSV file.
type CSVSink struct {
	path string
}

// NewCSVSink creates a sink writing to path, creating parent directories.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Write replaces the file with records.
func (s *CSVSink) Write(_ context.Context, records []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	withLabel := len(records) > 0 && records[0].HasLabel()
	if err := WriteCSV(f, records, withLabel); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Destination returns the file path.
func (s *CSVSink) Destination() string {
	return s.path
}
