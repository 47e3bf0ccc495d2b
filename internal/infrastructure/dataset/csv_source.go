// Package dataset reads and writes tabular record files and splits them for
// training.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// CSVSource implements port.RecordSource over a CSV file with a header row.
type CSVSource struct {
	path         string
	requireLabel bool
	skipInvalid  bool
	logger       *slog.Logger
}

// Option configures a CSVSource.
type Option func(*CSVSource)

// RequireLabel makes attack_detected a required column.
func RequireLabel() Option {
	return func(s *CSVSource) { s.requireLabel = true }
}

// SkipInvalid logs and drops malformed rows instead of failing.
func SkipInvalid() Option {
	return func(s *CSVSource) { s.skipInvalid = true }
}

// NewCSVSource creates a source reading path.
func NewCSVSource(path string, logger *slog.Logger, opts ...Option) *CSVSource {
	s := &CSVSource{path: path, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Records reads and validates every row of the file.
func (s *CSVSource) Records(ctx context.Context) ([]model.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return s.read(ctx, f)
}

func (s *CSVSource) read(ctx context.Context, r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &model.SchemaError{Reason: "dataset has no header row"}
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if err := model.ValidateColumns(header, s.requireLabel); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}

	var records []model.Record
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		rec, err := parseRow(fields, index, row)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			err = stampRow(err, row)
			if s.skipInvalid {
				s.logger.Warn("skipping invalid row", "row", row, "error", err)
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}

	s.logger.Debug("dataset loaded", "path", s.path, "rows", len(records))
	return records, nil
}

func stampRow(err error, row int) error {
	var malformed *model.MalformedRecordError
	if errors.As(err, &malformed) {
		stamped := *malformed
		stamped.Row = row
		return &stamped
	}
	return err
}

func parseRow(fields []string, index map[string]int, row int) (model.Record, error) {
	get := func(col string) (string, bool) {
		i, ok := index[col]
		if !ok || i >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[i]), true
	}
	var parseErr error
	intField := func(col string) int {
		v, _ := get(col)
		n, err := parseInt(v)
		if err != nil && parseErr == nil {
			parseErr = &model.MalformedRecordError{Row: row, Field: col, Reason: err.Error()}
		}
		return n
	}
	floatField := func(col string) float64 {
		v, _ := get(col)
		f, err := strconv.ParseFloat(v, 64)
		if err != nil && parseErr == nil {
			parseErr = &model.MalformedRecordError{Row: row, Field: col, Reason: "is not a number: " + strconv.Quote(v)}
		}
		return f
	}
	text := func(col string) string {
		v, _ := get(col)
		return v
	}

	rec := model.Record{
		NetworkPacketSize: intField(model.ColumnPacketSize),
		ProtocolType:      text(model.ColumnProtocolType),
		LoginAttempts:     intField(model.ColumnLoginAttempts),
		SessionDuration:   floatField(model.ColumnSessionDuration),
		EncryptionUsed:    text(model.ColumnEncryptionUsed),
		IPReputationScore: floatField(model.ColumnIPReputation),
		FailedLogins:      intField(model.ColumnFailedLogins),
		BrowserType:       text(model.ColumnBrowserType),
		UnusualTimeAccess: intField(model.ColumnUnusualTimeAccess),
	}

	// Unencrypted sessions are written as an empty cell in the public dataset.
	if rec.EncryptionUsed == "" {
		rec.EncryptionUsed = model.EncryptionNone
	}

	rec.SessionID = text(model.ColumnSessionID)
	if rec.SessionID == "" {
		rec.SessionID = fmt.Sprintf("ROW_%d", row)
	}

	if v, ok := get(model.ColumnAttackDetected); ok && v != "" {
		label := intField(model.ColumnAttackDetected)
		rec.AttackDetected = &label
	}

	if parseErr != nil {
		var malformed *model.MalformedRecordError
		if errors.As(parseErr, &malformed) {
			malformed.SessionID = rec.SessionID
		}
		return model.Record{}, parseErr
	}
	return rec, nil
}

// parseInt accepts integers and integral floats such as "3.0".
func parseInt(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("is not a number: %q", v)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be an integer, got %q", v)
	}
	return int(f), nil
}

// WriteCSV writes records with a header in canonical column order. The label
// column is written when withLabel is set.
func WriteCSV(w io.Writer, records []model.Record, withLabel bool) error {
	cw := csv.NewWriter(w)

	header := append([]string{model.ColumnSessionID}, model.InputColumns...)
	if withLabel {
		header = append(header, model.ColumnAttackDetected)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.SessionID,
			strconv.Itoa(r.NetworkPacketSize),
			r.ProtocolType,
			strconv.Itoa(r.LoginAttempts),
			strconv.FormatFloat(r.SessionDuration, 'f', -1, 64),
			r.EncryptionUsed,
			strconv.FormatFloat(r.IPReputationScore, 'f', -1, 64),
			strconv.Itoa(r.FailedLogins),
			r.BrowserType,
			strconv.Itoa(r.UnusualTimeAccess),
		}
		if withLabel {
			label := ""
			if r.AttackDetected != nil {
				label = strconv.Itoa(*r.AttackDetected)
			}
			row = append(row, label)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row %s: %w", r.SessionID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
