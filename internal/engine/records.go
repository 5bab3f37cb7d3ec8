package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/timeline"
)

// ReadRecords parses delimited text into raw records keyed by header name.
// The first non-blank line is the header. Rows shorter than the header lack
// the missing keys; extra cells are dropped.
func ReadRecords(r io.Reader, delim rune) ([]timeline.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRowsRead, err)
	}
	header = normalizeHeader(header)
	if isBlank(header) {
		return nil, errors.New(config.ErrHeaderMissing)
	}

	var records []timeline.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrRowsRead, err)
		}
		if isBlank(row) {
			continue
		}

		rec := make(timeline.RawRecord, len(header))
		for i, name := range header {
			if i >= len(row) {
				break
			}
			if name == "" {
				continue
			}
			rec[name] = row[i]
		}
		records = append(records, rec)
	}

	slog.Debug(config.MsgRowsRead,
		config.LogKeyComponent, config.CompReader,
		config.LogKeyRecords, len(records))
	return records, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, config.UTF8BOM)
		}
		out[i] = strings.TrimSpace(name)
	}
	return out
}

// isBlank reports whether every cell of a row is whitespace.
func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
