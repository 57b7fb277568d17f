// Package csvsource reads the club's CSV exports into domain rows.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/matchload/pkg/logger"
)

// File names of the exports inside the data directory.
const (
	GPSFile        = "CFC GPS Data.csv"
	CapabilityFile = "CFC Physical Capability Data_.csv"
	RecoveryFile   = "CFC Recovery status Data.csv"
	PriorityFile   = "CFC Individual Priority Areas.csv"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrBadRow is returned when a row cannot be parsed.
	ErrBadRow = errors.New("bad row")
)

// dateLayouts are tried in order. Day-first layouts come before ISO.
var dateLayouts = []string{"02/01/2006", "2/1/2006", "02/01/2006 15:04", "2006-01-02", "2006-01-02 15:04:05"}

// ParseDate parses a day-first export date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

// table is a header-indexed CSV.
type table struct {
	name   string
	index  map[string]int
	rows   [][]string
	offset int // line number of rows[0]
}

func readTable(name string, r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w: empty file", name, ErrMissingColumn)
	}
	t := &table{name: name, index: make(map[string]int, len(records[0])), rows: records[1:], offset: 2}
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.index[h] = i
	}
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			return nil, fmt.Errorf("%s: %w: %s", name, ErrMissingColumn, col)
		}
	}
	return t, nil
}

// get returns the trimmed cell or "" when the column or cell is absent.
func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) has(col string) bool {
	_, ok := t.index[col]
	return ok
}

func (t *table) rowErr(n int, format string, args ...any) error {
	return fmt.Errorf("%s line %d: %w: %s", t.name, n+t.offset, ErrBadRow, fmt.Sprintf(format, args...))
}

// number parses a cell. Empty, NA-like and non-finite cells are missing.
func number(s string) (float64, bool, error) {
	switch strings.ToLower(s) {
	case "", "na", "nan", "n/a", "null", "-":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

// value reads a measurement cell. An unparsable cell is missing and its
// column is appended to bad.
func (t *table) value(row []string, col string, bad *[]string) (float64, bool) {
	v, ok, err := number(t.get(row, col))
	if err != nil {
		*bad = append(*bad, col)
		return 0, false
	}
	return v, ok
}

// warnBad logs the unparsable columns of row n, once per row.
func (t *table) warnBad(n int, bad []string) {
	if len(bad) == 0 {
		return
	}
	logger.Get().Named("csvsource").Warn(context.Background(), "unparsable values read as missing",
		logger.String("file", t.name),
		logger.Int("line", n+t.offset),
		logger.String("columns", strings.Join(bad, ",")),
	)
}

func integer(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err == nil {
		return v, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, err
	}
	return int(f), nil
}
