package engine

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/labstack/gommon/log"
)

// DuplicatePolicy decides what happens when two rows share a (country, date) key.
type DuplicatePolicy int

const (
	// Overwrite keeps the later row (last write wins).
	Overwrite DuplicatePolicy = iota
	// Reject fails the load.
	Reject
	// MergeFields lets later non-empty values replace earlier ones.
	MergeFields
)

func (p DuplicatePolicy) String() string {
	switch p {
	case Overwrite:
		return "overwrite"
	case Reject:
		return "reject"
	case MergeFields:
		return "merge"
	default:
		return "unknown"
	}
}

// ParseDuplicatePolicy maps "overwrite", "reject" or "merge" to a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "overwrite":
		return Overwrite, nil
	case "reject":
		return Reject, nil
	case "merge":
		return MergeFields, nil
	}
	return Overwrite, fmt.Errorf("unknown duplicate policy %q", s)
}

// LoadOptions controls how the flat file is keyed.
type LoadOptions struct {
	CountryColumn int
	DateColumn    int
	Duplicates    DuplicatePolicy
}

// DefaultLoadOptions matches the OWID file layout: location in column 2, date in column 3.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{CountryColumn: 2, DateColumn: 3, Duplicates: Overwrite}
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, opts LoadOptions) (*Index, error) {
	start := time.Now()
	log.Infof("Loading dataset %s...", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	idx, err := Load(bufio.NewReader(f), opts)
	if err != nil {
		return nil, err
	}

	log.Infof("Load Complete. Countries: %d. Rows: %d. Time: %v", len(idx.countries), idx.Len(), time.Since(start))
	return idx, nil
}

// Load reads a header line followed by data lines and indexes every row by
// (country, date). Any malformed row fails the whole load.
func Load(r io.Reader, opts LoadOptions) (*Index, error) {
	reader := csv.NewReader(r)
	// FieldsPerRecord 0: every row must match the header's field count.
	reader.FieldsPerRecord = 0

	names, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedRow)
	}
	if err != nil {
		return nil, readError(err)
	}

	if opts.CountryColumn < 0 || opts.DateColumn < 0 ||
		opts.CountryColumn >= len(names) || opts.DateColumn >= len(names) {
		return nil, fmt.Errorf("%w: header has %d fields, need country column %d and date column %d",
			ErrMalformedRow, len(names), opts.CountryColumn, opts.DateColumn)
	}

	idx := newIndex(newHeader(names))

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(err)
		}

		k := Key{Country: row[opts.CountryColumn], Date: row[opts.DateColumn]}
		rec := Record{header: idx.header, values: row}

		if prev, exists := idx.rows[k]; exists {
			switch opts.Duplicates {
			case Reject:
				line, _ := reader.FieldPos(0)
				return nil, fmt.Errorf("%w: line %d: %s %s", ErrDuplicateRow, line, k.Country, k.Date)
			case MergeFields:
				rec = mergeRecords(prev, rec)
			}
		}
		idx.put(k, rec)
	}

	return idx, nil
}

func mergeRecords(prev, next Record) Record {
	merged := append([]string(nil), prev.values...)
	for i, v := range next.values {
		if v != "" {
			merged[i] = v
		}
	}
	return Record{header: prev.header, values: merged}
}

func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: line %d: %v", ErrMalformedRow, pe.Line, pe.Err)
	}
	return fmt.Errorf("failed to read dataset: %w", err)
}
