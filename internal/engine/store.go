package engine

import (
	"fmt"
	"sort"
	"strconv"

	"owidtrends/internal/models"

	"golang.org/x/exp/maps"
)

// Key addresses one row of the dataset.
type Key struct {
	Country string
	Date    string
}

// header is shared by every Record of one load.
type header struct {
	names []string
	pos   map[string]int
}

func newHeader(names []string) *header {
	h := &header{
		names: append([]string(nil), names...),
		pos:   make(map[string]int, len(names)),
	}
	for i, n := range h.names {
		if _, dup := h.pos[n]; !dup {
			h.pos[n] = i
		}
	}
	return h
}

// Value is a raw field value. The empty string means missing.
type Value string

func (v Value) Missing() bool { return v == "" }

// Float resolves the value as an optional number.
func (v Value) Float() (models.NullFloat, error) {
	if v.Missing() {
		return models.NullFloat{}, nil
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return models.NullFloat{}, fmt.Errorf("%w: %q", ErrNotNumeric, string(v))
	}
	return models.NullFloat{Float64: f, Valid: true}, nil
}

// Record is one row: field names from the header zipped with raw values.
type Record struct {
	header *header
	values []string
}

// Get returns the raw value of field. ok is false for unknown fields.
func (r Record) Get(field string) (Value, bool) {
	if r.header == nil {
		return "", false
	}
	i, ok := r.header.pos[field]
	if !ok {
		return "", false
	}
	return Value(r.values[i]), true
}

// Fields returns the field names in header order.
func (r Record) Fields() []string {
	if r.header == nil {
		return nil
	}
	return append([]string(nil), r.header.names...)
}

// Map copies the record into a field -> raw value map.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for i, v := range r.values {
		out[r.header.names[i]] = v
	}
	return out
}

type countryInfo struct {
	rows  int
	first string
	last  string
}

// Index holds every record of a load in one flat table keyed by (country, date).
// It is read-only once returned by Load.
type Index struct {
	header    *header
	rows      map[Key]Record
	countries map[string]*countryInfo
}

func newIndex(h *header) *Index {
	return &Index{
		header:    h,
		rows:      make(map[Key]Record),
		countries: make(map[string]*countryInfo),
	}
}

func (idx *Index) put(k Key, rec Record) {
	info, ok := idx.countries[k.Country]
	if !ok {
		info = &countryInfo{first: k.Date, last: k.Date}
		idx.countries[k.Country] = info
	}
	if _, exists := idx.rows[k]; !exists {
		info.rows++
	}
	if k.Date < info.first {
		info.first = k.Date
	}
	if k.Date > info.last {
		info.last = k.Date
	}
	idx.rows[k] = rec
}

// Len returns the number of distinct (country, date) rows.
func (idx *Index) Len() int { return len(idx.rows) }

// Fields returns the header field names in file order.
func (idx *Index) Fields() []string {
	if idx.header == nil {
		return nil
	}
	return append([]string(nil), idx.header.names...)
}

func (idx *Index) HasField(field string) bool {
	if idx.header == nil {
		return false
	}
	_, ok := idx.header.pos[field]
	return ok
}

func (idx *Index) HasCountry(country string) bool {
	_, ok := idx.countries[country]
	return ok
}

// Countries returns the country names, sorted.
func (idx *Index) Countries() []string {
	names := maps.Keys(idx.countries)
	sort.Strings(names)
	return names
}

// Record returns the row stored at (country, date).
func (idx *Index) Record(country, date string) (Record, bool) {
	rec, ok := idx.rows[Key{Country: country, Date: date}]
	return rec, ok
}

// Span returns the first and last dates held for a country.
func (idx *Index) Span(country string) (first, last string, err error) {
	info, ok := idx.countries[country]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrCountryNotFound, country)
	}
	return info.first, info.last, nil
}

// Rows returns the number of dates held for a country.
func (idx *Index) Rows(country string) int {
	if info, ok := idx.countries[country]; ok {
		return info.rows
	}
	return 0
}
