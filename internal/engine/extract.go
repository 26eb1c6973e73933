package engine

import (
	"fmt"
	"runtime"

	"owidtrends/internal/models"

	"golang.org/x/sync/errgroup"
)

// GetValue returns the raw value at (country, date, field). Every key must exist.
func GetValue(idx *Index, country, date, field string) (string, error) {
	if !idx.HasCountry(country) {
		return "", fmt.Errorf("%w: %s", ErrCountryNotFound, country)
	}
	if !idx.HasField(field) {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}
	rec, ok := idx.Record(country, date)
	if !ok {
		return "", fmt.Errorf("%w: %s has no row for %s", ErrDateNotFound, country, date)
	}
	v, _ := rec.Get(field)
	return string(v), nil
}

// Describe renders a point lookup as a sentence.
func Describe(field, country, date, value string) string {
	return field + " in " + country + " on " + date + " is: " + value
}

// Extract walks every day from start to end and collects the numeric values of
// field for country. Days with an empty value are omitted; a day with no row
// at all is an error.
func Extract(idx *Index, country, field, start, end string) (models.Series, error) {
	if !idx.HasCountry(country) {
		return models.Series{}, fmt.Errorf("%w: %s", ErrCountryNotFound, country)
	}
	if !idx.HasField(field) {
		return models.Series{}, fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}
	if err := withinSpan(idx, country, start, end); err != nil {
		return models.Series{}, err
	}

	dates, err := EnumerateDates(start, end)
	if err != nil {
		return models.Series{}, err
	}

	series := models.Series{
		Country: country,
		Field:   field,
		Start:   start,
		End:     end,
		Points:  make([]models.Point, 0, len(dates)),
	}

	for _, d := range dates {
		rec, ok := idx.Record(country, d)
		if !ok {
			return models.Series{}, fmt.Errorf("%w: %s has no row for %s", ErrDateNotFound, country, d)
		}
		v, _ := rec.Get(field)
		n, err := v.Float()
		if err != nil {
			return models.Series{}, fmt.Errorf("%s %s %s: %w", country, d, field, err)
		}
		if !n.Valid {
			continue
		}
		series.Points = append(series.Points, models.Point{
			Date:  d,
			Label: ShortLabel(d),
			Value: n.Float64,
		})
	}

	return series, nil
}

// withinSpan rejects ranges reaching past the dates held for country before any
// day is enumerated, so an oversized range costs nothing.
func withinSpan(idx *Index, country, start, end string) error {
	s, err := ParseDate(start)
	if err != nil {
		return err
	}
	e, err := ParseDate(end)
	if err != nil {
		return err
	}
	if s.After(e) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}

	first, last, err := idx.Span(country)
	if err != nil {
		return err
	}
	if s.Format(DateLayout) < first {
		return fmt.Errorf("%w: %s has no row for %s", ErrDateNotFound, country, s.Format(DateLayout))
	}
	if e.Format(DateLayout) > last {
		l, err := ParseDate(last)
		if err != nil {
			return fmt.Errorf("%w: %s has no row for %s", ErrDateNotFound, country, e.Format(DateLayout))
		}
		return fmt.Errorf("%w: %s has no row for %s", ErrDateNotFound, country, l.AddDate(0, 0, 1).Format(DateLayout))
	}
	return nil
}

// ExtractCountries extracts field for each country, in the given order.
func ExtractCountries(idx *Index, countries []string, field, start, end string) ([]models.Series, error) {
	return extractAll(len(countries), func(i int) (models.Series, error) {
		return Extract(idx, countries[i], field, start, end)
	})
}

// ExtractFields extracts each field for one country, in the given order.
func ExtractFields(idx *Index, country string, fields []string, start, end string) ([]models.Series, error) {
	return extractAll(len(fields), func(i int) (models.Series, error) {
		return Extract(idx, country, fields[i], start, end)
	})
}

// extractAll fans out over the read-only index; slot i always holds series i.
func extractAll(n int, one func(i int) (models.Series, error)) ([]models.Series, error) {
	out := make([]models.Series, n)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			s, err := one(i)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractGrid extracts every (country, field) pair, country-major.
func ExtractGrid(idx *Index, countries, fields []string, start, end string) ([]models.Series, error) {
	out := make([]models.Series, 0, len(countries)*len(fields))
	for _, country := range countries {
		s, err := ExtractFields(idx, country, fields, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
	}
	return out, nil
}
