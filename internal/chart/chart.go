package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"owidtrends/internal/engine"
	"owidtrends/internal/models"

	"github.com/labstack/gommon/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var ErrNoSeries = errors.New("no series to plot")

const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch

	// maxTicks keeps vertical date labels from overlapping on long ranges.
	maxTicks = 31
)

// Build lays out one dashed line per series. X is days since the range start,
// ticked with short date labels.
func Build(series []models.Series) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}
	start, err := engine.ParseDate(series[0].Start)
	if err != nil {
		return nil, err
	}
	end, err := engine.ParseDate(series[0].End)
	if err != nil {
		return nil, err
	}

	subject, axis, names := legend(series)

	p := plot.New()
	p.Title.Text = Title(subject, series[0].Start, series[0].End)
	p.X.Label.Text = "date"
	p.Y.Label.Text = axis
	p.X.Min = 0
	p.X.Max = float64(engine.DaysBetween(start, end))
	p.X.Tick.Marker = dayTicker{start: start}
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Points) == 0 {
			log.Warnf("Skipping empty series %s/%s", s.Country, s.Field)
			continue
		}

		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			d, err := engine.ParseDate(pt.Date)
			if err != nil {
				return nil, err
			}
			xys[j].X = float64(engine.DaysBetween(start, d))
			xys[j].Y = pt.Value
		}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build series %s/%s: %w", s.Country, s.Field, err)
		}
		c := plotutil.Color(i)
		line.Color = c
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		points.Color = c
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(1.5)

		p.Add(line, points)
		p.Legend.Add(names[i], line, points)
	}

	return p, nil
}

// Title reads "<subject> from <start> to <end>".
func Title(subject, start, end string) string {
	return subject + " from " + start + " to " + end
}

// legend picks the shared dimension as the title subject and names each series
// by the dimension that varies. The subject keeps raw field names; the axis
// label is humanized.
func legend(series []models.Series) (subject, axis string, names []string) {
	countries := distinct(series, func(s models.Series) string { return s.Country })
	fields := distinct(series, func(s models.Series) string { return s.Field })

	names = make([]string, len(series))
	switch {
	case len(fields) == 1:
		for i, s := range series {
			names[i] = s.Country
		}
		return fields[0], Humanize(fields[0]), names
	case len(countries) == 1:
		for i, s := range series {
			names[i] = Humanize(s.Field)
		}
		return countries[0], countries[0], names
	default:
		for i, s := range series {
			names[i] = s.Country + " " + Humanize(s.Field)
		}
		return strings.Join(fields, ", "), strings.Join(countries, ", "), names
	}
}

func distinct(series []models.Series, key func(models.Series) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range series {
		k := key(s)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Humanize turns "total_cases_per_million" into "Total Cases Per Million".
func Humanize(field string) string {
	// Casers are stateful; one per call.
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

// dayTicker labels whole-day offsets from start with short dates.
type dayTicker struct {
	start time.Time
}

func (t dayTicker) Ticks(min, max float64) []plot.Tick {
	lo := int(math.Ceil(min))
	hi := int(math.Floor(max))
	if hi < lo {
		return nil
	}
	step := (hi-lo)/maxTicks + 1

	var ticks []plot.Tick
	for d := lo; d <= hi; d++ {
		tick := plot.Tick{Value: float64(d)}
		if (d-lo)%step == 0 {
			tick.Label = engine.ShortLabel(t.start.AddDate(0, 0, d).Format(engine.DateLayout))
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

// Save writes the plot, inferring the format from the file extension.
func Save(p *plot.Plot, path string) error {
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// WritePNG renders the plot as PNG to w.
func WritePNG(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}
