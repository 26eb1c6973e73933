package models

// NullFloat is a metric value that may be missing from the source row.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Point is one retained day of a series.
type Point struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is the missing-value-filtered run of one field for one country.
type Series struct {
	Country string  `json:"country"`
	Field   string  `json:"field"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Points  []Point `json:"points"`
}

// Labels returns the short date labels in point order.
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Values returns the parsed values in point order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

type ValueResponse struct {
	Country string `json:"country"`
	Date    string `json:"date"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type GroupItem struct {
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
}
