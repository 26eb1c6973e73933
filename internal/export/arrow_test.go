package export

import (
	"bytes"
	"testing"

	"owidtrends/internal/models"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

func TestWriteArrow(t *testing.T) {
	series := []models.Series{
		{
			Country: "Israel", Field: "total_cases", Start: "2020-09-01", End: "2020-09-03",
			Points: []models.Point{
				{Date: "2020-09-01", Label: "09-01", Value: 100},
				{Date: "2020-09-03", Label: "09-03", Value: 150},
			},
		},
		{
			Country: "United States", Field: "total_cases", Start: "2020-09-01", End: "2020-09-03",
			Points: []models.Point{{Date: "2020-09-02", Label: "09-02", Value: 6040000}},
		},
	}

	var buf bytes.Buffer
	if err := WriteArrow(&buf, series); err != nil {
		t.Fatal(err)
	}

	r, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.NumRecords() != 2 {
		t.Fatalf("Expected 2 record batches, got %d", r.NumRecords())
	}
	if !r.Schema().Equal(Schema) {
		t.Errorf("Schema mismatch: %v", r.Schema())
	}

	rec, err := r.Record(0)
	if err != nil {
		t.Fatal(err)
	}
	if rec.NumRows() != 2 {
		t.Fatalf("Expected 2 rows, got %d", rec.NumRows())
	}
	if got := rec.Column(0).(*array.String).Value(1); got != "Israel" {
		t.Errorf("country: got %s", got)
	}
	if got := rec.Column(2).(*array.Date32).Value(1).ToTime().Format("2006-01-02"); got != "2020-09-03" {
		t.Errorf("date: got %s", got)
	}
	if got := rec.Column(3).(*array.String).Value(0); got != "09-01" {
		t.Errorf("label: got %s", got)
	}
	if got := rec.Column(4).(*array.Float64).Value(1); got != 150 {
		t.Errorf("value: got %v", got)
	}

	rec, err = r.Record(1)
	if err != nil {
		t.Fatal(err)
	}
	if rec.NumRows() != 1 || rec.Column(0).(*array.String).Value(0) != "United States" {
		t.Errorf("Unexpected second batch")
	}
}
