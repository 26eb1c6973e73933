package export

import (
	"fmt"
	"io"
	"os"

	"owidtrends/internal/engine"
	"owidtrends/internal/models"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// Schema of the exported file: one row per retained point.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "country", Type: arrow.BinaryTypes.String},
	{Name: "field", Type: arrow.BinaryTypes.String},
	{Name: "date", Type: arrow.FixedWidthTypes.Date32},
	{Name: "label", Type: arrow.BinaryTypes.String},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteArrow writes series as an Arrow IPC file, one record batch per series.
func WriteArrow(w io.Writer, series []models.Series) error {
	mem := memory.NewGoAllocator()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(Schema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}

	b := array.NewRecordBuilder(mem, Schema)
	defer b.Release()

	countries := b.Field(0).(*array.StringBuilder)
	fields := b.Field(1).(*array.StringBuilder)
	dates := b.Field(2).(*array.Date32Builder)
	labels := b.Field(3).(*array.StringBuilder)
	values := b.Field(4).(*array.Float64Builder)

	for _, s := range series {
		for _, p := range s.Points {
			d, err := engine.ParseDate(p.Date)
			if err != nil {
				fw.Close()
				return err
			}
			countries.Append(s.Country)
			fields.Append(s.Field)
			dates.Append(arrow.Date32FromTime(d))
			labels.Append(p.Label)
			values.Append(p.Value)
		}

		rec := b.NewRecord()
		err := fw.Write(rec)
		rec.Release()
		if err != nil {
			fw.Close()
			return fmt.Errorf("failed to write %s/%s: %w", s.Country, s.Field, err)
		}
	}

	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to finish arrow file: %w", err)
	}
	return nil
}

// WriteArrowFile creates path and writes series to it.
func WriteArrowFile(path string, series []models.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteArrow(f, series); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
