package main

import (
	"fmt"
	"io"

	"owidtrends/internal/chart"
	"owidtrends/internal/engine"
	"owidtrends/internal/export"
	"owidtrends/internal/models"

	"github.com/goccy/go-json"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

var (
	country   string
	date      string
	field     string
	countries []string
	fields    []string
	startDate string
	endDate   string
	format    string
	outFile   string
)

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Print one field of one country on one day",
	RunE:  runValue,
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Print date-range series for countries and fields",
	RunE:  runSeries,
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render date-range series as a line chart",
	Long: `Render one line per (country, field) pair. With one field the legend lists
countries, with one country it lists fields. Ranges over a month crowd the labels.`,
	RunE: runPlot,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write date-range series to an Arrow IPC file",
	RunE:  runExport,
}

func init() {
	valueCmd.Flags().StringVarP(&country, "country", "c", "", "Country name, exact match (required)")
	valueCmd.Flags().StringVarP(&date, "date", "d", "", "Date as YYYY-MM-DD (required)")
	valueCmd.Flags().StringVarP(&field, "field", "m", "", "Field name, e.g. total_cases (required)")
	valueCmd.MarkFlagRequired("country")
	valueCmd.MarkFlagRequired("date")
	valueCmd.MarkFlagRequired("field")

	for _, cmd := range []*cobra.Command{seriesCmd, plotCmd, exportCmd} {
		cmd.Flags().StringSliceVarP(&countries, "country", "c", nil, "Country names (repeatable; defaults to the whole --group)")
		cmd.Flags().StringSliceVarP(&fields, "field", "m", nil, "Field names (repeatable, required)")
		cmd.Flags().StringVarP(&startDate, "start", "s", "", "First date, YYYY-MM-DD (required)")
		cmd.Flags().StringVarP(&endDate, "end", "e", "", "Last date, YYYY-MM-DD (required)")
		cmd.MarkFlagRequired("field")
		cmd.MarkFlagRequired("start")
		cmd.MarkFlagRequired("end")
	}
	seriesCmd.Flags().StringVarP(&format, "format", "o", "text", "Output format: text or json")
	plotCmd.Flags().StringVar(&outFile, "out", "chart.png", "Chart file (png, svg or pdf by extension)")
	exportCmd.Flags().StringVar(&outFile, "out", "series.arrow", "Arrow IPC output file")
}

func runValue(cmd *cobra.Command, args []string) error {
	idx, err := loadIndex()
	if err != nil {
		return err
	}
	v, err := engine.GetValue(idx, country, date, field)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), engine.Describe(field, country, date, v))
	return nil
}

func querySeries() ([]models.Series, error) {
	idx, err := loadIndex()
	if err != nil {
		return nil, err
	}
	names := countries
	if len(names) == 0 {
		if groupName == "" {
			return nil, fmt.Errorf("--country or --group is required")
		}
		names = idx.Countries()
	}
	return engine.ExtractGrid(idx, names, fields, startDate, endDate)
}

func runSeries(cmd *cobra.Command, args []string) error {
	series, err := querySeries()
	if err != nil {
		return err
	}
	switch format {
	case "json":
		data, err := json.MarshalIndent(series, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode series: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "text":
		writeText(cmd.OutOrStdout(), series)
	default:
		return fmt.Errorf("invalid format: %s. Use 'text' or 'json'", format)
	}
	return nil
}

func writeText(w io.Writer, series []models.Series) {
	for _, s := range series {
		fmt.Fprintf(w, "%s %s (%s to %s)\n", s.Country, s.Field, s.Start, s.End)
		for _, p := range s.Points {
			fmt.Fprintf(w, "  %s\t%g\n", p.Label, p.Value)
		}
	}
}

func runPlot(cmd *cobra.Command, args []string) error {
	series, err := querySeries()
	if err != nil {
		return err
	}
	if len(series) > 10 {
		log.Warnf("Plotting %d series; the legend will be crowded", len(series))
	}
	p, err := chart.Build(series)
	if err != nil {
		return err
	}
	if err := chart.Save(p, outFile); err != nil {
		return err
	}
	log.Infof("Chart saved to %s", outFile)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	series, err := querySeries()
	if err != nil {
		return err
	}
	if err := export.WriteArrowFile(outFile, series); err != nil {
		return err
	}
	log.Infof("Exported %d series to %s", len(series), outFile)
	return nil
}
