package main

import (
	"fmt"
	"os"

	"owidtrends/internal/config"
	"owidtrends/internal/engine"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

var (
	cfg        config.Config
	dataFile   string
	groupName  string
	duplicates string
)

var rootCmd = &cobra.Command{
	Use:   "owid",
	Short: "Query and chart the Our World in Data COVID-19 dataset",
	Long: `owid loads the OWID country/day CSV, answers point and range queries,
and renders time-series charts for one or more countries or metrics.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&dataFile, "file", "f", "", "Dataset CSV (defaults to today's download)")
	rootCmd.PersistentFlags().StringVarP(&groupName, "group", "g", "", "Restrict queries to a named country group (e.g. OECD)")
	rootCmd.PersistentFlags().StringVar(&duplicates, "duplicates", "", "Duplicate row policy: overwrite, reject or merge")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if duplicates != "" {
		cfg.Duplicates = duplicates
	}
	cfg.SetupLogging()
}

func dataPath() string {
	if dataFile != "" {
		return dataFile
	}
	return cfg.DataPath()
}

// loadIndex loads the dataset and applies --group.
func loadIndex() (*engine.Index, error) {
	opts, err := cfg.LoadOptions()
	if err != nil {
		return nil, err
	}
	idx, err := engine.LoadFile(dataPath(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	if groupName == "" {
		return idx, nil
	}
	members, err := cfg.Groups.Lookup(groupName)
	if err != nil {
		return nil, err
	}
	return engine.FilterSubset(idx, members), nil
}
