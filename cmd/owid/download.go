package main

import (
	"context"
	"fmt"
	"time"

	"owidtrends/internal/download"

	"github.com/spf13/cobra"
)

var (
	force           bool
	downloadTimeout time.Duration
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download today's dataset",
	Long:  "Download the OWID dataset to the configured data directory. A failed download keeps any earlier file usable.",
	RunE:  runDownload,
}

func init() {
	downloadCmd.Flags().BoolVar(&force, "force", false, "Download even if today's file already exists")
	downloadCmd.Flags().DurationVar(&downloadTimeout, "timeout", 10*time.Minute, "Abort the download after this long")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()

	f := download.NewFetcher(cfg.SourceURL)
	var ok bool
	if force {
		ok = f.Fetch(ctx, dataPath())
	} else {
		ok = f.Ensure(ctx, dataPath())
	}
	if !ok {
		return fmt.Errorf("%s", download.FailureMsg)
	}
	return nil
}
