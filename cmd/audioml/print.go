package main

import (
	"fmt"

	"github.com/voicecast/audioml/pipeline"
	"github.com/voicecast/audioml/status"
)

func printSummary(summary *pipeline.Summary) {
	fmt.Printf("total:     %d\n", summary.Total)
	fmt.Printf("processed: %d\n", summary.Processed)
	for reason, count := range summary.Skipped {
		fmt.Printf("skipped:   %d (%s)\n", count, reason)
	}
	fmt.Printf("failed:    %d\n", summary.Failed)
	fmt.Printf("audio:     %.1fs\n", summary.TotalDuration)
}

func printRecord(record *status.Record) {
	fmt.Printf("%s  %-9s  %5.1f%%  %s  %s\n",
		record.PipelineID, record.Status, record.Progress*100, record.Timestamp, record.Message)
}
