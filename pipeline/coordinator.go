// Package pipeline coordinates the end-to-end data and training run: a
// bounded worker pool for parallel feature extraction and an orchestrator
// that sequences stages with checkpointed status reporting.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/voicecast/audioml/logging"
	"github.com/voicecast/audioml/preprocess"
)

// BatchState is the lifecycle state of one extraction batch.
type BatchState string

const (
	BatchPending         BatchState = "pending"
	BatchInProgress      BatchState = "in_progress"
	BatchCompleted       BatchState = "completed"
	BatchPartiallyFailed BatchState = "partially_failed"
	BatchFullyFailed     BatchState = "fully_failed"
)

// Summary is the batch accounting reported after every run, regardless of
// outcome: processed + skipped + failed always equals the input count.
type Summary struct {
	Total         int                           `json:"total"`
	Processed     int                           `json:"processed"`
	Skipped       map[preprocess.SkipReason]int `json:"skipped"`
	Failed        int                           `json:"failed"`
	FailedFiles   []string                      `json:"failed_files,omitempty"`
	TotalDuration float64                       `json:"total_duration"` // Seconds of accepted audio
}

// SkippedCount returns the total skips across all reason codes.
func (s *Summary) SkippedCount() int {
	n := 0
	for _, count := range s.Skipped {
		n += count
	}
	return n
}

// BatchResult is the outcome of one coordinated extraction batch. Record
// order is completion order, not submission order; downstream consumers
// treat it as an unordered set.
type BatchResult struct {
	State   BatchState
	Records []*preprocess.ProcessedRecord
	Summary Summary
}

// ProgressFunc receives completed and total counts after every file
// finishes, in completion order.
type ProgressFunc func(completed, total int)

// Coordinator fans files out across a bounded worker pool. Per-file
// failures are logged and excluded without aborting the batch.
type Coordinator struct {
	pre     *preprocess.AudioPreprocessor
	workers int
}

// NewCoordinator creates a coordinator with the given pool size. Sizes
// below 1 fall back to 4 workers.
func NewCoordinator(pre *preprocess.AudioPreprocessor, workers int) *Coordinator {
	if workers < 1 {
		workers = 4
	}
	return &Coordinator{pre: pre, workers: workers}
}

// Run processes the files concurrently and collects results as they
// complete. onProgress may be nil.
func (c *Coordinator) Run(ctx context.Context, files []string, onProgress ProgressFunc) (*BatchResult, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "extraction_coordinator",
		"function":  "Run",
		"files":     len(files),
		"workers":   c.workers,
	})

	if len(files) == 0 {
		return nil, fmt.Errorf("empty file batch")
	}

	logger.Info("Starting parallel feature extraction")

	type completion struct {
		file    string
		outcome preprocess.Outcome
	}

	jobs := make(chan string, len(files))
	completions := make(chan completion, len(files))

	var wg sync.WaitGroup
	for _i := 0; _i < c.workers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				select {
				case <-ctx.Done():
					completions <- completion{file: file, outcome: preprocess.Failed(preprocess.FailureLoad, ctx.Err())}
					continue
				default:
				}
				completions <- completion{file: file, outcome: c.pre.ProcessOne(file)}
			}
		}()
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(completions)
	}()

	result := &BatchResult{
		State: BatchInProgress,
		Summary: Summary{
			Total:   len(files),
			Skipped: make(map[preprocess.SkipReason]int),
		},
	}

	completed := 0
	for done := range completions {
		completed++

		switch done.outcome.Kind {
		case preprocess.OutcomeSuccess:
			result.Records = append(result.Records, done.outcome.Record)
			result.Summary.Processed++
			result.Summary.TotalDuration += done.outcome.Record.Duration
		case preprocess.OutcomeSkip:
			result.Summary.Skipped[done.outcome.SkipReason]++
			logger.Debug("File skipped", logging.Fields{
				"file":   done.file,
				"reason": string(done.outcome.SkipReason),
			})
		case preprocess.OutcomeFailure:
			result.Summary.Failed++
			result.Summary.FailedFiles = append(result.Summary.FailedFiles, done.file)
			logger.Warn("File failed, continuing batch", logging.Fields{
				"file":  done.file,
				"kind":  string(done.outcome.FailureKind),
				"error": done.outcome.Err.Error(),
			})
		}

		if onProgress != nil {
			onProgress(completed, len(files))
		}
	}

	switch {
	case result.Summary.Processed == 0 && result.Summary.Failed > 0 && result.Summary.SkippedCount() == 0:
		result.State = BatchFullyFailed
	case result.Summary.Failed > 0 || result.Summary.SkippedCount() > 0:
		result.State = BatchPartiallyFailed
	default:
		result.State = BatchCompleted
	}

	logger.Info("Extraction batch finished", logging.Fields{
		"state":     string(result.State),
		"processed": result.Summary.Processed,
		"skipped":   result.Summary.SkippedCount(),
		"failed":    result.Summary.Failed,
	})

	return result, nil
}
