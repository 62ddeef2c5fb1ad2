package pipeline

import (
	"context"
	"fmt"

	"github.com/voicecast/audioml/dataset"
	"github.com/voicecast/audioml/logging"
	"github.com/voicecast/audioml/registry"
	"github.com/voicecast/audioml/status"
	"github.com/voicecast/audioml/storage"
	"github.com/voicecast/audioml/train"
)

// Stage progress checkpoints. Extraction progress is interpolated into the
// window between checkpointExtract and checkpointAugment.
const (
	checkpointDiscover = 0.1
	checkpointExtract  = 0.3
	checkpointAugment  = 0.7
	checkpointAssemble = 0.85
	checkpointPersist  = 0.95
	checkpointDone     = 1.0
)

// DatasetKey returns the artifact key for a pipeline's dataset blob.
func DatasetKey(pipelineID string) string {
	return fmt.Sprintf("datasets/%s/dataset.msgpack", pipelineID)
}

// ModelKey returns the artifact key for a pipeline's model blob.
func ModelKey(pipelineID string) string {
	return fmt.Sprintf("models/%s/model.msgpack", pipelineID)
}

// HistoryKey returns the artifact key for a pipeline's training history.
func HistoryKey(pipelineID string) string {
	return fmt.Sprintf("models/%s/history.json", pipelineID)
}

// Orchestrator sequences the pipeline stages end to end. Any stage error is
// recorded as a terminal failed status before being returned.
type Orchestrator struct {
	coordinator *Coordinator
	assembler   *dataset.Assembler
	trainer     *train.Trainer
	tracker     *status.Tracker
	blobs       storage.BlobStore
	registry    registry.Client

	// Discovery controls
	maxFiles int
	seed     int64
}

// OrchestratorOptions wires the orchestrator's collaborators.
type OrchestratorOptions struct {
	Coordinator *Coordinator
	Assembler   *dataset.Assembler
	Trainer     *train.Trainer
	Tracker     *status.Tracker
	Blobs       storage.BlobStore
	Registry    registry.Client
	MaxFiles    int   // Cap on discovered files; 0 means no cap
	Seed        int64 // Sampling seed for capped discovery
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	return &Orchestrator{
		coordinator: opts.Coordinator,
		assembler:   opts.Assembler,
		trainer:     opts.Trainer,
		tracker:     opts.Tracker,
		blobs:       opts.Blobs,
		registry:    opts.Registry,
		maxFiles:    opts.MaxFiles,
		seed:        opts.Seed,
	}
}

// fail records a terminal failed status at the progress reached, then
// returns the original error.
func (o *Orchestrator) fail(ctx context.Context, pipelineID string, progress float64, err error) error {
	logger := logging.WithFields(logging.Fields{
		"component":   "orchestrator",
		"pipeline_id": pipelineID,
	})
	logger.Error(err, "Pipeline failed")

	if updateErr := o.tracker.Update(ctx, pipelineID, status.Failed, progress, err.Error(), nil); updateErr != nil {
		logger.Error(updateErr, "Failed to record failure status")
	}
	return err
}

// RunDataPipeline executes discovery, parallel extraction, augmentation,
// assembly and artifact persistence for one pipeline run. It returns the
// batch summary alongside any error; the summary is valid up to the point
// of failure.
func (o *Orchestrator) RunDataPipeline(ctx context.Context, pipelineID, inputDir string) (*Summary, error) {
	logger := logging.WithFields(logging.Fields{
		"component":   "orchestrator",
		"function":    "RunDataPipeline",
		"pipeline_id": pipelineID,
	})

	if err := o.tracker.Update(ctx, pipelineID, status.Running, checkpointDiscover, "Discovering input audio", nil); err != nil {
		return nil, err
	}

	files, err := DiscoverAudioFiles(inputDir, o.maxFiles, o.seed)
	if err != nil {
		return nil, o.fail(ctx, pipelineID, checkpointDiscover, fmt.Errorf("audio discovery failed: %w", err))
	}
	if len(files) == 0 {
		return nil, o.fail(ctx, pipelineID, checkpointDiscover, fmt.Errorf("no audio files found under %s", inputDir))
	}

	logger.Info("Input audio discovered", logging.Fields{"files": len(files)})

	if err := o.tracker.Update(ctx, pipelineID, status.Running, checkpointExtract, "Extracting features", nil); err != nil {
		return nil, err
	}

	// Per-file completions map linearly into the extraction window
	onProgress := func(completed, total int) {
		fraction := float64(completed) / float64(total)
		progress := checkpointExtract + fraction*(checkpointAugment-checkpointExtract)
		message := fmt.Sprintf("Extracted features from %d/%d files", completed, total)
		if err := o.tracker.Update(ctx, pipelineID, status.Running, progress, message, nil); err != nil {
			logger.Warn("Failed to record extraction progress", logging.Fields{"error": err.Error()})
		}
	}

	batch, err := o.coordinator.Run(ctx, files, onProgress)
	if err != nil {
		return nil, o.fail(ctx, pipelineID, checkpointExtract, fmt.Errorf("feature extraction failed: %w", err))
	}
	if len(batch.Records) == 0 {
		return &batch.Summary, o.fail(ctx, pipelineID, checkpointAugment,
			fmt.Errorf("no usable records: %d skipped, %d failed of %d files",
				batch.Summary.SkippedCount(), batch.Summary.Failed, batch.Summary.Total))
	}

	if err := o.tracker.Update(ctx, pipelineID, status.Running, checkpointAugment, "Augmenting dataset", nil); err != nil {
		return &batch.Summary, err
	}

	records := o.assembler.Augment(batch.Records)

	if err := o.tracker.Update(ctx, pipelineID, status.Running, checkpointAssemble, "Assembling dataset", nil); err != nil {
		return &batch.Summary, err
	}

	ds, err := o.assembler.Assemble(records)
	if err != nil {
		return &batch.Summary, o.fail(ctx, pipelineID, checkpointAssemble, fmt.Errorf("dataset assembly failed: %w", err))
	}

	if err := o.tracker.Update(ctx, pipelineID, status.Running, checkpointPersist, "Saving dataset artifact", nil); err != nil {
		return &batch.Summary, err
	}

	blob, err := dataset.Encode(ds)
	if err != nil {
		return &batch.Summary, o.fail(ctx, pipelineID, checkpointPersist, err)
	}
	datasetKey := DatasetKey(pipelineID)
	if err := o.blobs.Upload(ctx, datasetKey, blob); err != nil {
		return &batch.Summary, o.fail(ctx, pipelineID, checkpointPersist, fmt.Errorf("failed to persist dataset artifact: %w", err))
	}

	metadata := map[string]any{
		"dataset_key":    datasetKey,
		"train_samples":  ds.Stats.TrainSamples,
		"val_samples":    ds.Stats.ValSamples,
		"feature_dim":    ds.Stats.FeatureDim,
		"num_classes":    ds.Stats.NumClasses,
		"processed":      batch.Summary.Processed,
		"skipped":        batch.Summary.SkippedCount(),
		"failed":         batch.Summary.Failed,
		"total_duration": batch.Summary.TotalDuration,
	}
	if err := o.tracker.Update(ctx, pipelineID, status.Completed, checkpointDone, "Data pipeline complete", metadata); err != nil {
		return &batch.Summary, err
	}

	logger.Info("Data pipeline complete", logging.Fields{
		"dataset_key":   datasetKey,
		"train_samples": ds.Stats.TrainSamples,
		"val_samples":   ds.Stats.ValSamples,
	})

	return &batch.Summary, nil
}

// RunTraining loads a pipeline's dataset artifact, trains the model, persists
// the model artifact and training history, and registers the model.
func (o *Orchestrator) RunTraining(ctx context.Context, pipelineID string) error {
	logger := logging.WithFields(logging.Fields{
		"component":   "orchestrator",
		"function":    "RunTraining",
		"pipeline_id": pipelineID,
	})

	if err := o.tracker.Update(ctx, pipelineID, status.Running, checkpointDiscover, "Loading dataset artifact", nil); err != nil {
		return err
	}

	blob, err := o.blobs.Download(ctx, DatasetKey(pipelineID))
	if err != nil {
		return o.fail(ctx, pipelineID, checkpointDiscover, fmt.Errorf("dataset artifact unreadable: %w", err))
	}
	ds, err := dataset.Decode(blob)
	if err != nil {
		return o.fail(ctx, pipelineID, checkpointDiscover, fmt.Errorf("dataset artifact unreadable: %w", err))
	}

	if err := o.tracker.Update(ctx, pipelineID, status.Running, checkpointExtract, "Training model", nil); err != nil {
		return err
	}

	onEpoch := func(epoch, totalEpochs int, metrics train.EpochMetrics) {
		fraction := float64(epoch) / float64(totalEpochs)
		progress := checkpointExtract + fraction*(checkpointAssemble-checkpointExtract)
		message := fmt.Sprintf("Epoch %d/%d: val_loss=%.4f", epoch, totalEpochs, metrics.ValLoss)
		if err := o.tracker.Update(ctx, pipelineID, status.Running, progress, message, nil); err != nil {
			logger.Warn("Failed to record training progress", logging.Fields{"error": err.Error()})
		}
	}

	result, err := o.trainer.Train(ctx, ds, onEpoch)
	if err != nil {
		return o.fail(ctx, pipelineID, checkpointAssemble, fmt.Errorf("training failed: %w", err))
	}

	if err := o.tracker.Update(ctx, pipelineID, status.Running, checkpointPersist, "Saving model artifact", nil); err != nil {
		return err
	}

	modelBlob, err := train.EncodeModelArtifact(result.Artifact)
	if err != nil {
		return o.fail(ctx, pipelineID, checkpointPersist, err)
	}
	modelKey := ModelKey(pipelineID)
	if err := o.blobs.Upload(ctx, modelKey, modelBlob); err != nil {
		return o.fail(ctx, pipelineID, checkpointPersist, fmt.Errorf("failed to persist model artifact: %w", err))
	}

	historyBlob, err := train.EncodeHistory(result.History)
	if err != nil {
		return o.fail(ctx, pipelineID, checkpointPersist, err)
	}
	if err := o.blobs.Upload(ctx, HistoryKey(pipelineID), historyBlob); err != nil {
		return o.fail(ctx, pipelineID, checkpointPersist, fmt.Errorf("failed to persist training history: %w", err))
	}

	if o.registry != nil {
		err := o.registry.Register(ctx, registry.ModelInfo{
			DisplayName:      fmt.Sprintf("voicecast-ml-model-%s", pipelineID),
			ArtifactKey:      modelKey,
			ServingContainer: registry.DefaultServingContainer,
			Metrics:          result.FinalMetrics,
		})
		if err != nil {
			return o.fail(ctx, pipelineID, checkpointPersist, fmt.Errorf("model registration failed: %w", err))
		}
	}

	metadata := map[string]any{
		"model_key":     modelKey,
		"best_epoch":    result.BestEpoch,
		"best_val_loss": result.BestValLoss,
		"accuracy":      result.FinalMetrics.Accuracy,
		"f1":            result.FinalMetrics.F1,
	}
	if err := o.tracker.Update(ctx, pipelineID, status.Completed, checkpointDone, "Training complete", metadata); err != nil {
		return err
	}

	logger.Info("Training complete", logging.Fields{
		"model_key":     modelKey,
		"best_val_loss": result.BestValLoss,
	})

	return nil
}

// RunAll executes the data pipeline followed by training under a single
// pipeline id.
func (o *Orchestrator) RunAll(ctx context.Context, pipelineID, inputDir string) error {
	if _, err := o.RunDataPipeline(ctx, pipelineID, inputDir); err != nil {
		return err
	}
	return o.RunTraining(ctx, pipelineID)
}
