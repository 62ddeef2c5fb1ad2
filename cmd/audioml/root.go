package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voicecast/audioml/augment"
	"github.com/voicecast/audioml/config"
	"github.com/voicecast/audioml/dataset"
	"github.com/voicecast/audioml/kv"
	"github.com/voicecast/audioml/pipeline"
	"github.com/voicecast/audioml/preprocess"
	"github.com/voicecast/audioml/registry"
	"github.com/voicecast/audioml/status"
	"github.com/voicecast/audioml/storage"
	"github.com/voicecast/audioml/train"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var dataDirFlag string

	rootCmd := &cobra.Command{
		Use:           "audioml",
		Short:         "Audio ML data and training pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "audioml-data", "Directory for artifacts and status records")

	env := &environment{configPath: &configFlag, dataDir: &dataDirFlag}

	rootCmd.AddCommand(newRunDataCommand(env))
	rootCmd.AddCommand(newRunTrainCommand(env))
	rootCmd.AddCommand(newRunAllCommand(env))
	rootCmd.AddCommand(newStatusCommand(env))
	rootCmd.AddCommand(newInitConfigCommand(env))

	return rootCmd
}

// environment builds the pipeline's collaborators from the persistent flags.
type environment struct {
	configPath *string
	dataDir    *string
}

func (e *environment) loadConfig() (*config.Config, error) {
	if *e.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(*e.configPath)
}

// open wires the orchestrator and its collaborators. The returned cleanup
// closes the status store.
func (e *environment) open(cfg *config.Config, maxFiles int) (*pipeline.Orchestrator, *status.Tracker, func(), error) {
	blobs, err := storage.NewLocal(*e.dataDir + "/artifacts")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open artifact store: %w", err)
	}

	store, err := kv.NewBadger(kv.BadgerOptions{Dir: *e.dataDir + "/status"})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open status store: %w", err)
	}
	tracker := status.NewTracker(store)

	preParams := preprocess.DefaultParams()
	preParams.SampleRate = cfg.DataProcessing.SampleRate
	preParams.MinDuration = cfg.DataProcessing.MinDuration
	preParams.MaxDuration = cfg.DataProcessing.MaxDuration
	preParams.Normalize = cfg.DataProcessing.Normalization
	pre := preprocess.NewAudioPreprocessor(preParams)

	augmenter := augment.NewDataAugmentation(cfg.DataProcessing.SampleRate, augment.DefaultParams())

	assembler := dataset.NewAssembler(dataset.Params{
		ValidationSplit: cfg.Training.ValidationSplit,
		Augment:         cfg.DataProcessing.Augmentation.Enabled,
	}, pre, augmenter, nil)

	trainer := train.NewTrainer(train.Params{
		Epochs:       cfg.Training.Epochs,
		LearningRate: cfg.Training.LearningRate,
		BatchSize:    cfg.Training.BatchSize,
		Patience:     cfg.Training.EarlyStopping.Patience,
	})

	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorOptions{
		Coordinator: pipeline.NewCoordinator(pre, cfg.DataProcessing.Workers),
		Assembler:   assembler,
		Trainer:     trainer,
		Tracker:     tracker,
		Blobs:       blobs,
		Registry:    registry.NewBlobRegistry(blobs),
		MaxFiles:    maxFiles,
		Seed:        42,
	})

	cleanup := func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close status store: %v\n", err)
		}
	}
	return orchestrator, tracker, cleanup, nil
}
