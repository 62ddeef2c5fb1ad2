package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/voicecast/audioml/config"
)

// resolvePipelineID returns the flag value or a fresh uuid.
func resolvePipelineID(flag string) string {
	if flag != "" {
		return flag
	}
	return uuid.NewString()
}

func newRunDataCommand(env *environment) *cobra.Command {
	var pipelineIDFlag string
	var maxFilesFlag int

	cmd := &cobra.Command{
		Use:   "run-data <input-dir>",
		Short: "Run the data pipeline: discover, extract, augment, assemble",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}

			orchestrator, _, cleanup, err := env.open(cfg, maxFilesFlag)
			if err != nil {
				return err
			}
			defer cleanup()

			pipelineID := resolvePipelineID(pipelineIDFlag)
			fmt.Printf("pipeline id: %s\n", pipelineID)

			summary, err := orchestrator.RunDataPipeline(cmd.Context(), pipelineID, args[0])
			if summary != nil {
				printSummary(summary)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&pipelineIDFlag, "pipeline-id", "", "Pipeline id (generated when omitted)")
	cmd.Flags().IntVar(&maxFilesFlag, "max-files", 0, "Cap on discovered files (0 = no cap)")
	return cmd
}

func newRunTrainCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-train <pipeline-id>",
		Short: "Train a model from a pipeline's dataset artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}

			orchestrator, _, cleanup, err := env.open(cfg, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			return orchestrator.RunTraining(cmd.Context(), args[0])
		},
	}
	return cmd
}

func newRunAllCommand(env *environment) *cobra.Command {
	var pipelineIDFlag string

	cmd := &cobra.Command{
		Use:   "run-all <input-dir>",
		Short: "Run the data pipeline and training end to end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}

			orchestrator, _, cleanup, err := env.open(cfg, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			pipelineID := resolvePipelineID(pipelineIDFlag)
			fmt.Printf("pipeline id: %s\n", pipelineID)

			return orchestrator.RunAll(cmd.Context(), pipelineID, args[0])
		},
	}

	cmd.Flags().StringVar(&pipelineIDFlag, "pipeline-id", "", "Pipeline id (generated when omitted)")
	return cmd
}

func newStatusCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [pipeline-id]",
		Short: "Show status for one pipeline, or all when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}

			_, tracker, cleanup, err := env.open(cfg, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				record, err := tracker.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if record == nil {
					fmt.Printf("no status for pipeline %s\n", args[0])
					return nil
				}
				printRecord(record)
				return nil
			}

			records, err := tracker.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no pipelines recorded")
				return nil
			}
			for i := range records {
				printRecord(&records[i])
			}
			return nil
		},
	}
	return cmd
}

func newInitConfigCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write a configuration file with documented defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Write(args[0], config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	return cmd
}
