package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/killallgit/transcribe-api/internal/engine/whisper"
	"github.com/killallgit/transcribe-api/pkg/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage speech recognition models",
	Long: `List, download and inspect the whisper.cpp models in the model directory.

The server downloads a model on first use; pull fetches it ahead of time.`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known models",
	RunE:  runModelsList,
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull <model>...",
	Short: "Download models into the model directory",
	Long: `Download one or more models and verify their checksums.

A progress bar is shown when stderr is a terminal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runModelsPull,
}

var modelsStatusCmd = &cobra.Command{
	Use:   "status <model>",
	Short: "Show whether a model is downloaded",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsStatus,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsPullCmd)
	modelsCmd.AddCommand(modelsStatusCmd)
}

func runModelsList(cmd *cobra.Command, args []string) error {
	dir := config.GetString("whisper.model_dir")
	def := config.GetString("whisper.default_model")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Models in %s\n", dir)
	for _, m := range whisper.ListAvailable(dir) {
		marker := " "
		if m.Name == def {
			marker = "*"
		}
		state := "-"
		if m.Downloaded {
			state = "downloaded"
		}
		fmt.Fprintf(out, "%s %-16s %6d MB  %s\n", marker, m.Name, m.SizeMB, state)
	}
	return nil
}

func runModelsPull(cmd *cobra.Command, args []string) error {
	for _, name := range args {
		if !whisper.IsKnownModel(name) {
			return fmt.Errorf("unknown model %q", name)
		}
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	loader := newModelLoader(cfg, logger, true)

	out := cmd.OutOrStdout()
	for _, name := range args {
		handle, err := loader.Load(cmd.Context(), name, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s ready at %s (%d bytes)\n", handle.Name, handle.Path, handle.SizeBytes)
	}
	return nil
}

func runModelsStatus(cmd *cobra.Command, args []string) error {
	model, ok := whisper.LookupModel(args[0])
	if !ok {
		return fmt.Errorf("unknown model %q", args[0])
	}

	dir := config.GetString("whisper.model_dir")
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model:       %s\n", model.Name)
	fmt.Fprintf(out, "File:        %s\n", filepath.Join(dir, model.FileName))
	fmt.Fprintf(out, "Size:        ~%d MB\n", model.SizeMB)
	fmt.Fprintf(out, "Downloaded:  %t\n", whisper.IsDownloaded(dir, model.Name))
	return nil
}
