package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/logging"
	"github.com/killallgit/transcribe-api/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transcribe-api",
	Short: "Transcribe API server",
	Long: `Transcribe API - speech to text over HTTP

Uploads are transcribed with whisper.cpp models that are downloaded on
first use and kept in memory for the life of the process. Finished
transcripts can be corrected by an OpenAI compatible LLM.

Features:
  • Transcription and retranscription with another model
  • Model download progress over Server-Sent Events
  • Optional LLM enhancement with Arabic diacritics
  • Cascade deletion of audio files and their transcriptions`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig loads the configuration when a command needs it
func loadConfig() {
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Flags win over logging.* settings
// when they are set explicitly.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	opts := logging.Options{
		Level: config.GetString("logging.level"),
		JSON:  config.GetBool("logging.json"),
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") || opts.Level == "" {
		opts.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("json-logs") {
		opts.JSON, _ = flags.GetBool("json-logs")
	}

	return logging.New(opts)
}
