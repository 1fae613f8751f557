package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "cloze",
	Short:         "Cloze test generator",
	Long:          "cloze turns a list of vocabulary words into a fill-in-the-blank reading exercise using an LLM.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN; a file path for sqlite (overrides CLOZE_DB_DSN and CLOZE_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides CLOZE_CONFIG_PATH)")
	rootCmd.PersistentFlags().String("user", "", "User id that owns history and cached words (default \"local\")")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
