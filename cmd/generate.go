package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cloze/internal/exercise"
	"github.com/abhisek/cloze/internal/llm"
)

type generateOutput struct {
	exercise.Result
	HistoryID string `json:"historyId,omitempty"`
}

var generateCmd = &cobra.Command{
	Use:   "generate [words...]",
	Short: "Generate a cloze exercise from a word list",
	Long: `Generate a cloze exercise from a word list.

Words come from the arguments, from --words-file, or from stdin when it is
not a terminal. Commas and whitespace both separate words.`,
	Example: `  cloze generate resilient meticulous ambiguous
  cloze generate --words-file words.txt --json
  echo "serendipity, ephemeral" | cloze generate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wordsFile, _ := cmd.Flags().GetString("words-file")
		attempts, _ := cmd.Flags().GetInt("attempts")
		noSave, _ := cmd.Flags().GetBool("no-save")
		asJSON, _ := cmd.Flags().GetBool("json")
		details, _ := cmd.Flags().GetBool("details")

		raw, err := readWords(cmd, args, wordsFile)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := llm.WithUser(cmd.Context(), a.user)
		svc, err := a.clozeService(ctx, attempts)
		if err != nil {
			return err
		}

		res := svc.GenerateCloze(ctx, raw)
		out := generateOutput{Result: res}
		if res.Success && !noSave {
			entry, err := a.historyService().Save(ctx, a.user, raw, res.Exercise)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: could not save to history:", err)
			} else {
				out.HistoryID = entry.ID
			}
		}

		w := cmd.OutOrStdout()
		if asJSON {
			if err := printJSON(w, out); err != nil {
				return err
			}
		} else if res.Success {
			printExercise(w, res.Exercise, details)
			if out.HistoryID != "" {
				fmt.Fprintf(w, "\nSaved as %s\n", out.HistoryID)
			}
		}

		if !res.Success {
			return errors.New(res.Error)
		}
		return nil
	},
}

// readWords returns the raw word list from args, the words file or stdin.
func readWords(cmd *cobra.Command, args []string, wordsFile string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case wordsFile == "-":
		return readAll(cmd.InOrStdin())
	case wordsFile != "":
		data, err := os.ReadFile(wordsFile)
		if err != nil {
			return "", fmt.Errorf("read words file: %w", err)
		}
		return string(data), nil
	}

	if f, ok := cmd.InOrStdin().(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	return readAll(cmd.InOrStdin())
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read words: %w", err)
	}
	return string(data), nil
}

func init() {
	generateCmd.Flags().StringP("words-file", "f", "", "Read words from a file (\"-\" for stdin)")
	generateCmd.Flags().Int("attempts", 0, "Total generation attempts on retryable failures (default from CLOZE_RETRY_MAX_ATTEMPTS)")
	generateCmd.Flags().Bool("no-save", false, "Do not save the exercise to history")
	generateCmd.Flags().Bool("json", false, "Print the result as JSON")
	generateCmd.Flags().BoolP("details", "d", false, "Show phonetics and meanings of each option")
}
