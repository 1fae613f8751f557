package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cloze/internal/exercise"
	"github.com/abhisek/cloze/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved exercises",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved exercises, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.historyService().List(cmd.Context(), a.user, limit)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(w, "No saved exercises.")
			return nil
		}

		fmt.Fprintf(w, "%-36s  %-16s  %6s  %-8s  %s\n", "ID", "Created", "Blanks", "Answered", "Words")
		fmt.Fprintln(w, strings.Repeat("─", 100))
		for _, e := range entries {
			answered := ""
			if len(e.Answers) > 0 {
				answered = "yes"
			}
			fmt.Fprintf(w, "%-36s  %-16s  %6d  %-8s  %s\n",
				e.ID,
				e.CreatedAt().Local().Format("2006-01-02 15:04"),
				len(e.Options),
				answered,
				truncate(oneLine(e.WordList), 30),
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		details, _ := cmd.Flags().GetBool("details")

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.historyService().Get(cmd.Context(), a.user, args[0])
		if err != nil {
			return historyErr(args[0], err)
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return printJSON(w, entry)
		}

		fmt.Fprintf(w, "ID:      %s\n", entry.ID)
		fmt.Fprintf(w, "Created: %s\n", entry.CreatedAt().Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Words:   %s\n\n", oneLine(entry.WordList))
		printExercise(w, &entry.Exercise, details)

		if len(entry.Answers) > 0 && len(entry.AnswerKey) > 0 {
			fmt.Fprintln(w)
			printScore(w, exercise.CheckAnswers(&entry.Exercise, entry.Answers))
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.historyService().Delete(cmd.Context(), a.user, args[0]); err != nil {
			return historyErr(args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved exercises of the user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("refusing to clear history without --yes")
		}

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.historyService().Clear(cmd.Context(), a.user)
		if err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d exercise(s)\n", n)
		return nil
	},
}

var historyAnswerCmd = &cobra.Command{
	Use:   "answer <id> <blank>=<answer>...",
	Short: "Record answers for a saved exercise and show the score",
	Long: `Record answers for a saved exercise and show the score.

Each answer is written as blank=word, for example 1=resilient. With
--letters the answer is the option letter instead, for example 1=B.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		useLetters, _ := cmd.Flags().GetBool("letters")

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		svc := a.historyService()
		ctx := cmd.Context()
		id := args[0]

		entry, err := svc.Get(ctx, a.user, id)
		if err != nil {
			return historyErr(id, err)
		}

		answers, err := parseAnswers(args[1:], &entry.Exercise, useLetters)
		if err != nil {
			return err
		}

		score, err := svc.RecordAnswers(ctx, a.user, id, answers)
		if err != nil {
			return historyErr(id, err)
		}
		printScore(cmd.OutOrStdout(), score)
		return nil
	},
}

var historyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import history exported from the web client (\"-\" reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read export: %w", err)
		}

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.historyService().Import(cmd.Context(), a.user, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d exercise(s)\n", n)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print saved exercises as JSON that import reads back",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.historyService().List(cmd.Context(), a.user, 0)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		return printJSON(cmd.OutOrStdout(), entries)
	},
}

// parseAnswers reads blank=answer pairs. With letters, A-D select the
// blank's option by position.
func parseAnswers(pairs []string, ex *exercise.Exercise, letters bool) (map[int]string, error) {
	answers := make(map[int]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q: want blank=answer", p)
		}
		n, ok := exercise.ParseBlank(key)
		if !ok {
			return nil, fmt.Errorf("answer %q: blank must be a positive number", p)
		}
		opts, known := ex.Options[n]
		if !known {
			return nil, fmt.Errorf("answer %q: exercise has no blank %d", p, n)
		}

		value = strings.TrimSpace(value)
		if letters {
			idx := strings.Index("ABCD", strings.ToUpper(value))
			if len(value) != 1 || idx < 0 {
				return nil, fmt.Errorf("answer %q: letter must be A, B, C or D", p)
			}
			value = opts[idx]
		}
		answers[n] = value
	}
	return answers, nil
}

func historyErr(id string, err error) error {
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("no saved exercise with id %s", id)
	}
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of exercises to show (0 for all)")
	historyShowCmd.Flags().Bool("json", false, "Print the entry as JSON")
	historyShowCmd.Flags().BoolP("details", "d", false, "Show phonetics and meanings of each option")
	historyClearCmd.Flags().Bool("yes", false, "Confirm deleting every saved exercise")
	historyAnswerCmd.Flags().Bool("letters", false, "Answers are option letters (A-D) instead of words")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyAnswerCmd)
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyExportCmd)
}
