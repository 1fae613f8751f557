package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cloze/internal/dictionary"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <word>",
	Short: "Look up a word's meaning, part of speech and phonetic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		detail, err := a.dictionaryService(ctx).Lookup(ctx, a.user, args[0])
		if errors.Is(err, dictionary.ErrNotFound) {
			return fmt.Errorf("no dictionary entry for %q", args[0])
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return printJSON(w, detail)
		}
		fmt.Fprintf(w, "%s  %s  (%s)\n\n%s\n", detail.Word, detail.Phonetic, detail.PartOfSpeech, detail.Meaning)
		return nil
	},
}

func init() {
	lookupCmd.Flags().Bool("json", false, "Print the result as JSON")
}
