package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"papersum/internal/llm"
	"papersum/internal/references"
)

var refsNoModel bool

var referencesCmd = &cobra.Command{
	Use:   "references [file]",
	Short: "Extract the reference list from a paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := parseFile(args[0])
		if err != nil {
			return err
		}

		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		var client llm.Client
		if !refsNoModel {
			c, err := llm.NewOpenAIClient(llm.Config{
				APIKey:  cfg.OpenAIAPIKey,
				BaseURL: cfg.OpenAIBaseURL,
				Model:   cfg.Model,
			})
			if err != nil {
				return err
			}
			client = c
		}

		refs, found := references.NewExtractor(client, log).Extract(cmd.Context(), doc.Text())
		for i, ref := range refs {
			if found {
				fmt.Printf("%d. %s\n", i+1, ref)
			} else {
				fmt.Println(ref)
			}
		}
		return nil
	},
}

func init() {
	referencesCmd.Flags().BoolVar(&refsNoModel, "no-model", false, "use only pattern strategies, no model fallback")
	rootCmd.AddCommand(referencesCmd)
}
