package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"papersum/internal/keywords"
	"papersum/internal/llm"
)

var keywordCount int

var keywordsCmd = &cobra.Command{
	Use:   "keywords [file]",
	Short: "Extract scored keywords from a paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := parseFile(args[0])
		if err != nil {
			return err
		}

		client, err := llm.NewOpenAIClient(llm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return err
		}

		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		kws := keywords.Extract(cmd.Context(), client, log, doc.Text(), keywordCount)
		if len(kws) == 0 {
			fmt.Println("No keywords extracted.")
			return nil
		}
		for _, kw := range kws {
			fmt.Printf("%-30s %2d/10  %s\n", kw.Keyword, kw.Score, kw.Explanation)
		}
		return nil
	},
}

func init() {
	keywordsCmd.Flags().IntVarP(&keywordCount, "count", "n", keywords.DefaultCount, "number of keywords to extract")
	rootCmd.AddCommand(keywordsCmd)
}
