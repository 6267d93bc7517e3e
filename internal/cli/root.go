// Package cli implements the papersum command-line tool for summarizing
// papers without running the HTTP service.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"papersum/internal/config"
	"papersum/internal/llm"
	"papersum/internal/pipeline"
	"papersum/internal/token"
)

var (
	cfgFile   string
	cfg       config.Config
	modelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "papersum",
	Short: "Summarize research papers with position-aware chunked prompting",
	Long: `papersum extracts text from research papers (PDF, DOCX, HTML, Markdown,
plain text), splits it into token-budgeted chunks, summarizes each chunk with a
position-aware prompt, and compiles the partial summaries into one final summary.
It can also extract reference lists and keywords on their own.

Example usage:
  papersum summarize paper.pdf                  # Medium-length summary
  papersum summarize --detailed --citations paper.pdf
  papersum summarize -o summaries/ "papers/**/*.pdf"
  papersum references paper.pdf                 # Just the bibliography
  papersum keywords paper.pdf                   # Just the keywords`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if modelFlag != "" {
			cfg.Model = modelFlag
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML; env vars override)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "model id (default gpt-4o)")
}

// buildSummarizer wires the pipeline from the loaded config. The logger
// writes to stderr so command output on stdout stays clean.
func buildSummarizer() (*pipeline.Summarizer, llm.Client, error) {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, nil, err
	}

	codec, err := token.ForModel(cfg.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("load tokenizer: %w", err)
	}

	summarizer := pipeline.NewSummarizer(client, codec, log, pipeline.Config{
		Budget:      cfg.ChunkBudget(),
		Overlap:     cfg.ChunkOverlap,
		MaxWorkers:  cfg.MaxWorkers,
		MaxKeywords: cfg.MaxKeywords,
	})
	return summarizer, client, nil
}
