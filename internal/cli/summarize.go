package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"papersum/internal/chunker"
	"papersum/internal/pipeline"
	"papersum/internal/summarize"
)

var (
	outputDir   string
	lengthFlag  string
	detailed    bool
	citations   bool
	chunkMethod string
	sequential  bool
	maxWorkers  int
	noKeywords  bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [files or globs]",
	Short: "Summarize one or more papers",
	Long: `Summarize papers from files or glob patterns. Each input produces one
summary, printed to stdout or written next to its source name under --output.

Examples:
  papersum summarize paper.pdf
  papersum summarize --length short paper.pdf
  papersum summarize --detailed --citations paper.pdf
  papersum summarize -o out/ "papers/**/*.pdf" notes.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "write summaries to this directory instead of stdout")
	summarizeCmd.Flags().StringVar(&lengthFlag, "length", "medium", "summary length: short, medium, or detailed")
	summarizeCmd.Flags().BoolVar(&detailed, "detailed", false, "shorthand for --length detailed")
	summarizeCmd.Flags().BoolVar(&citations, "citations", false, "add [Author, Year] citations from the paper's reference list")
	summarizeCmd.Flags().StringVar(&chunkMethod, "chunk-method", "sentence", "chunking method: sentence or token")
	summarizeCmd.Flags().BoolVar(&sequential, "sequential", false, "summarize chunks one at a time instead of in parallel")
	summarizeCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "max concurrent chunk summarizations (default from config)")
	summarizeCmd.Flags().BoolVar(&noKeywords, "no-keywords", false, "skip keyword extraction")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	files, err := expandArgs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files matched")
	}

	if maxWorkers > 0 {
		cfg.MaxWorkers = maxWorkers
	}
	summarizer, _, err := buildSummarizer()
	if err != nil {
		return err
	}

	level := summarize.ParseLevel(lengthFlag)
	if detailed {
		level = summarize.LevelDetailed
	}
	opts := pipeline.Options{
		Level:       level,
		Method:      chunker.ParseMethod(chunkMethod),
		Sequential:  sequential,
		Citations:   citations,
		KeywordsOff: noKeywords,
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Summarizing"),
			progressbar.OptionSetWriter(os.Stderr),
		)
	}

	var failed int
	for _, file := range files {
		if err := summarizeFile(cmd, summarizer, file, opts); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Fprintln(os.Stderr)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func summarizeFile(cmd *cobra.Command, summarizer *pipeline.Summarizer, file string, opts pipeline.Options) error {
	doc, err := parseFile(file)
	if err != nil {
		return err
	}

	result, err := summarizer.Summarize(cmd.Context(), doc, opts)
	if err != nil {
		return err
	}

	out := renderResult(doc.Title, result, opts.Citations)
	if outputDir == "" {
		fmt.Println(out)
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	dest := filepath.Join(outputDir, base+"_summary.md")
	if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// renderResult formats one pipeline result as markdown for stdout or file
// output.
func renderResult(title string, result *pipeline.Result, withRefs bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", title, result.Summary)

	if len(result.Keywords) > 0 {
		b.WriteString("\n## Keywords\n\n")
		for _, kw := range result.Keywords {
			fmt.Fprintf(&b, "- **%s** (%d/10): %s\n", kw.Keyword, kw.Score, kw.Explanation)
		}
	}

	if withRefs && result.ReferenceCount > 0 {
		b.WriteString("\n## References\n\n")
		for _, ref := range result.References {
			fmt.Fprintf(&b, "- %s\n", ref)
		}
	}
	return b.String()
}

// expandArgs resolves plain paths and glob patterns (including **) into a
// deduplicated file list in argument order.
func expandArgs(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		matches, err := doublestar.Glob(os.DirFS(base), pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", arg, err)
		}
		for _, m := range matches {
			add(filepath.Join(base, m))
		}
	}
	return files, nil
}
