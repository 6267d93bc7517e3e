package summarize

import (
	"context"
	"fmt"
	"strings"

	"papersum/internal/llm"
)

// maxCitationHints bounds how many Author, Year strings are offered to the
// synthesis prompt so extracted bibliographies cannot blow up the request.
const maxCitationHints = 25

// CompileOptions controls the synthesis pass.
type CompileOptions struct {
	Level DetailLevel

	// Citations enables [Author, Year] attribution instructions built from
	// AuthorYears; when the list is empty a generic instruction is used.
	Citations   bool
	AuthorYears []string
}

// Compile merges partial summaries in chunk order into one final summary.
// A single partial is returned verbatim with no model call, preserving
// single-chunk fidelity.
func Compile(ctx context.Context, client llm.Client, partials []string, opts CompileOptions) (string, error) {
	if len(partials) == 0 {
		return "", fmt.Errorf("compile summary: no partial summaries")
	}
	if len(partials) == 1 {
		return partials[0], nil
	}

	var combined strings.Builder
	for i, partial := range partials {
		if i > 0 {
			combined.WriteString("\n\n")
		}
		fmt.Fprintf(&combined, "Chunk %d Summary:\n%s", i+1, partial)
	}

	var prompt string
	if opts.Level == LevelDetailed {
		prompt = fmt.Sprintf(`Below are detailed summaries of different parts of a research paper with detailed explanation of concepts. Please synthesize these summaries
into a coherent summary of the entire paper and make sure to add extensive detail about every subtopic and concept. Eliminate redundancies and organize
the information logically. Focus on extracting key words and giving long detailed explanation about every single keyword. Do not include titles,
make it flow like a very detailed human-written summary written for someone with no background knowledge on the topic.

%s`, combined.String())
	} else {
		prompt = fmt.Sprintf(`Below are summaries of different parts of a research paper. Please synthesize these summaries
into a coherent, comprehensive summary of the entire paper. Eliminate redundancies and organize
the information logically. Focus on the research question, methodology, key findings, and conclusions.

%s`, combined.String())
	}

	if opts.Citations {
		prompt += "\n\n" + citationInstruction(opts.AuthorYears)
	}

	system, maxTokens := compileSystem(opts.Level)
	out, err := client.Complete(ctx, llm.Request{
		System:      system,
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("compile summary: %w", err)
	}
	return out, nil
}

// citationInstruction builds the citation block for the synthesis prompt.
func citationInstruction(authorYears []string) string {
	if len(authorYears) == 0 {
		return "Wherever you attribute a claim, finding, or method to prior work, cite it inline in [Author, Year] " +
			"format using the author and year conventions of the paper itself."
	}
	if len(authorYears) > maxCitationHints {
		authorYears = authorYears[:maxCitationHints]
	}
	var b strings.Builder
	b.WriteString("Wherever you attribute a claim, finding, or method to prior work, cite it inline in [Author, Year] format. ")
	b.WriteString("These citations were extracted from the paper's reference list:\n")
	for _, ay := range authorYears {
		fmt.Fprintf(&b, "- [%s]\n", ay)
	}
	return b.String()
}
