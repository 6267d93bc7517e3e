package summarize

import "strings"

// DetailLevel controls prompt verbosity and the output-token ceiling.
type DetailLevel string

const (
	LevelShort    DetailLevel = "short"
	LevelMedium   DetailLevel = "medium"
	LevelDetailed DetailLevel = "detailed"
)

// ParseLevel maps a request string to a DetailLevel, defaulting to medium.
func ParseLevel(s string) DetailLevel {
	switch DetailLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelShort:
		return LevelShort
	case LevelDetailed:
		return LevelDetailed
	default:
		return LevelMedium
	}
}

// mathDirective is prepended to every system message. The compiler honors
// the same formatting contract, so delimiters survive the synthesis pass.
const mathDirective = "Whenever you mention any mathematical expression - complexities, equations, Greek letters, " +
	"sums, integrals, subscripts/superscripts - wrap it in LaTeX delimiters: `$...$` for inline math " +
	"and `$$...$$` for display math.\n\n"

// segmentSystem returns the system message and output-token ceiling for a
// per-chunk summarization call at the given detail level.
func segmentSystem(level DetailLevel) (string, int) {
	switch level {
	case LevelShort:
		return mathDirective + "You are a research assistant that creates very short summaries (no more than 3 sentences).", 300
	case LevelDetailed:
		return mathDirective + "You are a research assistant that creates comprehensive summaries with detailed breakdowns of each subtopic for complete beginners.", 5000
	default:
		return mathDirective + "You are a research assistant that creates concise yet comprehensive summaries of academic papers.", 1500
	}
}

// compileSystem returns the system message and output-token ceiling for the
// synthesis pass.
func compileSystem(level DetailLevel) (string, int) {
	if level == LevelDetailed {
		return mathDirective + "You are a research assistant that creates cohesive summaries from partial summaries of academic papers " +
			"with detailed breakdowns of each subtopic and concept within the research paper for complete beginners.", 10000
	}
	return mathDirective + "You are a research assistant that creates cohesive summaries from partial summaries of academic papers.", 2000
}
