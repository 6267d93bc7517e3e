// Package references locates and parses bibliographic entries in extracted
// paper text. Extraction is a chain of strategies tried in order of
// reliability; pattern failures fall through to the next strategy and never
// abort a summarization request.
package references

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"papersum/internal/llm"
)

// MaxEntries caps the extracted list to bound downstream prompt size.
const MaxEntries = 100

// Sentinel is returned as the sole entry when no strategy finds anything.
const Sentinel = "No references found in the document."

// Extractor runs the strategy cascade. The client is optional; without it
// the model-assisted strategy is skipped.
type Extractor struct {
	client     llm.Client
	log        *slog.Logger
	maxEntries int
}

func NewExtractor(client llm.Client, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		client:     client,
		log:        log,
		maxEntries: MaxEntries,
	}
}

// Extract returns the ordered, deduplicated reference list for a document,
// or a single sentinel entry when nothing was found. The boolean reports
// whether real references were extracted. It never returns an error: every
// strategy failure degrades to the next strategy.
func (e *Extractor) Extract(ctx context.Context, text string) ([]string, bool) {
	section, hasSection := findSection(text)

	var entries []string
	if hasSection {
		entries = splitEntries(section)
	}
	if len(entries) == 0 {
		entries = scanNumbered(text)
	}
	if len(entries) == 0 && e.client != nil {
		entries = e.modelAssisted(ctx, text, section)
	}

	entries = dedupe(entries, e.maxEntries)
	if len(entries) > 0 {
		return entries, true
	}

	if n := countInTextCitations(text); n > 0 {
		return []string{fmt.Sprintf("No reference list found; detected %d in-text citations.", n)}, false
	}
	return []string{Sentinel}, false
}

var (
	sectionHeadingRe = regexp.MustCompile(`(?im)^[ \t>*#]*(references and notes|reference list|references|bibliography|works cited|literature cited|citations)[ \t]*:?[ \t]*$`)

	// A later all-caps line (APPENDIX, ACKNOWLEDGMENTS, ...) closes the
	// reference section.
	capsHeadingRe = regexp.MustCompile(`(?m)^[ \t]*[A-Z][A-Z0-9 &/-]{3,}[ \t]*$`)
)

// findSection captures the span between a reference heading and the next
// all-caps section heading or document end. The last matching heading wins:
// papers mention "references" in prose, but the list itself is near the end.
func findSection(text string) (string, bool) {
	locs := sectionHeadingRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return "", false
	}
	start := locs[len(locs)-1][1]
	section := text[start:]

	if end := capsHeadingRe.FindStringIndex(section); end != nil && end[0] > 0 {
		section = section[:end[0]]
	}
	section = strings.TrimSpace(section)
	return section, section != ""
}

// splitStrategies are tried in order on a captured reference section; the
// first one to produce a usable entry wins.
var splitStrategies = []func(string) []string{
	splitYearTerminated,
	splitNumberedEntries,
	splitAuthorInitial,
	accumulateLines,
	splitAggressiveYear,
}

func splitEntries(section string) []string {
	for _, strategy := range splitStrategies {
		if entries := usable(strategy(section)); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

var (
	// A year terminator closing a line is the most reliable entry boundary:
	// virtually every reference ends "... 2019." or "... (2019)." before a
	// newline.
	yearEndRe = regexp.MustCompile(`\(?(?:1[89]|20)\d{2}[a-z]?\)?\.[ \t]*\n`)

	numberedStartRe = regexp.MustCompile(`(?m)^[ \t]*(?:\[\d{1,3}\]|\d{1,3}\.)[ \t]+[A-Z]`)

	authorInitialStartRe = regexp.MustCompile(`(?m)^[A-Z][A-Za-z'-]+,[ \t]*(?:[A-Z]\.[ \t]*)+`)

	anyYearEndRe = regexp.MustCompile(`\(?(?:1[89]|20)\d{2}[a-z]?\)?\.`)
)

// splitYearTerminated cuts entries after year terminators at line ends.
func splitYearTerminated(section string) []string {
	locs := yearEndRe.FindAllStringIndex(section, -1)
	if len(locs) == 0 {
		return nil
	}
	var entries []string
	prev := 0
	for _, loc := range locs {
		entries = append(entries, section[prev:loc[1]])
		prev = loc[1]
	}
	if rest := strings.TrimSpace(section[prev:]); rest != "" {
		entries = append(entries, rest)
	}
	return entries
}

// splitNumberedEntries cuts entries before numbered markers like "[12]" or
// "7." at line starts.
func splitNumberedEntries(section string) []string {
	return splitBefore(section, numberedStartRe.FindAllStringIndex(section, -1))
}

// splitAuthorInitial cuts entries before "Lastname, F." line starts.
func splitAuthorInitial(section string) []string {
	return splitBefore(section, authorInitialStartRe.FindAllStringIndex(section, -1))
}

func splitBefore(section string, locs [][]int) []string {
	if len(locs) < 2 {
		return nil
	}
	var entries []string
	for i, loc := range locs {
		end := len(section)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		entries = append(entries, section[loc[0]:end])
	}
	return entries
}

// accumulateLines walks the section line by line, opening a new entry on
// start-of-entry markers and appending continuation lines to the current
// one.
func accumulateLines(section string) []string {
	var entries []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			entries = append(entries, s)
		}
		current.Reset()
	}

	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if numberedStartRe.MatchString(line) || authorInitialStartRe.MatchString(trimmed) {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(trimmed)
	}
	flush()

	if len(entries) < 2 {
		return nil
	}
	return entries
}

// splitAggressiveYear cuts after any year terminator regardless of line
// position. Noisy, so it runs last.
func splitAggressiveYear(section string) []string {
	locs := anyYearEndRe.FindAllStringIndex(section, -1)
	if len(locs) == 0 {
		return nil
	}
	var entries []string
	prev := 0
	for _, loc := range locs {
		entries = append(entries, section[prev:loc[1]])
		prev = loc[1]
	}
	return entries
}

// scanNumbered looks for "[n] Entry ..." lists anywhere in the document,
// for papers whose reference list carries no recognizable heading.
var bracketEntryStartRe = regexp.MustCompile(`(?m)^[ \t]*\[\d{1,3}\][ \t]+\S`)

func scanNumbered(text string) []string {
	locs := bracketEntryStartRe.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return nil
	}
	var entries []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		entry := text[loc[0]:end]
		// A blank line ends the entry before unrelated body text.
		if cut := strings.Index(entry, "\n\n"); cut > 0 {
			entry = entry[:cut]
		}
		entries = append(entries, entry)
	}
	return usable(entries)
}

// modelAssisted asks the model to transcribe references verbatim, one per
// line. It runs only after every pattern strategy came up empty.
func (e *Extractor) modelAssisted(ctx context.Context, text, section string) []string {
	input := section
	if input == "" {
		// References live at the end of a paper.
		const tailChars = 12000
		if len(text) > tailChars {
			start := len(text) - tailChars
			for start < len(text) && !utf8.RuneStart(text[start]) {
				start++
			}
			input = text[start:]
		} else {
			input = text
		}
	}

	prompt := fmt.Sprintf(`The following text is from an academic paper. List every bibliographic reference entry it contains, verbatim, one per line. Do not invent, complete, or reformat entries; copy them exactly as written. If there are no reference entries, respond with NONE.

Text:
%s`, input)

	out, err := e.client.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: 0.0,
		MaxTokens:   2000,
	})
	if err != nil {
		e.log.Warn("model-assisted reference extraction failed", "error", err)
		return nil
	}

	var entries []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line == "" || strings.EqualFold(line, "none") {
			continue
		}
		entries = append(entries, line)
	}
	return usable(entries)
}

var (
	inTextAuthorYearRe = regexp.MustCompile(`\([A-Z][A-Za-z-]+(?:[ \t]+(?:et al\.?|and|&)[ \t]+[A-Z][A-Za-z-]+)?,?[ \t]+(?:1[89]|20)\d{2}[a-z]?\)`)
	inTextBracketRe    = regexp.MustCompile(`\[\d{1,3}(?:[ \t]*[,-][ \t]*\d{1,3})*\]`)
)

// countInTextCitations counts parenthetical and bracketed citations in body
// text, used only to report that citations exist without a reference list.
func countInTextCitations(text string) int {
	return len(inTextAuthorYearRe.FindAllString(text, -1)) +
		len(inTextBracketRe.FindAllString(text, -1))
}

// usable filters split artifacts down to plausible reference entries.
func usable(entries []string) []string {
	var out []string
	for _, entry := range entries {
		entry = strings.Join(strings.Fields(entry), " ")
		if len(entry) < 20 || len(entry) > 600 {
			continue
		}
		if !strings.ContainsFunc(entry, unicode.IsLetter) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeKey reduces an entry to its lowercase alphanumeric form so
// near-duplicate captures from different strategies collapse.
func normalizeKey(entry string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(entry), "")
}

// dedupe preserves first-seen order and caps the result.
func dedupe(entries []string, max int) []string {
	seen := make(map[string]struct{}, len(entries))
	var out []string
	for _, entry := range entries {
		key := normalizeKey(entry)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry)
		if len(out) >= max {
			break
		}
	}
	return out
}
