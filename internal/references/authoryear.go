package references

import (
	"regexp"
	"strings"
)

// Author spans longer than this are collapsed to "First et al.".
const etAlThreshold = 40

var (
	// APA style: "Lastname, F., & Other, G. (2019). Title..."
	apaRe = regexp.MustCompile(`^([A-Z][^(]{0,80}?)\s*\(((?:1[89]|20)\d{2})[a-z]?\)`)

	// Numbered entry: "[3] Lastname, F., Title, Journal, 2019." or
	// "3. Lastname et al. (2019) ..."
	numberedRe = regexp.MustCompile(`^\[?\d{1,3}\]?\.?\s+([A-Z][^(\d]{0,80}?)[,.(].*?\b((?:1[89]|20)\d{2})\b`)

	// Journal style: "Lastname F, Other G. Title. Journal. 2019;12(3)."
	journalRe = regexp.MustCompile(`^([A-Z][A-Za-z'-]+(?:\s+[A-Z]\.?)+)[,.].*?\b((?:1[89]|20)\d{2})\b`)

	// Last resort: any capitalized word plus any plausible year.
	anyCapRe  = regexp.MustCompile(`\b[A-Z][a-z][A-Za-z'-]*\b`)
	anyYearRe = regexp.MustCompile(`\b((?:1[89]|20)\d{2})\b`)
)

// AuthorYear parses one reference entry into an "Author, Year" string for
// citation guidance. Best effort: parse styles are tried from strictest to
// loosest, and false reports false when no author/year pair is derivable.
func AuthorYear(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	for _, re := range []*regexp.Regexp{apaRe, numberedRe, journalRe} {
		if m := re.FindStringSubmatch(ref); m != nil {
			author := collapseAuthors(strings.TrimRight(strings.TrimSpace(m[1]), " ,;"))
			if author != "" {
				return author + ", " + m[2], true
			}
		}
	}

	author := anyCapRe.FindString(ref)
	year := anyYearRe.FindString(ref)
	if author != "" && year != "" {
		return author + ", " + year, true
	}
	return "", false
}

// AuthorYears derives up to limit citation strings from a reference list,
// skipping entries that yield no author/year pair.
func AuthorYears(refs []string, limit int) []string {
	var out []string
	for _, ref := range refs {
		if ay, ok := AuthorYear(ref); ok {
			out = append(out, ay)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// collapseAuthors shortens a long multi-author span to "First et al.".
func collapseAuthors(author string) string {
	if len(author) <= etAlThreshold {
		return author
	}
	first := author
	if i := strings.IndexAny(first, ",;"); i > 0 {
		first = first[:i]
	}
	if i := strings.Index(first, " and "); i > 0 {
		first = first[:i]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return author
	}
	return first + " et al."
}
