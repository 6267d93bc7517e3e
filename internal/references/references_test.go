package references

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"papersum/internal/llm"
)

func TestExtract_LabeledSectionAuthorInitialEntries(t *testing.T) {
	text := `The introduction mentions prior references in passing.

Body of the paper goes here with plenty of discussion.

References

Smith, J. (2019). Deep learning for citation parsing. Journal of AI Research.
Jones, K. (2020). Graph methods for document analysis. Proceedings of the Annual Conference.

APPENDIX A
Supplementary material unrelated to the bibliography.`

	e := NewExtractor(nil, nil)
	refs, found := e.Extract(context.Background(), text)

	if !found {
		t.Fatalf("expected references, got %v", refs)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(refs), refs)
	}
	if !strings.HasPrefix(refs[0], "Smith, J. (2019)") {
		t.Errorf("first entry = %q", refs[0])
	}
	if !strings.HasPrefix(refs[1], "Jones, K. (2020)") {
		t.Errorf("second entry = %q", refs[1])
	}
	for _, ref := range refs {
		if strings.Contains(ref, "Supplementary") {
			t.Errorf("entry leaked past the closing heading: %q", ref)
		}
	}
}

func TestExtract_YearTerminatedEntries(t *testing.T) {
	text := `REFERENCES

Smith J, Brown K. Neural approaches to summarization. Journal of ML, 2019.
Davis L. Token budgeting strategies for long documents, 2021.
`
	e := NewExtractor(nil, nil)
	refs, found := e.Extract(context.Background(), text)

	if !found || len(refs) != 2 {
		t.Fatalf("found=%v refs=%v", found, refs)
	}
	if !strings.HasSuffix(refs[0], "2019.") {
		t.Errorf("first entry = %q", refs[0])
	}
}

func TestExtract_NumberedScanWithoutHeading(t *testing.T) {
	text := `This paper builds on earlier systems without a labeled bibliography.

[1] First reference entry describing an earlier summarization system.
[2] Second reference entry describing a tokenization library in detail.

The conclusion restates the contributions.`

	e := NewExtractor(nil, nil)
	refs, found := e.Extract(context.Background(), text)

	if !found {
		t.Fatalf("expected references, got %v", refs)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(refs), refs)
	}
	if !strings.HasPrefix(refs[0], "[1]") || !strings.HasPrefix(refs[1], "[2]") {
		t.Errorf("entries = %v", refs)
	}
	if strings.Contains(refs[1], "conclusion") {
		t.Errorf("second entry absorbed body text: %q", refs[1])
	}
}

func TestExtract_ModelAssistedFallback(t *testing.T) {
	text := strings.Repeat("Prose with no reference structure at all. ", 50)

	client := &llm.MockClient{Respond: func(req llm.Request) (string, error) {
		return "- Smith, J. (2019). A transcription of one entry. Journal.\nNONE\n", nil
	}}
	e := NewExtractor(client, nil)
	refs, found := e.Extract(context.Background(), text)

	if !found || len(refs) != 1 {
		t.Fatalf("found=%v refs=%v", found, refs)
	}
	if strings.HasPrefix(refs[0], "-") {
		t.Errorf("list marker not stripped: %q", refs[0])
	}
	if len(client.Requests()) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(client.Requests()))
	}
	if client.Requests()[0].Temperature != 0 {
		t.Errorf("model-assisted extraction should run at temperature 0")
	}
}

func TestExtract_InTextCitationSentinel(t *testing.T) {
	text := `Earlier work (Smith, 2019) laid the groundwork and later work (Jones, 2021) extended it.`

	e := NewExtractor(nil, nil)
	refs, found := e.Extract(context.Background(), text)

	if found {
		t.Fatalf("expected no real references, got %v", refs)
	}
	if len(refs) != 1 || refs[0] != "No reference list found; detected 2 in-text citations." {
		t.Errorf("refs = %v", refs)
	}
}

func TestExtract_NothingFoundSentinel(t *testing.T) {
	e := NewExtractor(nil, nil)
	refs, found := e.Extract(context.Background(), "Plain prose with no citations of any kind.")

	if found || len(refs) != 1 || refs[0] != Sentinel {
		t.Errorf("found=%v refs=%v", found, refs)
	}
}

func TestDedupe_NormalizedOrderPreserving(t *testing.T) {
	entries := []string{
		"Smith, J. (2019). A Paper.",
		"smith j 2019 a paper",
		"Jones, K. (2020). Another Paper.",
	}
	got := dedupe(entries, 100)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if got[0] != entries[0] || got[1] != entries[2] {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestDedupe_Cap(t *testing.T) {
	var entries []string
	for i := 0; i < 150; i++ {
		entries = append(entries, fmt.Sprintf("Author %d (2019). Distinct entry number %d.", i, i))
	}
	if got := dedupe(entries, MaxEntries); len(got) != MaxEntries {
		t.Errorf("expected cap at %d, got %d", MaxEntries, len(got))
	}
}

func TestAuthorYear(t *testing.T) {
	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{"Smith, J. (2019). Some Title. Journal X.", "Smith, J., 2019", true},
		{"[12] Brown, A., Title of paper, Journal, 2018.", "Brown, 2018", true},
		{"Kumar V, Singh R. Methods overview. Nature. 2021;5(2).", "Kumar V, 2021", true},
		{"Just some text without anything useful here", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := AuthorYear(tt.ref)
		if ok != tt.ok || got != tt.want {
			t.Errorf("AuthorYear(%q) = %q, %v; want %q, %v", tt.ref, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAuthorYear_CollapsesLongAuthorLists(t *testing.T) {
	ref := "Anderson, B., Castillo, C., Davidoff, D., and Edwards, E. (2017). A long author list."
	got, ok := AuthorYear(ref)
	if !ok {
		t.Fatal("expected a parse")
	}
	if got != "Anderson et al., 2017" {
		t.Errorf("got %q", got)
	}
}

func TestAuthorYears_Limit(t *testing.T) {
	refs := []string{
		"Smith, J. (2019). One.",
		"not parseable at all",
		"Jones, K. (2020). Two.",
		"Brown, L. (2021). Three.",
	}
	got := AuthorYears(refs, 2)
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0] != "Smith, J., 2019" || got[1] != "Jones, K., 2020" {
		t.Errorf("got %v", got)
	}
}

func TestExtract_ModelAssistedTailKeepsValidUTF8(t *testing.T) {
	// A three-byte rune straddles the tail cutoff of the model fallback.
	text := strings.Repeat("x", 4000) + "€" + strings.Repeat("x", 11998)

	client := &llm.MockClient{Respond: func(req llm.Request) (string, error) {
		if !utf8.ValidString(req.Prompt) {
			t.Error("prompt contains a split rune")
		}
		return "NONE", nil
	}}
	e := NewExtractor(client, nil)
	e.Extract(context.Background(), text)
	if len(client.Requests()) != 1 {
		t.Fatal("model fallback was not invoked")
	}
}
