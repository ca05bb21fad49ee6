package page

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCleanParagraphs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single line", "Patient denies rash.", "Patient denies rash."},
		{"folded lines", "Admitted for\nhyponatremia,\nsodium 118.", "Admitted for hyponatremia, sodium 118."},
		{"two paragraphs", "first\nline\n\nsecond", "first line\n\nsecond"},
		{"whitespace-only separator", "a\n  \t\nb", "a\n\nb"},
		{"trims each paragraph", "  a  \n\n  b  ", "a\n\nb"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanParagraphs(tc.raw); got != tc.want {
				t.Errorf("CleanParagraphs(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	doc := Format([]Page{
		{Number: 1, Text: "one"},
		{Number: 2, Text: "two"},
	})
	want := "[PAGE 1 START]\none\n[PAGE 1 END]\n\n\n[PAGE 2 START]\ntwo\n[PAGE 2 END]\n"
	if doc != want {
		t.Errorf("Format() =\n%q\nwant\n%q", doc, want)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "Patient denies rash."},
		{Number: 2, Text: "Admitted for hyponatremia, sodium 118."},
		{Number: 3, Text: "Plan:\n\nfluid restriction"},
	}

	got := Parse(Format(pages))
	if !reflect.DeepEqual(got, pages) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, pages)
	}
}

func TestParse_EmptyPage(t *testing.T) {
	got := Parse(Format([]Page{{Number: 1, Text: ""}, {Number: 2, Text: "x"}}))
	if len(got) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(got))
	}
	if got[0].Text != "" {
		t.Errorf("expected empty page 1, got %q", got[0].Text)
	}
}

func TestParse_NoMarkers(t *testing.T) {
	got := Parse("just some text without delimiters")
	if got == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("expected 0 pages, got %d", len(got))
	}
}

func TestParse_DoesNotSwallowNextPage(t *testing.T) {
	doc := "[PAGE 1 START]\na\n[PAGE 1 END]\n\n[PAGE 2 START]\nb\n[PAGE 2 END]\n"
	got := Parse(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(got))
	}
	for _, p := range got {
		if strings.Contains(p.Text, "[PAGE") {
			t.Errorf("page %d content contains a marker: %q", p.Number, p.Text)
		}
	}
}

func TestParse_EndMustMatchNumber(t *testing.T) {
	// page 1 closes with page 2's END marker: no match for 1, page 2 is never opened.
	doc := "[PAGE 1 START]\na\n[PAGE 2 END]\n[PAGE 3 START]\nc\n[PAGE 3 END]"
	got := Parse(doc)
	want := []Page{{Number: 3, Text: "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParse_NearestEnd(t *testing.T) {
	doc := "[PAGE 1 START]a[PAGE 1 END]b[PAGE 1 END]"
	got := Parse(doc)
	if len(got) != 1 || got[0].Text != "a" {
		t.Errorf("expected non-greedy match 'a', got %+v", got)
	}
}

func TestParse_UnclosedStartResumes(t *testing.T) {
	doc := "[PAGE 1 START] dangling\n[PAGE 2 START]\nb\n[PAGE 2 END]"
	got := Parse(doc)
	want := []Page{{Number: 2, Text: "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParse_MultiDigit(t *testing.T) {
	doc := "[PAGE 12 START]\ntwelve\n[PAGE 12 END]\n[PAGE 1 END]"
	got := Parse(doc)
	if len(got) != 1 || got[0].Number != 12 || got[0].Text != "twelve" {
		t.Errorf("unexpected pages: %+v", got)
	}
}

func TestWriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	pages := []Page{{Number: 1, Text: "alpha"}, {Number: 2, Text: "beta"}}

	if err := Write(path, pages); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, pages) {
		t.Errorf("got %+v, want %+v", got, pages)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
