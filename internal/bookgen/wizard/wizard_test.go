package wizard

import (
	"testing"

	"github.com/bookforge/bookforge-backend/internal/bookgen"
)

func seedRequest() bookgen.BookRequest {
	return bookgen.BookRequest{
		Title:    "The Long Road",
		Author:   "A. Writer",
		BookIdea: "A walking tour of forgotten highways",
		NumPages: 120,
	}
}

func seedTOC() *bookgen.TableOfContents {
	return &bookgen.TableOfContents{
		Sections: []bookgen.Section{
			{Name: "Introduction"},
			{Name: "Main Content"},
			{Name: "Conclusion"},
		},
		Summary:             "a summary",
		TotalEstimatedPages: "120",
	}
}

func TestNewValidatesSeed(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*bookgen.BookRequest)
	}{
		{"missing title", func(r *bookgen.BookRequest) { r.Title = "" }},
		{"missing author", func(r *bookgen.BookRequest) { r.Author = "" }},
		{"missing idea", func(r *bookgen.BookRequest) { r.BookIdea = "" }},
		{"zero pages", func(r *bookgen.BookRequest) { r.NumPages = 0 }},
	}
	for _, c := range cases {
		req := seedRequest()
		c.mut(&req)
		if _, err := New(req); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}

	ctx, err := New(seedRequest())
	if err != nil {
		t.Fatalf("valid seed rejected: %v", err)
	}
	if ctx.Step != StepIdea {
		t.Fatalf("expected step %s, got %s", StepIdea, ctx.Step)
	}
}

func TestTransitionOrderEnforced(t *testing.T) {
	ctx, err := New(seedRequest())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := ctx.AdvanceToContent(nil); err == nil {
		t.Fatal("content transition allowed from idea step")
	}
	if err := ctx.AdvanceToCover(&bookgen.CoverResult{CoverURL: "data:x"}); err == nil {
		t.Fatal("cover transition allowed from idea step")
	}

	if err := ctx.AdvanceToOutline(seedTOC()); err != nil {
		t.Fatalf("AdvanceToOutline: %v", err)
	}
	if err := ctx.AdvanceToOutline(seedTOC()); err == nil {
		t.Fatal("outline transition allowed twice")
	}
}

func TestOutlineRequiresSections(t *testing.T) {
	ctx, _ := New(seedRequest())
	if err := ctx.AdvanceToOutline(&bookgen.TableOfContents{}); err == nil {
		t.Fatal("empty outline accepted")
	}
	if err := ctx.AdvanceToOutline(nil); err == nil {
		t.Fatal("nil outline accepted")
	}
}

func TestContentRequiresCompleteChapters(t *testing.T) {
	ctx, _ := New(seedRequest())
	if err := ctx.AdvanceToOutline(seedTOC()); err != nil {
		t.Fatalf("AdvanceToOutline: %v", err)
	}

	short := []bookgen.Chapter{{Number: 1, Content: "x"}}
	if err := ctx.AdvanceToContent(short); err == nil {
		t.Fatal("chapter count mismatch accepted")
	}

	empty := []bookgen.Chapter{
		{Number: 1, Content: "x"},
		{Number: 2, Content: ""},
		{Number: 3, Content: "z"},
	}
	if err := ctx.AdvanceToContent(empty); err == nil {
		t.Fatal("empty chapter content accepted")
	}

	misnumbered := []bookgen.Chapter{
		{Number: 1, Content: "x"},
		{Number: 3, Content: "y"},
		{Number: 2, Content: "z"},
	}
	if err := ctx.AdvanceToContent(misnumbered); err == nil {
		t.Fatal("misnumbered chapters accepted")
	}
}

func TestFullFlow(t *testing.T) {
	ctx, err := New(seedRequest())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ctx.AdvanceToOutline(seedTOC()); err != nil {
		t.Fatalf("AdvanceToOutline: %v", err)
	}
	chapters := []bookgen.Chapter{
		{Number: 1, Content: "intro text"},
		{Number: 2, Content: "body text"},
		{Number: 3, Content: "closing text"},
	}
	if err := ctx.AdvanceToContent(chapters); err != nil {
		t.Fatalf("AdvanceToContent: %v", err)
	}
	if err := ctx.AdvanceToCover(&bookgen.CoverResult{CoverURL: "data:image/png;base64,xx"}); err != nil {
		t.Fatalf("AdvanceToCover: %v", err)
	}
	if ctx.Complete() {
		t.Fatal("complete before export")
	}
	if err := ctx.AdvanceToExport(&bookgen.PDFResult{PDFURL: "https://cdn.example/book.pdf"}); err != nil {
		t.Fatalf("AdvanceToExport: %v", err)
	}
	if !ctx.Complete() {
		t.Fatal("expected complete after export")
	}
}
