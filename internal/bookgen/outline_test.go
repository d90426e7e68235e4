package bookgen

import (
	"context"
	"fmt"
	"testing"

	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/platform/openai"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// stubAI implements openai.Client with canned responses.
type stubAI struct {
	jsonOut  map[string]any
	jsonErr  error
	textOut  string
	textErr  error
	imageOut openai.ImageGeneration
	imageErr error
	calls    int
}

func (s *stubAI) GenerateJSON(context.Context, string, string, string, map[string]any) (map[string]any, error) {
	s.calls++
	return s.jsonOut, s.jsonErr
}

func (s *stubAI) GenerateText(context.Context, string, string) (string, error) {
	s.calls++
	return s.textOut, s.textErr
}

func (s *stubAI) GenerateImage(context.Context, string) (openai.ImageGeneration, error) {
	s.calls++
	return s.imageOut, s.imageErr
}

func outlineRequest() BookRequest {
	return BookRequest{
		Title:    "Tides",
		Author:   "M. Shore",
		BookIdea: "How coastlines shape the people who live on them",
		NumPages: 100,
	}
}

func TestOutlineUpstreamSuccess(t *testing.T) {
	ai := &stubAI{jsonOut: map[string]any{
		"book_summary": "a book about coastlines",
		"sections": []any{
			map[string]any{"name": "The Edge of Land", "ideas": []any{"tidal zones", "erosion"}},
			map[string]any{"name": "Harbor Towns", "ideas": []any{"fishing economies"}},
		},
	}}
	svc := NewOutlineService(&ProxyOutline{AI: ai}, nil, testLogger(t))

	toc, err := svc.Generate(context.Background(), outlineRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(toc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(toc.Sections))
	}
	if toc.Sections[0].Name != "The Edge of Land" {
		t.Fatalf("unexpected first section %q", toc.Sections[0].Name)
	}
	if toc.Summary != "a book about coastlines" {
		t.Fatalf("unexpected summary %q", toc.Summary)
	}
	if toc.TotalEstimatedPages != "100" {
		t.Fatalf("total_estimated_pages = %q, want %q", toc.TotalEstimatedPages, "100")
	}
	// 100 pages over 2 sections: 50 each, high estimate padded.
	if toc.Sections[0].EstimatedPages != 50 || toc.Sections[0].PageRange != "50-52" {
		t.Fatalf("unexpected estimate %d / range %q", toc.Sections[0].EstimatedPages, toc.Sections[0].PageRange)
	}
}

func TestOutlineFallbackOnUpstreamError(t *testing.T) {
	ai := &stubAI{jsonErr: fmt.Errorf("connection refused")}
	svc := NewOutlineService(&ProxyOutline{AI: ai}, nil, testLogger(t))

	toc, err := svc.Generate(context.Background(), outlineRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ai.calls != 1 {
		t.Fatalf("expected exactly one upstream attempt, got %d", ai.calls)
	}
	if len(toc.Sections) != 3 {
		t.Fatalf("expected the 3-section fallback, got %d sections", len(toc.Sections))
	}
	want := []string{"Introduction", "Main Content", "Conclusion"}
	for i, name := range want {
		if toc.Sections[i].Name != name {
			t.Fatalf("section %d = %q, want %q", i, toc.Sections[i].Name, name)
		}
	}
	if toc.TotalEstimatedPages != "100" {
		t.Fatalf("total_estimated_pages = %q, want %q", toc.TotalEstimatedPages, "100")
	}
}

func TestOutlineFallbackOnMalformedResponse(t *testing.T) {
	cases := []map[string]any{
		{"book_summary": "s"},                                          // missing sections
		{"book_summary": "s", "sections": []any{}},                     // empty sections
		{"book_summary": "s", "sections": []any{"not an object"}},      // wrong element type
		{"book_summary": "s", "sections": []any{map[string]any{}}},     // section without name
	}
	for i, out := range cases {
		svc := NewOutlineService(&ProxyOutline{AI: &stubAI{jsonOut: out}}, nil, testLogger(t))
		toc, err := svc.Generate(context.Background(), outlineRequest())
		if err != nil {
			t.Fatalf("case %d: Generate: %v", i, err)
		}
		if len(toc.Sections) != 3 {
			t.Fatalf("case %d: expected fallback outline, got %d sections", i, len(toc.Sections))
		}
	}
}

func TestOutlineNoPrimaryUsesFallback(t *testing.T) {
	svc := NewOutlineService(nil, nil, testLogger(t))
	toc, err := svc.Generate(context.Background(), outlineRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(toc.Sections) != 3 {
		t.Fatalf("expected fallback outline, got %d sections", len(toc.Sections))
	}
	sum := 0
	for _, s := range toc.Sections {
		sum += s.EstimatedPages
	}
	if sum != 100 {
		t.Fatalf("section estimates sum to %d, want 100", sum)
	}
}
