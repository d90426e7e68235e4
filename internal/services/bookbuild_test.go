package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bookforge/bookforge-backend/internal/bookgen"
	"github.com/bookforge/bookforge-backend/internal/platform/docrender"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/realtime"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type stubRenderer struct {
	result *docrender.RenderResult
	err    error
}

func (s *stubRenderer) RenderPDF(context.Context, docrender.RenderRequest) (*docrender.RenderResult, error) {
	return s.result, s.err
}

func newBuildService(t *testing.T, renderer docrender.Client, hub *realtime.Hub) BookBuildService {
	t.Helper()
	log := testLogger(t)
	catalog := bookgen.DefaultStyleCatalog()
	return NewBookBuildService(
		bookgen.NewOutlineService(nil, nil, log),
		bookgen.NewContentService(nil, nil, log),
		bookgen.NewCoverService(nil, bookgen.NewLocalCover(catalog, log), nil, log),
		bookgen.NewPDFService(renderer, nil, log),
		hub,
		log,
	)
}

func buildRequest() bookgen.BookRequest {
	return bookgen.BookRequest{
		Title:    "Tides",
		Author:   "M. Shore",
		BookIdea: "How coastlines shape the people who live on them",
		NumPages: 90,
	}
}

func TestBuildEndToEndWithLocalStrategies(t *testing.T) {
	renderer := &stubRenderer{result: &docrender.RenderResult{PDFURL: "https://cdn.example/tides.pdf"}}
	svc := newBuildService(t, renderer, nil)

	res, err := svc.Build(context.Background(), uuid.New(), buildRequest(), bookgen.CoverSpec{}, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.TOC.Sections) != 3 {
		t.Fatalf("expected fallback outline, got %d sections", len(res.TOC.Sections))
	}
	if len(res.Chapters) != 3 {
		t.Fatalf("expected 3 chapter outcomes, got %d", len(res.Chapters))
	}
	for i, o := range res.Chapters {
		if o.Error != "" {
			t.Fatalf("chapter %d failed: %s", i+1, o.Error)
		}
		if o.Chapter.Number != i+1 {
			t.Fatalf("outcome %d has chapter number %d", i, o.Chapter.Number)
		}
	}
	if res.Cover == nil || !strings.HasPrefix(res.Cover.CoverURL, "data:image/png;base64,") {
		t.Fatal("missing local cover")
	}
	if res.PDF == nil || res.PDF.PDFURL != "https://cdn.example/tides.pdf" {
		t.Fatalf("missing pdf result: %+v", res.PDF)
	}
}

func TestBuildSeedValidation(t *testing.T) {
	svc := newBuildService(t, &stubRenderer{}, nil)
	req := buildRequest()
	req.Title = ""
	if _, err := svc.Build(context.Background(), uuid.New(), req, bookgen.CoverSpec{}, ""); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestBuildSurfacesRenderFailure(t *testing.T) {
	svc := newBuildService(t, &stubRenderer{err: fmt.Errorf("render down")}, nil)
	res, err := svc.Build(context.Background(), uuid.New(), buildRequest(), bookgen.CoverSpec{}, "")
	if err == nil {
		t.Fatal("expected error when renderer fails")
	}
	// Partial result still carries the earlier artifacts.
	if res == nil || res.TOC == nil || res.Cover == nil {
		t.Fatal("partial result missing earlier artifacts")
	}
}

func TestBuildPublishesProgress(t *testing.T) {
	hub := realtime.NewHub(testLogger(t))
	client := hub.NewClient()
	defer hub.RemoveClient(client)

	svc := newBuildService(t, &stubRenderer{result: &docrender.RenderResult{PDFURL: "https://cdn.example/t.pdf"}}, hub)

	toc := &bookgen.TableOfContents{Sections: []bookgen.Section{{Name: "One"}, {Name: "Two"}}}
	hub.Subscribe(client, "build.test")

	outcomes := svc.GenerateAllChapters(context.Background(), bookgen.ChapterRequest{
		Title:    "Tides",
		Author:   "M. Shore",
		BookIdea: "idea",
		TOC:      *toc,
	}, "build.test")
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	events := map[realtime.Event]int{}
	for {
		select {
		case msg := <-client.Outbound:
			events[msg.Event]++
			if events[realtime.EventChapterFinished] == 2 {
				if events[realtime.EventChapterStarted] != 2 {
					t.Fatalf("started events = %d, want 2", events[realtime.EventChapterStarted])
				}
				return
			}
		default:
			t.Fatalf("missing progress events, saw %v", events)
		}
	}
}
