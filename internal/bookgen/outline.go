package bookgen

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bookforge/bookforge-backend/internal/bookgen/pagemath"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/platform/openai"
)

// OutlineStrategy produces chapter sections and a book summary for a
// request. Page estimates are left to the service.
type OutlineStrategy interface {
	GenerateOutline(ctx context.Context, req BookRequest) ([]Section, string, error)
}

// ProxyOutline asks the upstream AI for a schema-constrained outline.
type ProxyOutline struct {
	AI openai.Client
}

func (p *ProxyOutline) GenerateOutline(ctx context.Context, req BookRequest) ([]Section, string, error) {
	out, err := p.AI.GenerateJSON(ctx, outlineSystemPrompt, buildOutlinePrompt(req), "book_outline", outlineSchema())
	if err != nil {
		return nil, "", err
	}

	rawSections, ok := out["sections"].([]any)
	if !ok || len(rawSections) == 0 {
		return nil, "", fmt.Errorf("outline response: missing or empty sections array")
	}
	summary, _ := out["book_summary"].(string)

	sections := make([]Section, 0, len(rawSections))
	for i, raw := range rawSections {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, "", fmt.Errorf("outline response: section %d is not an object", i)
		}
		name, _ := obj["name"].(string)
		if name == "" {
			return nil, "", fmt.Errorf("outline response: section %d has no name", i)
		}
		var ideas []string
		if rawIdeas, ok := obj["ideas"].([]any); ok {
			for _, ri := range rawIdeas {
				if s, ok := ri.(string); ok && s != "" {
					ideas = append(ideas, s)
				}
			}
		}
		sections = append(sections, Section{Name: name, Ideas: ideas})
	}
	return sections, summary, nil
}

// LocalOutline is the deterministic fallback: a fixed 3-section skeleton.
type LocalOutline struct{}

func (LocalOutline) GenerateOutline(_ context.Context, req BookRequest) ([]Section, string, error) {
	sections := []Section{
		{
			Name: "Introduction",
			Ideas: []string{
				"Why this book exists and who it is for",
				fmt.Sprintf("The core idea: %s", req.BookIdea),
				"How the book is organized",
			},
		},
		{
			Name: "Main Content",
			Ideas: []string{
				"The central argument developed in depth",
				"Key examples and supporting evidence",
				"Practical applications of the idea",
			},
		},
		{
			Name: "Conclusion",
			Ideas: []string{
				"Summary of the main points",
				"Implications and next steps for the reader",
			},
		},
	}
	summary := fmt.Sprintf("%q by %s explores %s across an introduction, a main body and a conclusion.", req.Title, req.Author, req.BookIdea)
	return sections, summary, nil
}

// OutlineService tries the upstream strategy once and collapses any failure
// into the local fallback, then computes page estimates for whichever
// sections it ended up with.
type OutlineService struct {
	primary  OutlineStrategy
	fallback OutlineStrategy
	recorder CallRecorder
	log      *logger.Logger
}

func NewOutlineService(primary OutlineStrategy, recorder CallRecorder, log *logger.Logger) *OutlineService {
	return &OutlineService{
		primary:  primary,
		fallback: LocalOutline{},
		recorder: recorder,
		log:      log.With("service", "Outline"),
	}
}

func (s *OutlineService) Generate(ctx context.Context, req BookRequest) (*TableOfContents, error) {
	var (
		sections []Section
		summary  string
		err      error
	)

	if s.primary != nil {
		start := time.Now()
		sections, summary, err = s.primary.GenerateOutline(ctx, req)
		if err == nil {
			record(ctx, s.recorder, "openai", "outline", CallOK, time.Since(start), nil)
		} else {
			record(ctx, s.recorder, "openai", "outline", CallFallback, time.Since(start), err)
			s.log.Warn("Outline upstream failed, using local fallback", "error", err)
		}
	}
	if s.primary == nil || err != nil {
		sections, summary, err = s.fallback.GenerateOutline(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("fallback outline: %w", err)
		}
	}

	return assembleTOC(req, sections, summary), nil
}

// assembleTOC distributes the requested page count across sections and
// renders the range strings.
func assembleTOC(req BookRequest, sections []Section, summary string) *TableOfContents {
	shares := pagemath.DistributePages(req.NumPages, len(sections))
	for i := range sections {
		sections[i].EstimatedPages = shares[i]
		sections[i].PageRange = pagemath.PageRange(shares[i])
	}
	if summary == "" {
		summary = fmt.Sprintf("%q by %s: %s", req.Title, req.Author, req.BookIdea)
	}
	return &TableOfContents{
		Sections:            sections,
		Summary:             summary,
		TotalEstimatedPages: strconv.Itoa(req.NumPages),
	}
}
