package bookgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bookforge/bookforge-backend/internal/bookgen/pagemath"
	"github.com/bookforge/bookforge-backend/internal/platform/apierr"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/platform/openai"
)

// ContentStrategy produces the raw markdown body of one chapter.
type ContentStrategy interface {
	GenerateContent(ctx context.Context, req ChapterRequest) (string, error)
}

// ProxyContent delegates chapter writing to the upstream AI.
type ProxyContent struct {
	AI openai.Client
}

func (p *ProxyContent) GenerateContent(ctx context.Context, req ChapterRequest) (string, error) {
	content, err := p.AI.GenerateText(ctx, chapterSystemPrompt, buildChapterPrompt(req))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("chapter response: empty content")
	}
	return content, nil
}

// LocalContent synthesizes a chapter from the section's bullet ideas,
// scaled by the requested depth.
type LocalContent struct{}

func (LocalContent) GenerateContent(_ context.Context, req ChapterRequest) (string, error) {
	section := req.TOC.Sections[req.ChapterNumber-1]
	ideas := section.Ideas
	if len(ideas) == 0 {
		ideas = []string{section.Name}
	}

	paragraphsPerIdea := 2
	switch req.ContentDepth {
	case DepthOutline:
		paragraphsPerIdea = 1
	case DepthPolished:
		paragraphsPerIdea = 3
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Chapter %d: %s\n\n", req.ChapterNumber, section.Name)
	fmt.Fprintf(&b, "This chapter of %q examines %s, building on the book's central idea: %s.\n\n", req.Title, strings.ToLower(section.Name), req.BookIdea)

	for _, idea := range ideas {
		fmt.Fprintf(&b, "## %s\n\n", idea)
		for p := 0; p < paragraphsPerIdea; p++ {
			switch p {
			case 0:
				fmt.Fprintf(&b, "%s sits at the heart of this part of the book. In the pages that follow, the discussion grounds it in concrete terms, connecting it back to the themes %s set out at the start.\n\n", idea, req.Author)
			case 1:
				fmt.Fprintf(&b, "Seen in practice, the point becomes clearer. Examples drawn from the subject matter of %q show how %s plays out, where it succeeds, and where its limits begin.\n\n", req.Title, strings.ToLower(idea))
			default:
				fmt.Fprintf(&b, "The section closes by weighing what this means for the reader: how %s changes the way the broader argument should be read, and what to carry into the next chapter.\n\n", strings.ToLower(idea))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// ContentService validates the chapter number, tries the upstream strategy
// once, falls back locally on failure, and derives the word/page counts.
type ContentService struct {
	primary  ContentStrategy
	fallback ContentStrategy
	recorder CallRecorder
	log      *logger.Logger
}

func NewContentService(primary ContentStrategy, recorder CallRecorder, log *logger.Logger) *ContentService {
	return &ContentService{
		primary:  primary,
		fallback: LocalContent{},
		recorder: recorder,
		log:      log.With("service", "Content"),
	}
}

func (s *ContentService) Generate(ctx context.Context, req ChapterRequest) (*Chapter, error) {
	n := len(req.TOC.Sections)
	if n == 0 {
		return nil, apierr.BadRequest("invalid_outline", fmt.Errorf("outline has no sections"))
	}
	if req.ChapterNumber < 1 || req.ChapterNumber > n {
		return nil, apierr.BadRequest("invalid_chapter_number",
			fmt.Errorf("chapter_number must be between 1 and %d", n))
	}
	if req.ContentDepth != "" && !req.ContentDepth.Valid() {
		return nil, apierr.BadRequest("invalid_content_depth",
			fmt.Errorf("content_depth must be one of outline, draft, polished"))
	}
	if req.GenerationMode != "" && !req.GenerationMode.Valid() {
		return nil, apierr.BadRequest("invalid_generation_mode",
			fmt.Errorf("generation_mode must be one of ai, local"))
	}

	var (
		content string
		err     error
	)
	usePrimary := s.primary != nil && req.GenerationMode != ModeLocal
	if usePrimary {
		start := time.Now()
		content, err = s.primary.GenerateContent(ctx, req)
		if err == nil {
			record(ctx, s.recorder, "openai", "chapter", CallOK, time.Since(start), nil)
		} else {
			record(ctx, s.recorder, "openai", "chapter", CallFallback, time.Since(start), err)
			s.log.Warn("Chapter upstream failed, using local fallback",
				"chapter", req.ChapterNumber, "error", err)
		}
	}
	if !usePrimary || err != nil {
		content, err = s.fallback.GenerateContent(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("fallback content: %w", err)
		}
	}

	words := pagemath.CountWords(content)
	return &Chapter{
		Number:         req.ChapterNumber,
		Title:          req.TOC.Sections[req.ChapterNumber-1].Name,
		Content:        content,
		WordCount:      words,
		EstimatedPages: pagemath.EstimatePages(words),
	}, nil
}
