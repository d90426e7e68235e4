// Package wizard models the book-build flow as an explicit state machine:
// idea -> outline -> content -> cover -> export. Each transition validates
// the inputs the next step needs before it is allowed.
package wizard

import (
	"fmt"

	"github.com/bookforge/bookforge-backend/internal/bookgen"
)

type Step string

const (
	StepIdea    Step = "idea"
	StepOutline Step = "outline"
	StepContent Step = "content"
	StepCover   Step = "cover"
	StepExport  Step = "export"
)

// Context carries a build's accumulated state between steps.
type Context struct {
	Step     Step
	Request  bookgen.BookRequest
	TOC      *bookgen.TableOfContents
	Chapters []bookgen.Chapter
	Cover    *bookgen.CoverResult
	PDF      *bookgen.PDFResult
}

// New starts a build at the idea step. The seed request must carry a
// title, author, idea and a positive page count.
func New(req bookgen.BookRequest) (*Context, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("wizard: title is required")
	}
	if req.Author == "" {
		return nil, fmt.Errorf("wizard: author is required")
	}
	if req.BookIdea == "" {
		return nil, fmt.Errorf("wizard: book_idea is required")
	}
	if req.NumPages <= 0 {
		return nil, fmt.Errorf("wizard: num_pages must be positive")
	}
	return &Context{Step: StepIdea, Request: req}, nil
}

func (c *Context) requireStep(want Step) error {
	if c.Step != want {
		return fmt.Errorf("wizard: expected step %s, at %s", want, c.Step)
	}
	return nil
}

// AdvanceToOutline records the generated outline and moves past the idea
// step.
func (c *Context) AdvanceToOutline(toc *bookgen.TableOfContents) error {
	if err := c.requireStep(StepIdea); err != nil {
		return err
	}
	if toc == nil || len(toc.Sections) == 0 {
		return fmt.Errorf("wizard: outline must have at least one section")
	}
	c.TOC = toc
	c.Step = StepOutline
	return nil
}

// AdvanceToContent records the generated chapters. Every outline section
// must have a matching non-empty chapter.
func (c *Context) AdvanceToContent(chapters []bookgen.Chapter) error {
	if err := c.requireStep(StepOutline); err != nil {
		return err
	}
	if len(chapters) != len(c.TOC.Sections) {
		return fmt.Errorf("wizard: got %d chapters for %d sections", len(chapters), len(c.TOC.Sections))
	}
	for i, ch := range chapters {
		if ch.Number != i+1 {
			return fmt.Errorf("wizard: chapter at position %d has number %d", i, ch.Number)
		}
		if ch.Content == "" {
			return fmt.Errorf("wizard: chapter %d has no content", ch.Number)
		}
	}
	c.Chapters = chapters
	c.Step = StepContent
	return nil
}

// AdvanceToCover records the generated cover.
func (c *Context) AdvanceToCover(cover *bookgen.CoverResult) error {
	if err := c.requireStep(StepContent); err != nil {
		return err
	}
	if cover == nil || cover.CoverURL == "" {
		return fmt.Errorf("wizard: cover must have a URL")
	}
	c.Cover = cover
	c.Step = StepCover
	return nil
}

// AdvanceToExport records the rendered PDF and completes the build.
func (c *Context) AdvanceToExport(pdf *bookgen.PDFResult) error {
	if err := c.requireStep(StepCover); err != nil {
		return err
	}
	if pdf == nil || pdf.PDFURL == "" {
		return fmt.Errorf("wizard: export must produce a pdf URL")
	}
	c.PDF = pdf
	c.Step = StepExport
	return nil
}

// Complete reports whether the build reached the export step.
func (c *Context) Complete() bool {
	return c.Step == StepExport
}
