package bookgen

import (
	"fmt"
	"strings"
)

// Prompt builders for the upstream strategies. Kept together so the voice
// of the generated book stays consistent across outline, chapter and cover.

const outlineSystemPrompt = "You are an expert book editor. You design chapter outlines that are specific, well paced and faithful to the author's idea."

const chapterSystemPrompt = "You are an expert ghostwriter. You write complete book chapters in the author's voice, grounded in the outline you are given."

func buildOutlinePrompt(req BookRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a chapter outline for a book.\n\nTitle: %s\nAuthor: %s\nIdea: %s\nTarget length: %d pages\n", req.Title, req.Author, req.BookIdea, req.NumPages)
	if req.Style != "" {
		fmt.Fprintf(&b, "Writing style: %s\n", req.Style)
	}
	if req.ChapterCount > 0 {
		fmt.Fprintf(&b, "Number of chapters: exactly %d\n", req.ChapterCount)
	} else {
		b.WriteString("Choose a sensible number of chapters for the target length.\n")
	}
	if req.TargetLength != "" {
		fmt.Fprintf(&b, "Length guidance: %s\n", req.TargetLength)
	}
	b.WriteString("\nFor each chapter give a title and 3-5 bullet ideas covering what it discusses. Also write a one-paragraph summary of the whole book.")
	return b.String()
}

func buildChapterPrompt(req ChapterRequest) string {
	section := req.TOC.Sections[req.ChapterNumber-1]

	var b strings.Builder
	fmt.Fprintf(&b, "Write chapter %d of the book %q by %s.\n\nBook idea: %s\nChapter title: %s\n", req.ChapterNumber, req.Title, req.Author, req.BookIdea, section.Name)
	if len(section.Ideas) > 0 {
		b.WriteString("Cover these points:\n")
		for _, idea := range section.Ideas {
			fmt.Fprintf(&b, "- %s\n", idea)
		}
	}
	if len(req.TOC.Sections) > 1 {
		b.WriteString("\nFull outline for context:\n")
		for i, s := range req.TOC.Sections {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s.Name)
		}
	}

	switch req.ContentDepth {
	case DepthOutline:
		b.WriteString("\nProduce an expanded outline of the chapter: section headings with 2-3 sentences under each.")
	case DepthPolished:
		b.WriteString("\nWrite the full chapter in polished, publication-ready prose with markdown headings.")
	default:
		b.WriteString("\nWrite a complete draft of the chapter in markdown, prioritizing coverage over polish.")
	}
	return b.String()
}

// outlineSchema is the JSON schema the upstream call must satisfy.
func outlineSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"sections", "book_summary"},
		"properties": map[string]any{
			"book_summary": map[string]any{"type": "string"},
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"name", "ideas"},
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"ideas": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	}
}

func buildCoverPrompt(spec CoverSpec, style StyleFragment, scheme ColorFragment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Book cover for %q by %s. %s", spec.Title, spec.Author, spec.BookDescription)
	if style.Fragment != "" {
		b.WriteString(" " + style.Fragment)
	}
	if scheme.Fragment != "" {
		b.WriteString(" " + scheme.Fragment)
	}
	if spec.StylePrompt != "" {
		b.WriteString(" " + spec.StylePrompt)
	}
	b.WriteString(" No text or lettering in the image.")
	return b.String()
}
