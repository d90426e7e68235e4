// Package bookgen generates the artifacts of a book build: table of
// contents, chapter content, cover art and the assembled PDF. Each
// generator pairs an upstream AI strategy with a deterministic local
// fallback.
package bookgen

// BookRequest is the seed for a build: what the book is about and how long
// it should be.
type BookRequest struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	BookIdea     string `json:"book_idea"`
	NumPages     int    `json:"num_pages"`
	Style        string `json:"style,omitempty"`
	ChapterCount int    `json:"chapter_count,omitempty"`
	TargetLength string `json:"target_length,omitempty"`
}

// Section is one outline entry.
type Section struct {
	Name           string   `json:"name"`
	Ideas          []string `json:"ideas"`
	PageRange      string   `json:"page_range"`
	EstimatedPages int      `json:"estimated_pages"`
}

// TableOfContents is the generated outline plus a book summary.
type TableOfContents struct {
	Sections            []Section `json:"toc"`
	Summary             string    `json:"book_summary"`
	TotalEstimatedPages string    `json:"total_estimated_pages"`
}

// ContentDepth selects how finished a generated chapter should read.
type ContentDepth string

const (
	DepthOutline  ContentDepth = "outline"
	DepthDraft    ContentDepth = "draft"
	DepthPolished ContentDepth = "polished"
)

func (d ContentDepth) Valid() bool {
	switch d {
	case DepthOutline, DepthDraft, DepthPolished:
		return true
	default:
		return false
	}
}

// GenerationMode selects the strategy for a chapter: the upstream AI (the
// default) or the deterministic local templates.
type GenerationMode string

const (
	ModeAI    GenerationMode = "ai"
	ModeLocal GenerationMode = "local"
)

func (m GenerationMode) Valid() bool {
	switch m {
	case ModeAI, ModeLocal:
		return true
	default:
		return false
	}
}

// ChapterRequest asks for exactly one chapter of an outlined book.
type ChapterRequest struct {
	Title          string          `json:"title"`
	Author         string          `json:"author"`
	BookIdea       string          `json:"book_idea"`
	TOC            TableOfContents `json:"outline"`
	ChapterNumber  int             `json:"chapter_number"`
	ContentDepth   ContentDepth    `json:"content_depth,omitempty"`
	GenerationMode GenerationMode  `json:"generation_mode,omitempty"`
}

// Chapter is one generated chapter. Chapters carry no dependency on each
// other beyond their number.
type Chapter struct {
	Number         int    `json:"chapter_number"`
	Title          string `json:"chapter_title"`
	Content        string `json:"content"`
	WordCount      int    `json:"word_count"`
	EstimatedPages int    `json:"estimated_pages"`
}

// CoverSpec describes the requested cover art.
type CoverSpec struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	BookDescription string `json:"book_description"`
	StylePrompt     string `json:"style_prompt,omitempty"`
	ColorScheme     string `json:"color_scheme,omitempty"`
	DesignStyle     string `json:"design_style,omitempty"`
}

// CoverResult is the generated cover: either an upstream image URL or a
// locally drawn placeholder encoded as a data URL.
type CoverResult struct {
	CoverURL          string   `json:"cover_url"`
	DesignDescription string   `json:"design_description"`
	ColorPalette      []string `json:"color_palette"`
}

// PageFormat is the physical page size for PDF rendering.
type PageFormat string

const (
	FormatA4       PageFormat = "a4"
	FormatUSLetter PageFormat = "letter"
	Format6x9      PageFormat = "6x9"
	Format5x8      PageFormat = "5x8"
)

func (f PageFormat) Valid() bool {
	switch f {
	case FormatA4, FormatUSLetter, Format6x9, Format5x8:
		return true
	default:
		return false
	}
}

// PDFRequest assembles finished chapters into a rendered document.
type PDFRequest struct {
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Chapters   []Chapter  `json:"chapters"`
	CoverURL   string     `json:"cover_url,omitempty"`
	IncludeTOC bool       `json:"include_toc,omitempty"`
	PageFormat PageFormat `json:"page_format,omitempty"`
}

// PDFResult is the rendered document plus its measured size.
type PDFResult struct {
	PDFURL     string  `json:"pdf_url"`
	TotalPages int     `json:"total_pages"`
	WordCount  int     `json:"word_count"`
	FileSizeMB float64 `json:"file_size_mb"`
}
