package bookgen

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Markdown-to-HTML conversion for the PDF body. Regex substitution over a
// deliberately small dialect: ATX headers, bold, italic, unordered lists
// and paragraphs.

var (
	reH3     = regexp.MustCompile(`(?m)^### (.+)$`)
	reH2     = regexp.MustCompile(`(?m)^## (.+)$`)
	reH1     = regexp.MustCompile(`(?m)^# (.+)$`)
	reBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*]+)\*`)
	reListLn = regexp.MustCompile(`(?m)^[-*] (.+)$`)
)

// MarkdownToHTML converts chapter markdown into the HTML body handed to the
// render service.
func MarkdownToHTML(md string) string {
	s := html.EscapeString(md)

	s = reH3.ReplaceAllString(s, "<h3>$1</h3>")
	s = reH2.ReplaceAllString(s, "<h2>$1</h2>")
	s = reH1.ReplaceAllString(s, "<h1>$1</h1>")
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	s = reListLn.ReplaceAllString(s, "<li>$1</li>")
	s = wrapListItems(s)

	var out strings.Builder
	for _, block := range strings.Split(s, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if strings.HasPrefix(block, "<h") || strings.HasPrefix(block, "<ul>") {
			out.WriteString(block)
		} else {
			out.WriteString("<p>")
			out.WriteString(strings.ReplaceAll(block, "\n", " "))
			out.WriteString("</p>")
		}
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

// wrapListItems groups runs of consecutive <li> lines into one <ul>.
func wrapListItems(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	inList := false
	for _, line := range lines {
		isItem := strings.HasPrefix(strings.TrimSpace(line), "<li>")
		if isItem && !inList {
			out = append(out, "<ul>")
			inList = true
		}
		if !isItem && inList {
			out = append(out, "</ul>")
			inList = false
		}
		out = append(out, line)
	}
	if inList {
		out = append(out, "</ul>")
	}
	return strings.Join(out, "\n")
}

// AssembleBookHTML builds the full document body: title page, optional
// table of contents, then each chapter converted from markdown.
func AssembleBookHTML(req PDFRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<div class=\"title-page\"><h1>%s</h1><p class=\"author\">%s</p></div>\n", html.EscapeString(req.Title), html.EscapeString(req.Author))

	if req.IncludeTOC {
		b.WriteString("<div class=\"toc\"><h2>Table of Contents</h2><ol>\n")
		for _, ch := range req.Chapters {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(ch.Title))
		}
		b.WriteString("</ol></div>\n")
	}

	for _, ch := range req.Chapters {
		fmt.Fprintf(&b, "<div class=\"chapter\" id=\"chapter-%d\">\n%s\n</div>\n", ch.Number, MarkdownToHTML(ch.Content))
	}
	return b.String()
}
