package promptstyle

import "strings"

const marker = "BOOKFORGE_PROMPT_STYLE_V1"

// ApplySystem prepends a concise guidance block to system prompts.
// Kept minimal so task semantics do not change across generation steps.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou are a professional book-writing assistant for BookForge.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nUse the provided title, author and idea as grounding; do not invent outside facts.")
	if mode == "json" {
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
	} else {
		b.WriteString("\nWrite flowing prose in Markdown; no meta commentary.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
