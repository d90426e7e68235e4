package bookgen

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StyleFragment is one design-style entry in the cover catalog: a prompt
// fragment for the upstream path and a shape key for the local renderer.
type StyleFragment struct {
	Fragment    string `yaml:"fragment"`
	Shapes      string `yaml:"shapes"`
	Description string `yaml:"description"`
}

// ColorFragment is one color-scheme entry: a prompt fragment plus the hex
// palette the local renderer draws with.
type ColorFragment struct {
	Fragment string   `yaml:"fragment"`
	Palette  []string `yaml:"palette"`
}

// StyleCatalog maps the design-style and color-scheme enums to their
// template fragments. Loaded from YAML at startup.
type StyleCatalog struct {
	DefaultStyle  string                   `yaml:"default_style"`
	DefaultScheme string                   `yaml:"default_scheme"`
	Styles        map[string]StyleFragment `yaml:"styles"`
	Schemes       map[string]ColorFragment `yaml:"schemes"`
}

// LoadStyleCatalog reads and validates the YAML cover-style catalog.
func LoadStyleCatalog(path string) (*StyleCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style catalog %q: %w", path, err)
	}
	var cat StyleCatalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("parse style catalog %q: %w", path, err)
	}
	if len(cat.Styles) == 0 || len(cat.Schemes) == 0 {
		return nil, fmt.Errorf("style catalog %q: empty styles or schemes", path)
	}
	if _, ok := cat.Styles[cat.DefaultStyle]; !ok {
		return nil, fmt.Errorf("style catalog %q: default_style %q not in styles", path, cat.DefaultStyle)
	}
	if _, ok := cat.Schemes[cat.DefaultScheme]; !ok {
		return nil, fmt.Errorf("style catalog %q: default_scheme %q not in schemes", path, cat.DefaultScheme)
	}
	for name, scheme := range cat.Schemes {
		if len(scheme.Palette) == 0 {
			return nil, fmt.Errorf("style catalog %q: scheme %q has an empty palette", path, name)
		}
	}
	return &cat, nil
}

// Style resolves a design-style name, falling back to the catalog default
// for unknown or empty names.
func (c *StyleCatalog) Style(name string) (string, StyleFragment) {
	key := strings.ToLower(strings.TrimSpace(name))
	if frag, ok := c.Styles[key]; ok {
		return key, frag
	}
	return c.DefaultStyle, c.Styles[c.DefaultStyle]
}

// Scheme resolves a color-scheme name with the same fallback rule.
func (c *StyleCatalog) Scheme(name string) (string, ColorFragment) {
	key := strings.ToLower(strings.TrimSpace(name))
	if frag, ok := c.Schemes[key]; ok {
		return key, frag
	}
	return c.DefaultScheme, c.Schemes[c.DefaultScheme]
}

// DefaultStyleCatalog is the built-in catalog used when no YAML file is
// configured. Matches configs/cover_styles.yaml.
func DefaultStyleCatalog() *StyleCatalog {
	return &StyleCatalog{
		DefaultStyle:  "minimalist",
		DefaultScheme: "ocean",
		Styles: map[string]StyleFragment{
			"minimalist": {
				Fragment:    "Minimalist flat design with generous negative space and a single focal element.",
				Shapes:      "circles",
				Description: "Clean flat design with a single focal shape",
			},
			"illustrated": {
				Fragment:    "Hand-illustrated style with organic textures and painterly detail.",
				Shapes:      "waves",
				Description: "Painterly illustration with organic texture",
			},
			"photographic": {
				Fragment:    "Photorealistic composition with dramatic natural lighting.",
				Shapes:      "bands",
				Description: "Photorealistic scene with dramatic lighting",
			},
			"abstract": {
				Fragment:    "Abstract geometric composition with bold overlapping forms.",
				Shapes:      "triangles",
				Description: "Bold abstract geometry",
			},
			"vintage": {
				Fragment:    "Vintage mid-century print style with muted inks and letterpress texture.",
				Shapes:      "frames",
				Description: "Mid-century print with letterpress texture",
			},
		},
		Schemes: map[string]ColorFragment{
			"ocean": {
				Fragment: "Cool ocean palette of deep blues and teals.",
				Palette:  []string{"#0B3954", "#087E8B", "#BFD7EA"},
			},
			"sunset": {
				Fragment: "Warm sunset palette of oranges, corals and dusky purple.",
				Palette:  []string{"#F25C05", "#F29544", "#5C2A9D"},
			},
			"forest": {
				Fragment: "Earthy forest palette of deep greens and warm browns.",
				Palette:  []string{"#1B4332", "#52796F", "#D8C3A5"},
			},
			"monochrome": {
				Fragment: "High-contrast monochrome palette of black, white and gray.",
				Palette:  []string{"#111111", "#555555", "#EEEEEE"},
			},
			"pastel": {
				Fragment: "Soft pastel palette of blush, mint and lavender.",
				Palette:  []string{"#FADDE1", "#CDEAC0", "#CBB8E8"},
			},
		},
	}
}
