package bookgen

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"testing"

	"github.com/bookforge/bookforge-backend/internal/platform/openai"
)

func coverSpec() CoverSpec {
	return CoverSpec{
		Title:           "Tides",
		Author:          "M. Shore",
		BookDescription: "How coastlines shape the people who live on them",
		ColorScheme:     "ocean",
		DesignStyle:     "minimalist",
	}
}

func TestLocalCoverRendersDataURL(t *testing.T) {
	lc := NewLocalCover(DefaultStyleCatalog(), testLogger(t))

	res, err := lc.GenerateCover(context.Background(), coverSpec())
	if err != nil {
		t.Fatalf("GenerateCover: %v", err)
	}
	if !strings.HasPrefix(res.CoverURL, "data:image/png;base64,") {
		t.Fatalf("cover_url is not a png data URL: %q", res.CoverURL[:40])
	}
	if len(res.ColorPalette) != 3 {
		t.Fatalf("expected 3 palette colors, got %d", len(res.ColorPalette))
	}
	if res.ColorPalette[0] != "#0B3954" {
		t.Fatalf("unexpected primary color %q", res.ColorPalette[0])
	}
	if res.DesignDescription == "" {
		t.Fatal("empty design description")
	}
}

func TestLocalCoverUnknownStyleFallsBackToDefault(t *testing.T) {
	lc := NewLocalCover(DefaultStyleCatalog(), testLogger(t))
	spec := coverSpec()
	spec.DesignStyle = "brutalist"
	spec.ColorScheme = "neon"

	res, err := lc.GenerateCover(context.Background(), spec)
	if err != nil {
		t.Fatalf("GenerateCover: %v", err)
	}
	// Default scheme is ocean.
	if res.ColorPalette[0] != "#0B3954" {
		t.Fatalf("unknown scheme did not fall back: %q", res.ColorPalette[0])
	}
}

func TestCoverServiceFallsBackOnUpstreamError(t *testing.T) {
	ai := &stubAI{imageErr: fmt.Errorf("missing credential")}
	catalog := DefaultStyleCatalog()
	svc := NewCoverService(
		&ProxyCover{AI: ai, Catalog: catalog},
		NewLocalCover(catalog, testLogger(t)),
		nil,
		testLogger(t),
	)

	res, err := svc.Generate(context.Background(), coverSpec())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ai.calls != 1 {
		t.Fatalf("expected one upstream attempt, got %d", ai.calls)
	}
	if !strings.HasPrefix(res.CoverURL, "data:image/png;base64,") {
		t.Fatal("fallback did not render a data URL")
	}
}

func TestCoverServiceUpstreamSuccess(t *testing.T) {
	ai := &stubAI{imageOut: openai.ImageGeneration{
		Bytes:         []byte{0x89, 0x50},
		MimeType:      "image/png",
		RevisedPrompt: "a minimalist coastal scene",
	}}
	catalog := DefaultStyleCatalog()
	svc := NewCoverService(
		&ProxyCover{AI: ai, Catalog: catalog},
		NewLocalCover(catalog, testLogger(t)),
		nil,
		testLogger(t),
	)

	res, err := svc.Generate(context.Background(), coverSpec())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.DesignDescription != "a minimalist coastal scene" {
		t.Fatalf("unexpected description %q", res.DesignDescription)
	}
	if !strings.HasPrefix(res.CoverURL, "data:image/png;base64,") {
		t.Fatalf("unexpected cover_url %q", res.CoverURL)
	}
}

func TestContrastColor(t *testing.T) {
	if got := contrastColor(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}); got != color.Black {
		t.Fatal("white background should take black text")
	}
	if got := contrastColor(color.NRGBA{R: 0x0B, G: 0x39, B: 0x54, A: 0xFF}); got != color.White {
		t.Fatal("dark background should take white text")
	}
}

func TestWrapTitle(t *testing.T) {
	lines := wrapTitle("A Very Long Title About Coastlines", 12)
	for _, line := range lines {
		if len(line) > 12 {
			t.Fatalf("line %q exceeds limit", line)
		}
	}
	if got := wrapTitle("", 12); len(got) != 1 || got[0] != "Untitled" {
		t.Fatalf("empty title handling: %v", got)
	}
}
