package bookgen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/platform/openai"
)

// CoverStrategy produces cover art for a spec.
type CoverStrategy interface {
	GenerateCover(ctx context.Context, spec CoverSpec) (*CoverResult, error)
}

// ProxyCover asks the upstream image endpoint for the cover.
type ProxyCover struct {
	AI      openai.Client
	Catalog *StyleCatalog
}

func (p *ProxyCover) GenerateCover(ctx context.Context, spec CoverSpec) (*CoverResult, error) {
	_, style := p.Catalog.Style(spec.DesignStyle)
	_, scheme := p.Catalog.Scheme(spec.ColorScheme)

	gen, err := p.AI.GenerateImage(ctx, buildCoverPrompt(spec, style, scheme))
	if err != nil {
		return nil, err
	}

	desc := gen.RevisedPrompt
	if desc == "" {
		desc = fmt.Sprintf("%s cover for %q", style.Description, spec.Title)
	}
	return &CoverResult{
		CoverURL:          dataURL(gen.MimeType, gen.Bytes),
		DesignDescription: desc,
		ColorPalette:      append([]string(nil), scheme.Palette...),
	}, nil
}

// LocalCover draws a vector placeholder with gg: gradient background,
// style-keyed decorative shapes, centered title and author.
type LocalCover struct {
	Catalog  *StyleCatalog
	fontFace font.Face
}

// NewLocalCover builds the fallback renderer. COVER_FONT_PATH names a TTF
// for the title text; without it gg's built-in bitmap face is used.
func NewLocalCover(catalog *StyleCatalog, log *logger.Logger) *LocalCover {
	lc := &LocalCover{Catalog: catalog}
	if path := strings.TrimSpace(os.Getenv("COVER_FONT_PATH")); path != "" {
		face, err := loadFontFace(path, 72)
		if err != nil {
			log.Warn("Could not load cover font, using built-in face", "font", path, "error", err)
		} else {
			lc.fontFace = face
		}
	}
	return lc
}

const (
	coverWidth  = 1024
	coverHeight = 1536
)

func (l *LocalCover) GenerateCover(_ context.Context, spec CoverSpec) (*CoverResult, error) {
	styleKey, style := l.Catalog.Style(spec.DesignStyle)
	_, scheme := l.Catalog.Scheme(spec.ColorScheme)

	primary := parseHexColor(scheme.Palette[0])
	secondary := primary
	accent := primary
	if len(scheme.Palette) > 1 {
		secondary = parseHexColor(scheme.Palette[1])
	}
	if len(scheme.Palette) > 2 {
		accent = parseHexColor(scheme.Palette[2])
	}

	dc := gg.NewContext(coverWidth, coverHeight)

	grad := gg.NewLinearGradient(0, 0, 0, coverHeight)
	grad.AddColorStop(0, primary)
	grad.AddColorStop(1, secondary)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, coverWidth, coverHeight)
	dc.Fill()

	drawShapes(dc, style.Shapes, accent)

	if l.fontFace != nil {
		dc.SetFontFace(l.fontFace)
	}
	dc.SetColor(contrastColor(primary))
	drawCenteredLines(dc, wrapTitle(spec.Title, 18), coverHeight*0.38, 90)

	dc.SetColor(contrastColor(secondary))
	aw, _ := dc.MeasureString(spec.Author)
	dc.DrawString(spec.Author, (coverWidth-aw)/2, coverHeight*0.82)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode cover png: %w", err)
	}

	return &CoverResult{
		CoverURL:          dataURL("image/png", buf.Bytes()),
		DesignDescription: fmt.Sprintf("Locally rendered %s placeholder (%s)", styleKey, style.Description),
		ColorPalette:      append([]string(nil), scheme.Palette...),
	}, nil
}

func drawShapes(dc *gg.Context, kind string, c color.Color) {
	dc.SetColor(withAlpha(c, 110))
	switch kind {
	case "waves":
		for y := 0; y < 4; y++ {
			base := coverHeight*0.55 + float64(y)*70
			dc.MoveTo(0, base)
			for x := 0.0; x <= coverWidth; x += 16 {
				dc.LineTo(x, base+40*math.Sin(x/120+float64(y)))
			}
			dc.LineTo(coverWidth, coverHeight)
			dc.LineTo(0, coverHeight)
			dc.ClosePath()
			dc.Fill()
		}
	case "bands":
		for i := 0; i < 5; i++ {
			dc.DrawRectangle(0, float64(coverHeight)-float64(i+1)*90, coverWidth, 45)
			dc.Fill()
		}
	case "triangles":
		for i := 0; i < 6; i++ {
			x := float64(i) * (coverWidth / 5.0)
			dc.MoveTo(x, coverHeight)
			dc.LineTo(x+140, coverHeight-260)
			dc.LineTo(x+280, coverHeight)
			dc.ClosePath()
			dc.Fill()
		}
	case "frames":
		for i := 1; i <= 3; i++ {
			inset := float64(i) * 36
			dc.SetLineWidth(6)
			dc.DrawRectangle(inset, inset, coverWidth-2*inset, coverHeight-2*inset)
			dc.Stroke()
		}
	default: // circles
		dc.DrawCircle(coverWidth*0.5, coverHeight*0.62, 180)
		dc.Fill()
		dc.DrawCircle(coverWidth*0.2, coverHeight*0.15, 90)
		dc.Fill()
		dc.DrawCircle(coverWidth*0.85, coverHeight*0.9, 120)
		dc.Fill()
	}
}

func drawCenteredLines(dc *gg.Context, lines []string, startY, lineHeight float64) {
	for i, line := range lines {
		w, _ := dc.MeasureString(line)
		dc.DrawString(line, (coverWidth-w)/2, startY+float64(i)*lineHeight)
	}
}

// wrapTitle breaks a title into lines of at most maxChars characters,
// splitting on word boundaries.
func wrapTitle(title string, maxChars int) []string {
	words := strings.Fields(title)
	var lines []string
	var cur string
	for _, w := range words {
		if cur == "" {
			cur = w
		} else if len(cur)+1+len(w) <= maxChars {
			cur += " " + w
		} else {
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	if len(lines) == 0 {
		lines = []string{"Untitled"}
	}
	return lines
}

// contrastColor picks black or white text by the background's relative
// luminance, threshold 0.5.
func contrastColor(c color.Color) color.Color {
	if relativeLuminance(c) > 0.5 {
		return color.Black
	}
	return color.White
}

func relativeLuminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	lin := func(v uint32) float64 {
		s := float64(v) / 65535.0
		if s <= 0.03928 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(r) + 0.7152*lin(g) + 0.0722*lin(b)
}

func parseHexColor(s string) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 3 {
		return color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	}
	return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xFF}
}

func withAlpha(c color.Color, a uint8) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}

func dataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// CoverService tries the upstream strategy once and falls back to the local
// renderer on any failure.
type CoverService struct {
	primary  CoverStrategy
	fallback CoverStrategy
	recorder CallRecorder
	log      *logger.Logger
}

func NewCoverService(primary CoverStrategy, fallback *LocalCover, recorder CallRecorder, log *logger.Logger) *CoverService {
	return &CoverService{
		primary:  primary,
		fallback: fallback,
		recorder: recorder,
		log:      log.With("service", "Cover"),
	}
}

func (s *CoverService) Generate(ctx context.Context, spec CoverSpec) (*CoverResult, error) {
	if s.primary != nil {
		start := time.Now()
		result, err := s.primary.GenerateCover(ctx, spec)
		if err == nil {
			record(ctx, s.recorder, "openai", "cover", CallOK, time.Since(start), nil)
			return result, nil
		}
		record(ctx, s.recorder, "openai", "cover", CallFallback, time.Since(start), err)
		s.log.Warn("Cover upstream failed, rendering local placeholder", "error", err)
	}
	result, err := s.fallback.GenerateCover(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("fallback cover: %w", err)
	}
	return result, nil
}
