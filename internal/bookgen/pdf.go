package bookgen

import (
	"context"
	"fmt"
	"time"

	"github.com/bookforge/bookforge-backend/internal/bookgen/pagemath"
	"github.com/bookforge/bookforge-backend/internal/platform/apierr"
	"github.com/bookforge/bookforge-backend/internal/platform/docrender"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

// PDFService renders the assembled book through the external document
// renderer. There is no local fallback: a render failure surfaces as an
// error.
type PDFService struct {
	renderer docrender.Client
	recorder CallRecorder
	log      *logger.Logger
}

func NewPDFService(renderer docrender.Client, recorder CallRecorder, log *logger.Logger) *PDFService {
	return &PDFService{
		renderer: renderer,
		recorder: recorder,
		log:      log.With("service", "PDF"),
	}
}

// estimatedBytesPerPage approximates rendered PDF size for the file-size
// fallback when the renderer omits it.
const estimatedBytesPerPage = 45 * 1024

func (s *PDFService) Generate(ctx context.Context, req PDFRequest) (*PDFResult, error) {
	if len(req.Chapters) == 0 {
		return nil, apierr.BadRequest("missing_chapters", fmt.Errorf("chapters must not be empty"))
	}
	if req.PageFormat == "" {
		req.PageFormat = FormatA4
	}
	if !req.PageFormat.Valid() {
		return nil, apierr.BadRequest("invalid_page_format",
			fmt.Errorf("page_format must be one of a4, letter, 6x9, 5x8"))
	}

	start := time.Now()
	res, err := s.renderer.RenderPDF(ctx, docrender.RenderRequest{
		Title:      req.Title,
		Author:     req.Author,
		HTML:       AssembleBookHTML(req),
		CoverURL:   req.CoverURL,
		PageFormat: string(req.PageFormat),
	})
	if err != nil {
		record(ctx, s.recorder, "docrender", "pdf", CallError, time.Since(start), err)
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	record(ctx, s.recorder, "docrender", "pdf", CallOK, time.Since(start), nil)

	words := 0
	for _, ch := range req.Chapters {
		if ch.WordCount > 0 {
			words += ch.WordCount
		} else {
			words += pagemath.CountWords(ch.Content)
		}
	}

	out := &PDFResult{
		PDFURL:     res.PDFURL,
		TotalPages: res.TotalPages,
		WordCount:  res.WordCount,
		FileSizeMB: res.FileSizeMB,
	}
	// Estimate only what the renderer did not report.
	if out.WordCount == 0 {
		out.WordCount = words
	}
	if out.TotalPages == 0 {
		out.TotalPages = pagemath.EstimatePages(out.WordCount)
	}
	if out.FileSizeMB == 0 {
		out.FileSizeMB = float64(out.TotalPages*estimatedBytesPerPage) / (1024 * 1024)
	}
	return out, nil
}
