package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bookforge/bookforge-backend/internal/bookgen"
	"github.com/bookforge/bookforge-backend/internal/bookgen/wizard"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/realtime"
)

// ChapterOutcome is one chapter's result from a generate-all run. Failed
// chapters carry an error message instead of content.
type ChapterOutcome struct {
	Number  int              `json:"chapter_number"`
	Chapter *bookgen.Chapter `json:"chapter,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// BuildResult is a completed build run.
type BuildResult struct {
	BuildID  uuid.UUID                `json:"build_id"`
	TOC      *bookgen.TableOfContents `json:"toc"`
	Chapters []ChapterOutcome         `json:"chapters"`
	Cover    *bookgen.CoverResult     `json:"cover,omitempty"`
	PDF      *bookgen.PDFResult       `json:"pdf,omitempty"`
}

// BookBuildService runs the wizard flow end to end: outline, every chapter
// concurrently, cover, then PDF. Progress is published to the realtime hub
// on the build's channel.
type BookBuildService interface {
	Build(ctx context.Context, buildID uuid.UUID, req bookgen.BookRequest, spec bookgen.CoverSpec, format bookgen.PageFormat) (*BuildResult, error)
	GenerateAllChapters(ctx context.Context, base bookgen.ChapterRequest, channel string) []ChapterOutcome
}

type bookBuildService struct {
	outline *bookgen.OutlineService
	content *bookgen.ContentService
	cover   *bookgen.CoverService
	pdf     *bookgen.PDFService
	hub     realtime.Broadcaster
	log     *logger.Logger
}

func NewBookBuildService(
	outline *bookgen.OutlineService,
	content *bookgen.ContentService,
	cover *bookgen.CoverService,
	pdf *bookgen.PDFService,
	hub realtime.Broadcaster,
	log *logger.Logger,
) BookBuildService {
	return &bookBuildService{
		outline: outline,
		content: content,
		cover:   cover,
		pdf:     pdf,
		hub:     hub,
		log:     log.With("service", "BookBuild"),
	}
}

// BuildChannel names the realtime channel for a build.
func BuildChannel(buildID uuid.UUID) string {
	return "build." + buildID.String()
}

func (bs *bookBuildService) publish(channel string, event realtime.Event, data any) {
	if bs.hub == nil || channel == "" {
		return
	}
	bs.hub.Broadcast(realtime.Message{Channel: channel, Event: event, Data: data})
}

func (bs *bookBuildService) Build(ctx context.Context, buildID uuid.UUID, req bookgen.BookRequest, coverSpec bookgen.CoverSpec, format bookgen.PageFormat) (*BuildResult, error) {
	wctx, err := wizard.New(req)
	if err != nil {
		return nil, err
	}

	if buildID == uuid.Nil {
		buildID = uuid.New()
	}
	channel := BuildChannel(buildID)
	bs.publish(channel, realtime.EventBuildStarted, map[string]any{"build_id": buildID, "title": req.Title})

	toc, err := bs.outline.Generate(ctx, req)
	if err != nil {
		bs.publish(channel, realtime.EventBuildFailed, map[string]any{"build_id": buildID, "error": err.Error()})
		return nil, fmt.Errorf("outline: %w", err)
	}
	if err := wctx.AdvanceToOutline(toc); err != nil {
		return nil, err
	}
	bs.publish(channel, realtime.EventOutlineReady, toc)

	outcomes := bs.GenerateAllChapters(ctx, bookgen.ChapterRequest{
		Title:    req.Title,
		Author:   req.Author,
		BookIdea: req.BookIdea,
		TOC:      *toc,
	}, channel)

	result := &BuildResult{BuildID: buildID, TOC: toc, Chapters: outcomes}

	chapters := make([]bookgen.Chapter, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Error != "" {
			bs.publish(channel, realtime.EventBuildFailed, map[string]any{
				"build_id": buildID,
				"error":    fmt.Sprintf("chapter %d: %s", o.Number, o.Error),
			})
			return result, fmt.Errorf("chapter %d: %s", o.Number, o.Error)
		}
		chapters = append(chapters, *o.Chapter)
	}
	if err := wctx.AdvanceToContent(chapters); err != nil {
		return result, err
	}

	if coverSpec.Title == "" {
		coverSpec.Title = req.Title
	}
	if coverSpec.Author == "" {
		coverSpec.Author = req.Author
	}
	if coverSpec.BookDescription == "" {
		coverSpec.BookDescription = toc.Summary
	}
	cover, err := bs.cover.Generate(ctx, coverSpec)
	if err != nil {
		bs.publish(channel, realtime.EventBuildFailed, map[string]any{"build_id": buildID, "error": err.Error()})
		return result, fmt.Errorf("cover: %w", err)
	}
	if err := wctx.AdvanceToCover(cover); err != nil {
		return result, err
	}
	result.Cover = cover
	bs.publish(channel, realtime.EventCoverReady, map[string]any{"build_id": buildID, "design_description": cover.DesignDescription})

	pdf, err := bs.pdf.Generate(ctx, bookgen.PDFRequest{
		Title:      req.Title,
		Author:     req.Author,
		Chapters:   chapters,
		CoverURL:   cover.CoverURL,
		IncludeTOC: true,
		PageFormat: format,
	})
	if err != nil {
		bs.publish(channel, realtime.EventBuildFailed, map[string]any{"build_id": buildID, "error": err.Error()})
		return result, fmt.Errorf("pdf: %w", err)
	}
	if err := wctx.AdvanceToExport(pdf); err != nil {
		return result, err
	}
	result.PDF = pdf

	bs.publish(channel, realtime.EventBuildFinished, pdf)
	bs.log.Info("Build finished", "build_id", buildID, "chapters", len(chapters), "pages", pdf.TotalPages)
	return result, nil
}

// GenerateAllChapters fires every chapter generation at once. Chapters are
// independent, so one failure is captured in its outcome without stopping
// the others.
func (bs *bookBuildService) GenerateAllChapters(ctx context.Context, base bookgen.ChapterRequest, channel string) []ChapterOutcome {
	n := len(base.TOC.Sections)
	outcomes := make([]ChapterOutcome, n)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		number := i + 1
		g.Go(func() error {
			bs.publish(channel, realtime.EventChapterStarted, map[string]any{"chapter_number": number})

			req := base
			req.ChapterNumber = number
			ch, err := bs.content.Generate(gctx, req)
			if err != nil {
				outcomes[number-1] = ChapterOutcome{Number: number, Error: err.Error()}
				bs.publish(channel, realtime.EventChapterFailed, map[string]any{"chapter_number": number, "error": err.Error()})
				return nil
			}
			outcomes[number-1] = ChapterOutcome{Number: number, Chapter: ch}
			bs.publish(channel, realtime.EventChapterFinished, map[string]any{
				"chapter_number":  number,
				"chapter_title":   ch.Title,
				"word_count":      ch.WordCount,
				"estimated_pages": ch.EstimatedPages,
			})
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
