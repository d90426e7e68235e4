package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookforge/bookforge-backend/internal/bookgen"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/server/response"
	"github.com/bookforge/bookforge-backend/internal/services"
)

// GenerateHandler serves the book-generation endpoints. Validation happens
// before any upstream call; a missing field is a 400 with no AI traffic.
type GenerateHandler struct {
	outline *bookgen.OutlineService
	content *bookgen.ContentService
	cover   *bookgen.CoverService
	pdf     *bookgen.PDFService
	build   services.BookBuildService
	log     *logger.Logger
}

func NewGenerateHandler(
	outline *bookgen.OutlineService,
	content *bookgen.ContentService,
	cover *bookgen.CoverService,
	pdf *bookgen.PDFService,
	build services.BookBuildService,
	log *logger.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		outline: outline,
		content: content,
		cover:   cover,
		pdf:     pdf,
		build:   build,
		log:     log.With("handler", "Generate"),
	}
}

func (gh *GenerateHandler) Outline(c *gin.Context) {
	var req bookgen.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := requireFields([]requiredField{
		{"title", req.Title},
		{"author", req.Author},
		{"book_idea", req.BookIdea},
	}); err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_field", err)
		return
	}
	if req.NumPages <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_num_pages",
			fmt.Errorf("num_pages must be positive"))
		return
	}

	toc, err := gh.outline.Generate(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, toc)
}

// chapterPayload binds chapter_number as a pointer: an absent field means
// chapter 1, while an explicit 0 is out of range and rejected.
type chapterPayload struct {
	Title          string               `json:"title"`
	Author         string               `json:"author"`
	BookIdea       string               `json:"book_idea"`
	TOC            []bookgen.Section    `json:"toc"`
	ChapterNumber  *int                 `json:"chapter_number"`
	ContentDepth   bookgen.ContentDepth `json:"content_depth"`
	GenerationMode string               `json:"generation_mode"`
	BookSummary    string               `json:"book_summary"`
}

func (gh *GenerateHandler) Chapter(c *gin.Context) {
	var payload chapterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := requireFields([]requiredField{
		{"title", payload.Title},
		{"author", payload.Author},
		{"book_idea", payload.BookIdea},
	}); err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_field", err)
		return
	}
	if len(payload.TOC) == 0 {
		response.RespondError(c, http.StatusBadRequest, "missing_field",
			fmt.Errorf("toc is required"))
		return
	}

	chapterNumber := 1
	if payload.ChapterNumber != nil {
		chapterNumber = *payload.ChapterNumber
	}

	chapter, err := gh.content.Generate(c.Request.Context(), bookgen.ChapterRequest{
		Title:          payload.Title,
		Author:         payload.Author,
		BookIdea:       payload.BookIdea,
		TOC:            bookgen.TableOfContents{Sections: payload.TOC, Summary: payload.BookSummary},
		ChapterNumber:  chapterNumber,
		ContentDepth:   payload.ContentDepth,
		GenerationMode: bookgen.GenerationMode(payload.GenerationMode),
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, chapter)
}

func (gh *GenerateHandler) Cover(c *gin.Context) {
	var spec bookgen.CoverSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := requireFields([]requiredField{
		{"title", spec.Title},
		{"author", spec.Author},
		{"book_description", spec.BookDescription},
	}); err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_field", err)
		return
	}

	result, err := gh.cover.Generate(c.Request.Context(), spec)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (gh *GenerateHandler) PDF(c *gin.Context) {
	var req bookgen.PDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := requireFields([]requiredField{
		{"title", req.Title},
		{"author", req.Author},
	}); err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_field", err)
		return
	}

	result, err := gh.pdf.Generate(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

type buildPayload struct {
	bookgen.BookRequest
	Cover      bookgen.CoverSpec  `json:"cover"`
	PageFormat bookgen.PageFormat `json:"page_format"`
	Wait       bool               `json:"wait"`
}

// Build runs the whole wizard. By default it starts the build in the
// background and returns the realtime channel to follow; wait=true blocks
// until the build finishes and returns the full result.
func (gh *GenerateHandler) Build(c *gin.Context) {
	var payload buildPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := requireFields([]requiredField{
		{"title", payload.Title},
		{"author", payload.Author},
		{"book_idea", payload.BookIdea},
	}); err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_field", err)
		return
	}
	if payload.NumPages <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_num_pages",
			fmt.Errorf("num_pages must be positive"))
		return
	}

	buildID := uuid.New()

	if payload.Wait {
		result, err := gh.build.Build(c.Request.Context(), buildID, payload.BookRequest, payload.Cover, payload.PageFormat)
		if err != nil {
			response.RespondFromError(c, err)
			return
		}
		response.RespondOK(c, result)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := gh.build.Build(ctx, buildID, payload.BookRequest, payload.Cover, payload.PageFormat); err != nil {
			gh.log.Warn("Background build failed", "build_id", buildID, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"build_id": buildID,
		"channel":  services.BuildChannel(buildID),
	})
}

type requiredField struct {
	name  string
	value string
}

func requireFields(fields []requiredField) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}
