package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookforge/bookforge-backend/internal/data/repos"
	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/ctxutil"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/server/response"
	"github.com/bookforge/bookforge-backend/internal/services"
)

type SubmissionHandler struct {
	submissions    services.SubmissionService
	submissionRepo repos.SubmissionRepo
	log            *logger.Logger
}

func NewSubmissionHandler(submissions services.SubmissionService, submissionRepo repos.SubmissionRepo, log *logger.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions:    submissions,
		submissionRepo: submissionRepo,
		log:            log.With("handler", "Submission"),
	}
}

type submissionPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Topic       string `json:"topic"`
	Style       string `json:"style"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

// Create inserts a submission and fires the notification emails in the
// background.
func (sh *SubmissionHandler) Create(c *gin.Context) {
	var payload submissionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := requireFields([]requiredField{
		{"name", payload.Name},
		{"email", payload.Email},
		{"topic", payload.Topic},
	}); err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_field", err)
		return
	}

	sub := &domain.FormSubmission{
		Name:        payload.Name,
		Email:       payload.Email,
		Topic:       payload.Topic,
		Style:       payload.Style,
		Description: payload.Description,
		Notes:       payload.Notes,
	}
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		userID := rd.UserID
		sub.UserID = &userID
	}

	created, err := sh.submissions.Submit(c.Request.Context(), sub)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

// ListMine returns the authenticated user's own submissions.
func (sh *SubmissionHandler) ListMine(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized",
			fmt.Errorf("missing identity"))
		return
	}

	subs, err := sh.submissionRepo.ListByUser(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submissions": subs})
}
