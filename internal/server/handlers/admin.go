package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/server/response"
	"github.com/bookforge/bookforge-backend/internal/services"
)

// AdminHandler serves the bearer-gated admin API.
type AdminHandler struct {
	submissions services.SubmissionService
	log         *logger.Logger
}

func NewAdminHandler(submissions services.SubmissionService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		submissions: submissions,
		log:         log.With("handler", "Admin"),
	}
}

// ListSubmissions returns every submission joined with the owning user's
// account email.
func (ah *AdminHandler) ListSubmissions(c *gin.Context) {
	rows, err := ah.submissions.ListForAdmin(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submissions": rows})
}

type statusUpdatePayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// UpdateSubmissionStatus sets a submission's status. Any of the four enum
// values is reachable from any other.
func (ah *AdminHandler) UpdateSubmissionStatus(c *gin.Context) {
	var payload statusUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id",
			fmt.Errorf("id must be a UUID"))
		return
	}
	status := domain.SubmissionStatus(payload.Status)
	if !status.Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_status",
			fmt.Errorf("status must be one of pending, in_progress, completed, cancelled"))
		return
	}

	updated, err := ah.submissions.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.RespondError(c, http.StatusNotFound, "not_found",
				fmt.Errorf("submission %s not found", id))
			return
		}
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, updated)
}
