package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/server/response"
	"github.com/bookforge/bookforge-backend/internal/services"
)

// NotifyHandler re-sends the submission emails on demand. The regular path
// fires them automatically on insert; this endpoint exists for retries from
// the admin side.
type NotifyHandler struct {
	notify services.NotifyService
	log    *logger.Logger
}

func NewNotifyHandler(notify services.NotifyService, log *logger.Logger) *NotifyHandler {
	return &NotifyHandler{
		notify: notify,
		log:    log.With("handler", "Notify"),
	}
}

var errNotifyUnavailable = errors.New("email delivery is not configured")

type notifyPayload struct {
	Submission domain.FormSubmission `json:"submission"`
}

func (nh *NotifyHandler) SubmissionEmails(c *gin.Context) {
	if nh.notify == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "notify_unavailable",
			errNotifyUnavailable)
		return
	}

	var payload notifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := requireFields([]requiredField{
		{"submission.name", payload.Submission.Name},
		{"submission.email", payload.Submission.Email},
		{"submission.topic", payload.Submission.Topic},
	}); err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_field", err)
		return
	}

	results := nh.notify.NotifySubmission(c.Request.Context(), &payload.Submission)
	response.RespondOK(c, gin.H{"results": results})
}
