package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/realtime"
	"github.com/bookforge/bookforge-backend/internal/server/response"
)

// RealtimeHandler streams build progress over SSE.
type RealtimeHandler struct {
	hub *realtime.Hub
	log *logger.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, log *logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		log: log.With("handler", "Realtime"),
	}
}

// Stream subscribes the caller to the requested channels and holds the
// connection open. channels is a comma-separated list, e.g.
// ?channels=build.<id>.
func (rh *RealtimeHandler) Stream(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("channels"))
	if raw == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_field",
			fmt.Errorf("channels is required"))
		return
	}

	client := rh.hub.NewClient()
	for _, channel := range strings.Split(raw, ",") {
		rh.hub.Subscribe(client, channel)
	}
	defer rh.hub.RemoveClient(client)

	rh.hub.ServeHTTP(c.Writer, c.Request, client)
}
