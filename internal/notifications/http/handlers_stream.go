package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/auth"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 15 * time.Second

// stream pushes the user's inbox and then every new notification using
// Server-Sent Events.
func (h *Handler) stream(c *gin.Context) {
	if h.hub == nil {
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeServerError, "realtime notifications are not configured")
		return
	}
	ctx := c.Request.Context()
	userID := auth.UserID(c)

	inbox, err := h.notificationService.List(ctx, userID)
	if err != nil {
		h.fail(c, "notifications.stream", err)
		return
	}
	sub, err := h.hub.Subscribe(ctx, userID)
	if err != nil {
		logging.Op(ctx, "notifications.stream").WithError(err).Error("subscribe failed")
		respond.Error(c, http.StatusInternalServerError, respond.CodeServerError, "failed to open stream")
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respond.Error(c, http.StatusInternalServerError, respond.CodeServerError, "streaming unsupported")
		return
	}

	writeEvent(c, "initial", inbox)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case n, open := <-sub.C:
			if !open {
				return
			}
			writeEvent(c, "notification", n)
			flusher.Flush()
		}
	}
}

func writeEvent(c *gin.Context, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Op(c.Request.Context(), "notifications.stream").WithError(err).Warn("marshal event")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
}
