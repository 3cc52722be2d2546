package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/domain/auth"
	"github.com/vontade-empenho/ponto-backend/internal/handler/http/response"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/cron"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/jwt"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/sse"
)

const streamKeepalive = 30 * time.Second

type StreamHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	jwtService        jwt.Service
	authService       auth.AuthService
	attendanceService attendance.AttendanceService
	hub               *sse.Hub
	keepalive         time.Duration
}

func NewStreamHandler(
	jwtService jwt.Service,
	authService auth.AuthService,
	attendanceService attendance.AttendanceService,
	hub *sse.Hub,
) StreamHandler {
	return &streamHandlerImpl{
		jwtService:        jwtService,
		authService:       authService,
		attendanceService: attendanceService,
		hub:               hub,
		keepalive:         streamKeepalive,
	}
}

// Token issues the short-lived token the browser passes to Stream.
func (h *streamHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.SSEToken(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stream pushes the tenant's live dashboard. The first frame is computed on
// connect; later ones come from the refresh job through the hub.
func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// the stream outlives the server's WriteTimeout
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		slog.Warn("Stream write deadline not cleared", "user_id", userID, "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(userID)
	defer cleanup()

	send := func(write func() error) bool {
		if err := write(); err != nil {
			slog.Error("Stream write error", "user_id", userID, "error", err)
			return false
		}
		if err := rc.Flush(); err != nil {
			slog.Error("Stream flush error", "user_id", userID, "error", err)
			return false
		}
		return true
	}

	connected := func() error {
		_, err := fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", userID)
		return err
	}
	if !send(connected) {
		return
	}

	initial := sse.Event{UserID: userID, Event: cron.EventDashboard}
	if dashboard, err := h.attendanceService.RefreshDashboard(r.Context(), userID); err != nil {
		slog.Warn("Initial dashboard failed", "user_id", userID, "error", err)
		initial.Event = cron.EventDashboardError
		initial.Data = map[string]string{"message": err.Error()}
	} else {
		initial.Data = dashboard
	}
	if !send(func() error { return initial.Encode(w) }) {
		return
	}

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if !send(func() error { return event.Encode(w) }) {
				return
			}

		case <-keepalive.C:
			ping := func() error {
				_, err := fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
				return err
			}
			if !send(ping) {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
