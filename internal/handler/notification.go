package handler

import (
	"net/http"
	"strconv"

	"classifieds-api/internal/middleware"
	"classifieds-api/internal/service"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles notification HTTP requests.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 30
	}

	page, err := h.notificationService.GetNotifications(r.Context(), session.AccountID, limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, page)
}

// MarkAsRead handles POST /api/v1/notifications/{notification_id}/read
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	notificationID := chi.URLParam(r, "notification_id")

	if err := h.notificationService.MarkAsRead(r.Context(), session.AccountID, notificationID); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"status": "read"})
}

// MarkAllAsRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}

	if err := h.notificationService.MarkAllAsRead(r.Context(), session.AccountID); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"status": "read"})
}
