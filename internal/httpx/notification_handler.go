package httpx

import (
	"net/http"
	"time"

	"pawmart-be/internal/notification"
)

type NotificationHandler struct {
	notifications notification.Repository
}

func NewNotificationHandler(notifications notification.Repository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RelatedID int64     `json:"related_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	list, err := h.notifications.ListUnread(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, notificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			RelatedID: n.RelatedID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := pathID(r, "notificationID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification id"})
		return
	}

	actor := actorFrom(r)
	if err := h.notifications.MarkRead(r.Context(), actor.ID, notificationID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}
