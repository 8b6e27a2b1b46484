package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"
	ws "procurement-backend/internal/websocket"

	"github.com/google/uuid"
)

// Notifier is the fire-and-forget notification port consumed by the
// document services. Implementations must never propagate failures into
// the caller's transaction.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifyType, title, message, referenceID string)
}

type NotificationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at"`
}

type NotificationService interface {
	Notifier
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo repository.NotificationRepository, hub *ws.Hub) NotificationService {
	return &notificationService{repo: repo, hub: hub}
}

// Notify persists the notification and pushes it to the user's open
// websocket connections. Errors are logged and swallowed so a failed
// notification can never roll back the business transaction it follows.
func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, notifyType, title, message, referenceID string) {
	notification := model.Notification{
		UserID:      userID,
		Type:        notifyType,
		Title:       title,
		Message:     message,
		ReferenceID: referenceID,
	}
	if err := s.repo.Create(ctx, &notification); err != nil {
		log.Printf("notification persist failed (user %s, type %s): %v", userID, notifyType, err)
		return
	}

	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(toNotificationResponse(notification))
	if err != nil {
		log.Printf("notification encode failed: %v", err)
		return
	}
	s.hub.SendToUser(userID.String(), payload)
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	notifications, total, err := s.repo.ListByUser(ctx, uid, unreadOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	result := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, toNotificationResponse(n))
	}
	return result, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	nid, err := uuid.Parse(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	return s.repo.MarkRead(ctx, nid, uid)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.MarkAllRead(ctx, uid)
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID.String(),
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		ReferenceID: n.ReferenceID,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
