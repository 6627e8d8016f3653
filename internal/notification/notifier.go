package notification

import (
	"context"

	"pawmart-be/internal/logger"

	"go.uber.org/zap"
)

// Notifier is the collaborator the order and delivery services call on
// every state change. It returns nothing: notification is best-effort
// and must never roll back the transaction it follows.
type Notifier interface {
	Notify(ctx context.Context, userID int64, typ, title, message string, relatedID int64)
}

// EventSink is the subset of Publisher the service needs; nil is
// allowed when no broker is configured.
type EventSink interface {
	Publish(ctx context.Context, n *Notification) error
}

type service struct {
	repo Repository
	sink EventSink
}

func NewService(repo Repository, sink EventSink) Notifier {
	return &service{repo: repo, sink: sink}
}

func (s *service) Notify(ctx context.Context, userID int64, typ, title, message string, relatedID int64) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("user_id", userID),
		zap.String("type", typ),
		zap.Int64("related_id", relatedID),
	)

	n := &Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}

	if _, err := s.repo.Create(ctx, n); err != nil {
		log.Warn("failed to store notification", zap.Error(err))
	}

	if s.sink != nil {
		if err := s.sink.Publish(ctx, n); err != nil {
			log.Warn("failed to publish notification", zap.Error(err))
		}
	}
}
