package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/jobs"
)

// NotificationJobType identifies notification delivery jobs.
const NotificationJobType = "notification.deliver"

const outcomeDropped = "dropped"

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

type notificationQueue interface {
	Enqueue(job jobs.Job) error
}

type jobMetrics interface {
	RecordJob(outcome string)
}

// NotificationService fans domain events out to user inboxes through the job queue.
type NotificationService struct {
	repo    notificationRepository
	queue   notificationQueue
	metrics jobMetrics
	logger  *zap.Logger
}

// NewNotificationService constructs a notification service. Until a queue is
// attached notifications are stored synchronously.
func NewNotificationService(repo notificationRepository, metrics jobMetrics, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, metrics: metrics, logger: logger}
}

// AttachQueue routes future notifications through queue.
func (s *NotificationService) AttachQueue(queue notificationQueue) {
	s.queue = queue
}

// Notify delivers a copy of template to every recipient. Delivery is best
// effort: failures are logged and never returned to the caller.
func (s *NotificationService) Notify(ctx context.Context, recipients []string, template models.Notification) {
	if s == nil {
		return
	}
	for _, userID := range recipients {
		n := template
		n.UserID = userID

		if s.queue == nil {
			if err := s.repo.Create(ctx, &n); err != nil {
				s.logger.Warn("store notification failed", zap.String("user_id", userID), zap.Error(err))
			}
			continue
		}
		if err := s.queue.Enqueue(jobs.Job{Type: NotificationJobType, Payload: n}); err != nil {
			s.logger.Warn("notification dropped", zap.String("user_id", userID), zap.String("type", string(n.Type)), zap.Error(err))
			if s.metrics != nil {
				s.metrics.RecordJob(outcomeDropped)
			}
		}
	}
}

// Handle is the queue handler persisting one notification.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.Type)
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	return nil
}

// List returns the caller's notifications.
func (s *NotificationService) List(ctx context.Context, actor *models.Identity, query dto.ListNotificationsQuery) ([]models.Notification, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	items, err := s.repo.ListByUser(ctx, actor.SubjectID, query.UnreadOnly)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.Identity, id string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.repo.MarkRead(ctx, actor.SubjectID, id); err != nil {
		return lookupError(err, "notification not found", "failed to update notification")
	}
	return nil
}
