package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/jobs"
)

type memoryNotificationRepo struct {
	mu      sync.Mutex
	stored  []models.Notification
	failFor int
	unread  bool
}

func (m *memoryNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor > 0 {
		m.failFor--
		return errors.New("db down")
	}
	n.ID = models.NewID()
	m.stored = append(m.stored, *n)
	return nil
}

func (m *memoryNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	m.unread = unreadOnly
	return nil, nil
}

func (m *memoryNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	return nil
}

func (m *memoryNotificationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stored)
}

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingMetrics) RecordJob(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

func (c *countingMetrics) get(outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[outcome]
}

func TestNotifyWithoutQueueStoresSynchronously(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil)

	svc.Notify(context.Background(), []string{testStudentID, testUserID}, models.Notification{Type: models.NotificationAssignmentCreated, Title: "New"})
	require.Equal(t, 2, repo.count())
	assert.Equal(t, testStudentID, repo.stored[0].UserID)
	assert.Equal(t, testUserID, repo.stored[1].UserID)
}

func TestNotifyThroughQueueRetries(t *testing.T) {
	repo := &memoryNotificationRepo{failFor: 1}
	metrics := &countingMetrics{}
	svc := NewNotificationService(repo, metrics, nil)
	queue := jobs.NewQueue("notifications", svc.Handle, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
		OnOutcome:  metrics.RecordJob,
	})
	queue.Start(context.Background())
	defer queue.Stop()
	svc.AttachQueue(queue)

	svc.Notify(context.Background(), []string{testStudentID}, models.Notification{Type: models.NotificationSubmissionGraded, Title: "Graded"})

	assert.Eventually(t, func() bool { return metrics.get(jobs.OutcomeSuccess) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, repo.count())
	assert.Equal(t, 1, metrics.get(jobs.OutcomeRetry))
}

func TestNotifyRecordsDroppedJobs(t *testing.T) {
	repo := &memoryNotificationRepo{}
	metrics := &countingMetrics{}
	svc := NewNotificationService(repo, metrics, nil)
	svc.AttachQueue(jobs.NewQueue("idle", svc.Handle, jobs.QueueConfig{}))

	svc.Notify(context.Background(), []string{testStudentID}, models.Notification{Title: "x"})
	assert.Equal(t, 1, metrics.get(outcomeDropped))
	assert.Zero(t, repo.count())
}

func TestHandleRejectsUnknownPayload(t *testing.T) {
	svc := NewNotificationService(&memoryNotificationRepo{}, nil, nil)
	err := svc.Handle(context.Background(), jobs.Job{Type: NotificationJobType, Payload: "oops"})
	assert.Error(t, err)
}

func TestListNotificationsRequiresIdentity(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil)

	_, err := svc.List(context.Background(), nil, dto.ListNotificationsQuery{})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	items, err := svc.List(context.Background(), studentIdentity(), dto.ListNotificationsQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.True(t, repo.unread)
}
