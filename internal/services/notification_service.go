// internal/services/notification_service.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/license-console/internal/models"
)

// Notifier receives the user-visible outcome of every fetch and command.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification)
}

// NotificationService keeps recent notifications in memory and, when a
// database is configured, persists them to the notifications table.
type NotificationService struct {
	db       *gorm.DB
	mu       sync.RWMutex
	recent   []models.Notification
	capacity int
}

type NotificationFilter struct {
	Level models.NotificationLevel `form:"level" json:"level,omitempty" validate:"omitempty,oneof=success error"`
	Limit int                      `form:"limit" json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}

const defaultNotificationCapacity = 200

func NewNotificationService(db *gorm.DB, capacity int) *NotificationService {
	if capacity <= 0 {
		capacity = defaultNotificationCapacity
	}
	return &NotificationService{
		db:       db,
		capacity: capacity,
	}
}

func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	entry := logrus.WithFields(logrus.Fields{
		"action":      n.Action,
		"command_id":  n.CommandID,
		"contract_id": n.ContractID,
	})
	if n.Level == models.NotificationLevelError {
		entry.WithFields(logrus.Fields{"kind": n.ErrorKind, "status": n.Status}).Warn(n.Message)
	} else {
		entry.Info(n.Message)
	}

	s.mu.Lock()
	s.recent = append(s.recent, *n)
	if overflow := len(s.recent) - s.capacity; overflow > 0 {
		s.recent = append([]models.Notification(nil), s.recent[overflow:]...)
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		logrus.WithError(err).WithField("notification_id", n.ID).Error("Failed to persist notification")
	}
}

// List returns notifications newest first.
func (s *NotificationService) List(ctx context.Context, filter NotificationFilter) ([]models.Notification, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	if s.db != nil {
		var notifications []models.Notification
		query := s.db.WithContext(ctx).Model(&models.Notification{})
		if filter.Level != "" {
			query = query.Where("level = ?", filter.Level)
		}
		if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
			return nil, fmt.Errorf("failed to list notifications: %w", err)
		}
		return notifications, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := make([]models.Notification, 0, limit)
	for i := len(s.recent) - 1; i >= 0 && len(notifications) < limit; i-- {
		if filter.Level != "" && s.recent[i].Level != filter.Level {
			continue
		}
		notifications = append(notifications, s.recent[i])
	}
	return notifications, nil
}

// Latest returns the most recent notification, if any.
func (s *NotificationService) Latest() (models.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.recent) == 0 {
		return models.Notification{}, false
	}
	return s.recent[len(s.recent)-1], true
}
