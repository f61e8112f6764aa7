package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	notifrepo "coachly-backend/internal/notification/repository"
	"coachly-backend/internal/task/repository"
	"coachly-backend/pkg/fcm"
)

// TaskReminderScheduler sends push reminders for tasks whose reminder time
// has passed.
type TaskReminderScheduler struct {
	taskRepo  repository.TaskRepository
	tokenRepo notifrepo.DeviceTokenRepository
	fcmClient *fcm.Client
	logger    *zap.Logger
	interval  time.Duration
	stopChan  chan struct{}
}

// NewTaskReminderScheduler creates a new scheduler
func NewTaskReminderScheduler(
	taskRepo repository.TaskRepository,
	tokenRepo notifrepo.DeviceTokenRepository,
	fcmClient *fcm.Client,
	logger *zap.Logger,
) *TaskReminderScheduler {
	return &TaskReminderScheduler{
		taskRepo:  taskRepo,
		tokenRepo: tokenRepo,
		fcmClient: fcmClient,
		logger:    logger,
		interval:  1 * time.Minute,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *TaskReminderScheduler) Start() {
	if s.fcmClient == nil {
		s.logger.Info("FCM client not available, reminder scheduler disabled")
		return
	}

	s.logger.Info("starting task reminder scheduler", zap.Duration("interval", s.interval))

	go func() {
		s.checkAndSendReminders()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkAndSendReminders()
			case <-s.stopChan:
				s.logger.Info("reminder scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *TaskReminderScheduler) Stop() {
	close(s.stopChan)
}

func (s *TaskReminderScheduler) checkAndSendReminders() {
	now := time.Now()

	tasks, err := s.taskRepo.FindPendingReminders(now)
	if err != nil {
		s.logger.Error("finding pending reminders", zap.Error(err))
		return
	}
	if len(tasks) == 0 {
		return
	}

	s.logger.Info("tasks with pending reminders", zap.Int("count", len(tasks)))

	for _, task := range tasks {
		tokens, err := s.tokenRepo.GetTokensByUserID(task.UserID)
		if err != nil {
			s.logger.Error("getting device tokens", zap.String("user_id", task.UserID), zap.Error(err))
			continue
		}

		if len(tokens) == 0 {
			// No devices to reach, do not retry every minute.
			s.taskRepo.MarkReminderSent(task.ID)
			continue
		}

		body := task.Description
		if body == "" {
			body = "You have a task coming up"
		}
		body = fmt.Sprintf("%s\nDue: %s", body, task.DateKey())
		if task.DueTime != nil {
			body = fmt.Sprintf("%s %s", body, *task.DueTime)
		}

		var tokenStrings []string
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		notification := fcm.NotificationData{
			Title: "Reminder: " + task.Title,
			Body:  body,
			Data: map[string]string{
				"type":         "task_reminder",
				"task_id":      task.ID,
				"task_type":    string(task.Type),
				"click_action": "/tasks",
			},
		}

		failedTokens, err := s.fcmClient.SendToDevices(context.Background(), tokenStrings, notification)
		if err != nil {
			s.logger.Error("sending reminder", zap.String("task_id", task.ID), zap.Error(err))
		} else {
			s.logger.Info("sent reminder",
				zap.String("task_id", task.ID),
				zap.Int("devices", len(tokenStrings)-len(failedTokens)))
		}

		for _, token := range failedTokens {
			s.tokenRepo.DeleteToken(token)
		}

		// Mark sent even on failure to avoid spamming retries.
		if err := s.taskRepo.MarkReminderSent(task.ID); err != nil {
			s.logger.Error("marking reminder sent", zap.String("task_id", task.ID), zap.Error(err))
		}
	}
}
