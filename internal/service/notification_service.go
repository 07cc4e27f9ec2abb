package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/erms/internal/config"
	"github.com/spec-kit/erms/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAssignmentCreated, n.handleAssignmentChanged)
	n.dispatcher.Subscribe(events.EventAssignmentRemoved, n.handleAssignmentChanged)
	n.dispatcher.Subscribe(events.EventProjectCreated, n.handleProjectChanged)
	n.dispatcher.Subscribe(events.EventProjectUpdated, n.handleProjectChanged)
	n.dispatcher.Subscribe(events.EventProjectDeleted, n.handleProjectChanged)
	n.dispatcher.Subscribe(events.EventEngineerUpdated, n.handleEngineerChanged)
	n.dispatcher.Subscribe(events.EventEngineerDeleted, n.handleEngineerChanged)
}

func (n *NotificationService) handleAssignmentChanged(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("assignment_id", event.SubjectID), zap.String("actor_id", event.Actor.ID)}
	if payload, ok := event.Payload.(events.AssignmentPayload); ok {
		fields = append(fields,
			zap.String("engineer_id", payload.EngineerID),
			zap.String("project_id", payload.ProjectID),
			zap.Int("allocation", payload.AllocationPercentage),
			zap.String("start_date", payload.StartDate),
			zap.String("end_date", payload.EndDate))
	}
	n.logger.Info(string(event.Type), fields...)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProjectChanged(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("project_id", event.SubjectID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.ProjectPayload); ok && payload.OldStatus != "" && payload.OldStatus != payload.Status {
		n.sendWebhookNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleEngineerChanged(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("engineer_id", event.SubjectID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.EngineerUpdatedPayload); ok && payload.OldMaxCapacity != payload.NewMaxCapacity {
		n.sendEmailNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
