package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/erms/internal/config"
	"github.com/spec-kit/erms/internal/events"
)

func TestNotificationServiceLogsLedgerEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "https://hooks.example.com/erms",
	})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventAssignmentCreated,
		SubjectID: "asg-1",
		Payload: events.AssignmentPayload{
			EngineerID:           "eng-1",
			ProjectID:            "prj-1",
			AllocationPercentage: 40,
			StartDate:            "2024-03-01",
			EndDate:              "2024-03-31",
		},
	})
	require.NoError(t, err)

	created := logs.FilterMessage(string(events.EventAssignmentCreated)).All()
	require.Len(t, created, 1)
	assert.Equal(t, "eng-1", created[0].ContextMap()["engineer_id"])
	assert.Equal(t, int64(40), created[0].ContextMap()["allocation"])
	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationServiceSkipsUnconfiguredSinks(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{})
	svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventProjectUpdated,
		SubjectID: "prj-1",
		Payload:   events.ProjectPayload{Name: "Payments", Status: "active", OldStatus: "planning"},
	}))

	assert.Equal(t, 1, logs.FilterMessage(string(events.EventProjectUpdated)).Len())
	assert.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}
