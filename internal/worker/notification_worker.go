package worker

import (
	"github.com/spec-kit/erms/internal/service"
)

// StartNotificationWorker subscribes the notification service to ledger and registry events.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
