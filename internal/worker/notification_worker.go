package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to vehicle and slot request
// review events. Without an email sender the events are only logged.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	subscribed := notifications.RegisterHandlers()
	names := make([]string, 0, len(subscribed))
	for _, t := range subscribed {
		names = append(names, string(t))
	}
	logger.Info("notification worker started",
		zap.Strings("events", names),
		zap.Bool("email_delivery", notifications.EmailEnabled()))
}
