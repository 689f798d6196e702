package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/events"
)

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, toEmail, toName, subject, plainText string) error
}

type sendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridSender returns a SendGrid-backed sender, or nil when no API key is configured.
func NewSendGridSender(cfg config.NotificationConfig) EmailSender {
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
		return nil
	}
	return &sendGridSender{
		client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:     cfg.EmailFrom,
		fromName: cfg.EmailFromName,
	}
}

func (s *sendGridSender) Send(ctx context.Context, toEmail, toName, subject, plainText string) error {
	message := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.from), subject, mail.NewEmail(toName, toEmail), plainText, "")
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

// NotificationService turns review events into log entries and emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     EmailSender
	logger     *zap.Logger
}

// NewNotificationService creates the service. A nil sender only logs.
func NewNotificationService(dispatcher events.Dispatcher, sender EmailSender, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, sender: sender, logger: logger}
}

// reviewEvents are the events a vehicle or request owner is told about.
var reviewEvents = []events.EventType{
	events.EventVehicleApproved,
	events.EventVehicleRejected,
	events.EventSlotRequestApproved,
	events.EventSlotRequestRejected,
	events.EventSlotReleased,
}

// RegisterHandlers subscribes to the review events and returns their types.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	for _, t := range reviewEvents {
		n.dispatcher.Subscribe(t, n.handle)
	}
	return append([]events.EventType(nil), reviewEvents...)
}

// EmailEnabled reports whether notifications are mailed or only logged.
func (n *NotificationService) EmailEnabled() bool {
	return n.sender != nil
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("notification",
		zap.String("event_type", string(event.Type)),
		zap.String("resource_id", event.ResourceID),
		zap.String("recipient", event.Recipient.UserID))

	if n.sender == nil || event.Recipient.Email == "" {
		return nil
	}
	subject, body := composeEmail(event)
	if subject == "" {
		return nil
	}
	if err := n.sender.Send(ctx, event.Recipient.Email, event.Recipient.Name, subject, body); err != nil {
		n.logger.Warn("email delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("to", event.Recipient.Email),
			zap.Error(err))
		return err
	}
	return nil
}

func composeEmail(event events.Event) (string, string) {
	greeting := "Hello"
	if event.Recipient.Name != "" {
		greeting = "Hello " + event.Recipient.Name
	}

	switch p := event.Payload.(type) {
	case events.VehicleReviewedPayload:
		if event.Type == events.EventVehicleRejected {
			return fmt.Sprintf("Vehicle %s was rejected", p.PlateNumber),
				fmt.Sprintf("%s,\n\nYour vehicle %s was rejected.\nReason: %s\n", greeting, p.PlateNumber, p.Reason)
		}
		return fmt.Sprintf("Vehicle %s was approved", p.PlateNumber),
			fmt.Sprintf("%s,\n\nYour vehicle %s was approved. You can now request a parking slot for it.\n", greeting, p.PlateNumber)
	case events.SlotRequestReviewedPayload:
		if event.Type == events.EventSlotRequestRejected {
			return fmt.Sprintf("Parking request for %s was rejected", p.VehiclePlate),
				fmt.Sprintf("%s,\n\nYour parking request for %s (%s to %s) was rejected.\nReason: %s\n",
					greeting, p.VehiclePlate, p.StartDate, p.EndDate, p.Reason)
		}
		return fmt.Sprintf("Parking slot %s assigned", p.SlotNumber),
			fmt.Sprintf("%s,\n\nSlot %s is assigned to %s from %s to %s.\n",
				greeting, p.SlotNumber, p.VehiclePlate, p.StartDate, p.EndDate)
	case events.SlotReleasedPayload:
		return fmt.Sprintf("Parking slot %s released", p.SlotNumber),
			fmt.Sprintf("%s,\n\nYour assignment of slot %s for %s ended on %s and the slot has been released.\n",
				greeting, p.SlotNumber, p.VehiclePlate, p.EndDate)
	}
	return "", ""
}
