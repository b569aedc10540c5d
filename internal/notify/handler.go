package notify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/sirupsen/logrus"
)

// EventHandler mails students the outcome of a review. Other event types are
// acknowledged without action.
type EventHandler struct {
	mailer Mailer
	log    logrus.FieldLogger
}

func NewEventHandler(mailer Mailer, log logrus.FieldLogger) *EventHandler {
	return &EventHandler{mailer: mailer, log: log}
}

func (h *EventHandler) HandleMessage(ctx context.Context, key, value []byte) error {
	var event dto.ApplicationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.log.WithField("payload", string(value)).Warn("invalid event payload")
		return err
	}

	entry := h.log.WithFields(logrus.Fields{
		"event_id":       event.EventID,
		"type":           event.Type,
		"application_id": event.ApplicationID,
	})

	var subject string
	switch event.Type {
	case dto.EventApplicationAccepted:
		subject = "Your application was accepted"
	case dto.EventApplicationRejected:
		subject = "Update on your application"
	default:
		entry.Debug("event ignored")
		return nil
	}

	to := strings.TrimSpace(event.StudentContact)
	if !strings.Contains(to, "@") {
		entry.Info("student has no email contact - skip")
		return nil
	}

	name := event.StudentName
	if name == "" {
		name = "there"
	}
	body, err := renderDecision(name, event.ApplicationID, event.Type == dto.EventApplicationAccepted)
	if err != nil {
		return err
	}

	if err := h.mailer.Send(to, subject, body); err != nil {
		return err
	}
	entry.Info("decision mail sent")
	return nil
}
