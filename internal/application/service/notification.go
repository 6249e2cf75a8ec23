package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/application/port"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
)

// NotificationService sends best-effort mail about terminal outcomes. Every
// dispatch runs on its own goroutine with a bounded timeout; failures are
// logged and never reach the workflow result.
type NotificationService struct {
	sender     port.NotificationSender
	senderName string
	timeout    time.Duration
	logger     Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sender port.NotificationSender, senderName string, timeout time.Duration, logger Logger) *NotificationService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationService{
		sender:     sender,
		senderName: senderName,
		timeout:    timeout,
		logger:     logger,
	}
}

// NotifyRejection informs a participant that their accreditation request was
// rejected and returned to intake.
func (s *NotificationService) NotifyRejection(p *entity.Participant, remarks string) {
	subject := "Accreditation request rejected"
	body := fmt.Sprintf(`Dear %s,

Your accreditation request has been reviewed and could not be approved.

Reason: %s

Your request has been returned to the intake desk. You may correct the
issues above and resubmit through your event focal person.

%s`, p.FullName, remarks, s.signature())

	s.dispatch(p, subject, body)
}

// NotifyArchival informs a participant that their accreditation request was
// closed and archived.
func (s *NotificationService) NotifyArchival(p *entity.Participant, remarks string) {
	subject := "Accreditation request archived"
	body := fmt.Sprintf(`Dear %s,

Your accreditation request has been finalized and archived.

Remarks: %s

No further action is required. Contact your event focal person if you
believe this was done in error.

%s`, p.FullName, remarks, s.signature())

	s.dispatch(p, subject, body)
}

// dispatch fires the send on a goroutine with a bounded timeout
func (s *NotificationService) dispatch(p *entity.Participant, subject, body string) {
	if p.Email == "" {
		s.logger.Info("Skipping notification, participant has no email", "participant_id", p.ID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.sender.Send(ctx, p.Email, subject, body); err != nil {
			s.logger.Error("Failed to send notification",
				"error", err,
				"participant_id", p.ID,
				"to", p.Email,
				"subject", subject,
			)
			return
		}

		s.logger.Info("Notification sent",
			"participant_id", p.ID,
			"to", p.Email,
			"subject", subject,
		)
	}()
}

func (s *NotificationService) signature() string {
	return fmt.Sprintf(`This message was sent automatically by the %s. Please do not reply.`, s.senderName)
}

// Verify interface compliance
var _ Notifier = (*NotificationService)(nil)
