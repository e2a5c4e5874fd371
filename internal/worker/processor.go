package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/auth"
	"github.com/fleetdispatch/fleetdispatch/internal/events"
	"github.com/fleetdispatch/fleetdispatch/internal/notification"
	"github.com/fleetdispatch/fleetdispatch/pkg/email"
)

// Processor turns a fleet event into its side effects: a stored
// notification (which the notification service also pushes to connected
// websocket clients) and, when email is enabled, a message to the
// owning user's address.
type Processor struct {
	notifications *notification.Service
	users         auth.UserRepository
	sender        email.Sender
	logger        zerolog.Logger
}

// ProcessorConfig holds the processor dependencies. Sender may be nil
// to disable email delivery.
type ProcessorConfig struct {
	Notifications *notification.Service
	Users         auth.UserRepository
	Sender        email.Sender
	Logger        zerolog.Logger
}

// NewProcessor creates an event processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	sender := cfg.Sender
	if sender == nil {
		sender = email.NopSender{}
	}

	return &Processor{
		notifications: cfg.Notifications,
		users:         cfg.Users,
		sender:        sender,
		logger:        cfg.Logger.With().Str("component", "event_processor").Logger(),
	}
}

// Process handles a single event. Events that render no message are
// dropped silently. Email failures are logged but do not fail the
// event: the stored notification is the source of truth.
func (p *Processor) Process(ctx context.Context, event events.Event) error {
	message := notification.MessageFor(event)
	if message == "" || event.UserID == "" {
		return nil
	}

	if _, err := p.notifications.Notify(ctx, event.UserID, message); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}

	p.sendEmail(ctx, event.UserID, message)
	return nil
}

func (p *Processor) sendEmail(ctx context.Context, userID, message string) {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			p.logger.Warn().Err(err).Str("user_id", userID).Msg("looking up user for email")
		}
		return
	}
	if user.Email == "" {
		return
	}

	subject := "FleetDispatch update"
	html := "<p>" + message + "</p>"
	if err := p.sender.SendEmail(ctx, user.Email, subject, message, html); err != nil {
		p.logger.Warn().Err(err).Str("user_id", userID).Msg("sending notification email")
	}
}
