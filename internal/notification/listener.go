package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/events"
)

// Listener turns fleet domain events into stored notifications for the
// user who owns the affected resource.
type Listener struct {
	service *Service
	logger  zerolog.Logger
}

// NewListener creates an event listener backed by the notification service.
func NewListener(service *Service, logger zerolog.Logger) *Listener {
	return &Listener{
		service: service,
		logger:  logger.With().Str("component", "notification_listener").Logger(),
	}
}

// Handle consumes a single event. It satisfies events.Handler.
func (l *Listener) Handle(ctx context.Context, event events.Event) {
	message := MessageFor(event)
	if message == "" || event.UserID == "" {
		return
	}

	if _, err := l.service.Notify(ctx, event.UserID, message); err != nil {
		l.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("creating notification from event")
	}
}

// MessageFor renders the notification text for an event. An empty string
// means the event produces no notification.
func MessageFor(event events.Event) string {
	switch event.Type {
	case events.TypeVehicleCreated:
		if event.Vehicle == nil {
			return ""
		}
		return fmt.Sprintf("New vehicle added: %s %s (%s)",
			event.Vehicle.Manufacturer, event.Vehicle.Model, event.Vehicle.LicensePlate)

	case events.TypeVehicleDeleted:
		if event.Vehicle == nil {
			return ""
		}
		return fmt.Sprintf("Vehicle removed: %s", event.Vehicle.LicensePlate)

	case events.TypeRouteCreated:
		if event.Route == nil {
			return ""
		}
		return fmt.Sprintf("New route from %s to %s assigned to %s",
			event.Route.Origin, event.Route.Destination, event.Route.LicensePlate)

	case events.TypeRouteCompleted:
		if event.Route == nil {
			return ""
		}
		return fmt.Sprintf("Route from %s to %s completed (%.2f km)",
			event.Route.Origin, event.Route.Destination, event.Route.DistanceKm)

	case events.TypeRouteDeleted:
		if event.Route == nil {
			return ""
		}
		return fmt.Sprintf("Route from %s to %s deleted",
			event.Route.Origin, event.Route.Destination)

	default:
		// Status changes short of completion are visible in the route
		// list already; no notification.
		return ""
	}
}
