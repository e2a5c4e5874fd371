package notification_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdispatch/fleetdispatch/internal/events"
	"github.com/fleetdispatch/fleetdispatch/internal/notification"
)

func TestService_NotifyAndList(t *testing.T) {
	svc := notification.NewService(notification.NewInMemoryRepository(), nil, zerolog.Nop())
	ctx := context.Background()

	n, err := svc.Notify(ctx, "usr_1", "New vehicle added: Volvo FH16 (WGM 12345)")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(n.ID, "ntf_"))
	assert.False(t, n.IsRead)

	result, err := svc.ListByUser(ctx, "usr_1", notification.ListOptions{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, n.ID, result.Items[0].ID)

	// Other users see nothing.
	result, err = svc.ListByUser(ctx, "usr_2", notification.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestService_Pagination(t *testing.T) {
	svc := notification.NewService(notification.NewInMemoryRepository(), nil, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.Notify(ctx, "usr_1", "message")
		require.NoError(t, err)
	}

	page1, err := svc.ListByUser(ctx, "usr_1", notification.ListOptions{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page1.Items, 10)
	assert.Equal(t, 12, page1.TotalItems)

	page2, err := svc.ListByUser(ctx, "usr_1", notification.ListOptions{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page2.Items, 2)
}

func TestService_MarkRead(t *testing.T) {
	svc := notification.NewService(notification.NewInMemoryRepository(), nil, zerolog.Nop())
	ctx := context.Background()

	n1, err := svc.Notify(ctx, "usr_1", "first")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, "usr_1", "second")
	require.NoError(t, err)

	unread, err := svc.CountUnread(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, svc.MarkRead(ctx, "usr_1", n1.ID))
	unread, err = svc.CountUnread(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	// A user cannot mark someone else's notification.
	err = svc.MarkRead(ctx, "usr_2", n1.ID)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	require.NoError(t, svc.MarkAllRead(ctx, "usr_1"))
	unread, err = svc.CountUnread(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
}

func TestService_PushesToHub(t *testing.T) {
	hub := notification.NewHub(zerolog.Nop())
	svc := notification.NewService(notification.NewInMemoryRepository(), hub, zerolog.Nop())

	client := notification.NewClient("c1", "usr_1", 8)
	hub.Register(client)
	defer hub.Unregister(client)

	_, err := svc.Notify(context.Background(), "usr_1", "hello")
	require.NoError(t, err)

	select {
	case data := <-client.Send:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "notification", msg["type"])
		assert.Equal(t, "hello", msg["message"])
	default:
		t.Fatal("expected a pushed message")
	}
}

func TestHub_PublishSkipsFullBuffers(t *testing.T) {
	hub := notification.NewHub(zerolog.Nop())

	full := notification.NewClient("c1", "usr_1", 1)
	open := notification.NewClient("c2", "usr_1", 8)
	hub.Register(full)
	hub.Register(open)

	full.Send <- []byte("occupied")

	hub.Publish("usr_1", []byte("msg"))

	assert.Len(t, open.Send, 1)
	assert.Len(t, full.Send, 1) // unchanged, message dropped

	assert.Equal(t, 2, hub.ConnectionCount("usr_1"))
	hub.Unregister(full)
	assert.Equal(t, 1, hub.ConnectionCount("usr_1"))
}

func TestListener_MessageFor(t *testing.T) {
	vehicleEvent := events.NewEvent(events.TypeVehicleCreated, "usr_1")
	vehicleEvent.Vehicle = &events.VehiclePayload{
		VehicleID:    "veh_1",
		LicensePlate: "WGM 12345",
		Model:        "FH16",
		Manufacturer: "Volvo",
	}

	routeEvent := events.NewEvent(events.TypeRouteCompleted, "usr_1")
	routeEvent.Route = &events.RoutePayload{
		RouteID:      "rt_1",
		LicensePlate: "WGM 12345",
		Origin:       "Warsaw",
		Destination:  "Krakow",
		DistanceKm:   295.32,
	}

	tests := []struct {
		name  string
		event events.Event
		want  string
	}{
		{"vehicle created", vehicleEvent, "New vehicle added: Volvo FH16 (WGM 12345)"},
		{"route completed", routeEvent, "Route from Warsaw to Krakow completed (295.32 km)"},
		{"missing payload", events.NewEvent(events.TypeVehicleCreated, "usr_1"), ""},
		{"status update", events.NewEvent(events.TypeRouteUpdated, "usr_1"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notification.MessageFor(tt.event))
		})
	}
}

func TestListener_Handle(t *testing.T) {
	svc := notification.NewService(notification.NewInMemoryRepository(), nil, zerolog.Nop())
	listener := notification.NewListener(svc, zerolog.Nop())

	publisher := events.NewFanoutPublisher(zerolog.Nop())
	publisher.Subscribe(listener.Handle)

	event := events.NewEvent(events.TypeVehicleDeleted, "usr_1")
	event.Vehicle = &events.VehiclePayload{LicensePlate: "WGM 12345"}
	require.NoError(t, publisher.Publish(context.Background(), event))

	result, err := svc.ListByUser(context.Background(), "usr_1", notification.ListOptions{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Vehicle removed: WGM 12345", result.Items[0].Message)
}
