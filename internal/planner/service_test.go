package planner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/fuel"
	"github.com/fleetdispatch/fleetdispatch/internal/geocoding"
	"github.com/fleetdispatch/fleetdispatch/internal/planner"
	"github.com/fleetdispatch/fleetdispatch/internal/route"
	"github.com/fleetdispatch/fleetdispatch/internal/routing"
	"github.com/fleetdispatch/fleetdispatch/internal/vehicle"
)

const testUser = "usr_planner"

type fakeGeocoder struct {
	searchCalls     int
	structuredCalls int
	results         []geocoding.Location
	err             error
	onSearch        func(query string)
}

func (f *fakeGeocoder) Name() string { return "fake" }

func (f *fakeGeocoder) Search(_ context.Context, query string, _ int) ([]geocoding.Location, error) {
	f.searchCalls++
	if f.onSearch != nil {
		f.onSearch(query)
	}
	return f.results, f.err
}

func (f *fakeGeocoder) StructuredSearch(_ context.Context, _ geocoding.StructuredQuery, _ int) ([]geocoding.Location, error) {
	f.structuredCalls++
	return f.results, f.err
}

type fakeRouter struct {
	calls    int
	lastReq  routing.DirectionsRequest
	distance float64
	duration float64
	err      error
}

func (f *fakeRouter) Name() string { return "fake" }

func (f *fakeRouter) GetDirections(_ context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &routing.DirectionsResponse{
		Provider: "fake",
		Routes: []routing.Route{{
			DistanceMeters:  f.distance,
			DurationSeconds: f.duration,
			Geometry:        req.Waypoints,
		}},
	}, nil
}

type countingPlotter struct {
	setCalls  int
	disposed  bool
	waypoints []routing.Coordinate
}

func (p *countingPlotter) SetWaypoints(waypoints []routing.Coordinate) {
	p.setCalls++
	p.waypoints = waypoints
}

func (p *countingPlotter) Dispose() { p.disposed = true }

type fixture struct {
	svc      *planner.Service
	store    *planner.Store
	geocoder *fakeGeocoder
	router   *fakeRouter
	vehicles *vehicle.Service
	routes   *route.Service
	plotters []*countingPlotter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		geocoder: &fakeGeocoder{},
		router:   &fakeRouter{distance: 128400, duration: 5400},
		store:    planner.NewStore(time.Hour),
	}
	t.Cleanup(f.store.Close)

	f.vehicles = vehicle.NewService(vehicle.NewInMemoryRepository(), nil)
	fuelSvc := fuel.NewService(fuel.NewInMemoryRepository())
	f.routes = route.NewService(route.NewInMemoryRepository(), f.vehicles, fuelSvc, nil)

	f.svc = planner.NewService(planner.Config{
		Store:    f.store,
		Geocoder: geocoding.NewService(f.geocoder, nil, geocoding.ServiceConfig{Logger: zerolog.Nop()}),
		Router: routing.NewService(routing.ServiceConfig{
			Provider: f.router,
			Logger:   zerolog.Nop(),
		}),
		Routes: f.routes,
		PlotterFactory: func() planner.Plotter {
			p := &countingPlotter{}
			f.plotters = append(f.plotters, p)
			return p
		},
		Logger: zerolog.Nop(),
	})

	return f
}

func (f *fixture) addVehicle(t *testing.T, plate string) {
	t.Helper()
	_, err := f.vehicles.Create(context.Background(), testUser, &models.VehicleCreateRequest{
		LicensePlate:   plate,
		Model:          "FH16",
		Manufacturer:   "Volvo",
		ProductionYear: 2020,
		FuelCapacity:   600,
	})
	if err != nil {
		t.Fatalf("creating vehicle: %v", err)
	}
}

// resolveSlot picks fixed coordinates into the given slot.
func (f *fixture) resolveSlot(t *testing.T, draftID, slotID, name string, lat, lon float64) *models.Draft {
	t.Helper()
	d, err := f.svc.PickSuggestion(context.Background(), testUser, draftID, slotID, models.SlotPickRequest{
		DisplayName: name,
		Lat:         lat,
		Lon:         lon,
	})
	if err != nil {
		t.Fatalf("picking suggestion: %v", err)
	}
	return d
}

func TestNewDraft_StartsWithTwoEmptySlots(t *testing.T) {
	f := newFixture(t)

	d := f.svc.NewDraft(testUser)

	if len(d.Slots) != 2 {
		t.Fatalf("slots = %d, want 2", len(d.Slots))
	}
	for _, slot := range d.Slots {
		if slot.Query != "" || slot.Point != nil {
			t.Errorf("slot %s not empty: %+v", slot.ID, slot)
		}
	}
	if d.Metrics != nil {
		t.Errorf("new draft has metrics: %+v", d.Metrics)
	}
}

func TestAddAndRemoveSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.svc.NewDraft(testUser)

	d, err := f.svc.AddSlot(testUser, d.ID)
	if err != nil {
		t.Fatalf("adding slot: %v", err)
	}
	if len(d.Slots) != 3 {
		t.Fatalf("slots = %d, want 3", len(d.Slots))
	}

	d, err = f.svc.RemoveSlot(ctx, testUser, d.ID, d.Slots[2].ID)
	if err != nil {
		t.Fatalf("removing slot: %v", err)
	}
	if len(d.Slots) != 2 {
		t.Fatalf("slots = %d, want 2", len(d.Slots))
	}

	// A draft never drops below two slots.
	if _, err := f.svc.RemoveSlot(ctx, testUser, d.ID, d.Slots[0].ID); !errors.Is(err, planner.ErrMinSlots) {
		t.Fatalf("err = %v, want ErrMinSlots", err)
	}
}

func TestUpdateQuery_ShortQueryClearsWithoutLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.geocoder.results = []geocoding.Location{{DisplayName: "Warsaw, Poland", Lat: 52.23, Lon: 21.01}}

	d := f.svc.NewDraft(testUser)
	slotID := d.Slots[0].ID

	d, err := f.svc.UpdateQuery(ctx, testUser, d.ID, slotID, "Warsaw")
	if err != nil {
		t.Fatalf("update query: %v", err)
	}
	if len(d.Suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(d.Suggestions))
	}
	if d.Suggestions[0].SlotID != slotID {
		t.Errorf("suggestion tagged %q, want %q", d.Suggestions[0].SlotID, slotID)
	}

	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"one char", "W"},
		{"two chars", "Wa"},
		{"whitespace padded", "  Wa  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.geocoder.searchCalls
			d, err := f.svc.UpdateQuery(ctx, testUser, d.ID, slotID, tt.query)
			if err != nil {
				t.Fatalf("update query: %v", err)
			}
			if f.geocoder.searchCalls != before {
				t.Error("provider called for short query")
			}
			if len(d.Suggestions) != 0 {
				t.Errorf("suggestions not cleared: %d", len(d.Suggestions))
			}
		})
	}
}

func TestUpdateQuery_StaleResponseDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.svc.NewDraft(testUser)
	draftID, slotID := d.ID, d.Slots[0].ID

	f.geocoder.results = []geocoding.Location{{DisplayName: "Warsaw, Poland", Lat: 52.23, Lon: 21.01}}
	// While the lookup for "Warsaw" is in flight the user keeps typing,
	// shrinking the query below the threshold.
	f.geocoder.onSearch = func(string) {
		f.geocoder.onSearch = nil
		if _, err := f.svc.UpdateQuery(ctx, testUser, draftID, slotID, "Kr"); err != nil {
			t.Fatalf("concurrent update: %v", err)
		}
	}

	d, err := f.svc.UpdateQuery(ctx, testUser, draftID, slotID, "Warsaw")
	if err != nil {
		t.Fatalf("update query: %v", err)
	}

	// The late "Warsaw" results must not resurface.
	if len(d.Suggestions) != 0 {
		t.Fatalf("stale suggestions applied: %+v", d.Suggestions)
	}
	if d.Slots[0].Query != "Kr" {
		t.Errorf("query = %q, want %q", d.Slots[0].Query, "Kr")
	}
}

func TestUpdateQuery_FailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.svc.NewDraft(testUser)
	slotID := d.Slots[0].ID

	f.geocoder.results = []geocoding.Location{{DisplayName: "Warsaw, Poland", Lat: 52.23, Lon: 21.01}}
	if _, err := f.svc.UpdateQuery(ctx, testUser, d.ID, slotID, "Warsaw"); err != nil {
		t.Fatalf("update query: %v", err)
	}

	f.geocoder.err = geocoding.ErrProviderUnavailable
	if _, err := f.svc.UpdateQuery(ctx, testUser, d.ID, slotID, "Warsawa"); err == nil {
		t.Fatal("expected error from failed lookup")
	}

	d, err := f.svc.GetDraft(testUser, d.ID)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if len(d.Suggestions) != 1 {
		t.Fatalf("prior suggestions lost: %d", len(d.Suggestions))
	}
}

func TestUpdateQuery_EmptyResultLeavesSuggestionsUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.svc.NewDraft(testUser)
	slotID := d.Slots[0].ID

	f.geocoder.results = []geocoding.Location{{DisplayName: "Warsaw, Poland", Lat: 52.23, Lon: 21.01}}
	if _, err := f.svc.UpdateQuery(ctx, testUser, d.ID, slotID, "Warsaw"); err != nil {
		t.Fatalf("update query: %v", err)
	}

	// A query that matches nothing is a failed lookup, not a new
	// (empty) suggestion list.
	f.geocoder.results = nil
	if _, err := f.svc.UpdateQuery(ctx, testUser, d.ID, slotID, "Warszzz"); !errors.Is(err, geocoding.ErrNoResults) {
		t.Fatalf("err = %v, want ErrNoResults", err)
	}

	d, err := f.svc.GetDraft(testUser, d.ID)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if len(d.Suggestions) != 1 {
		t.Fatalf("prior suggestions lost: %d", len(d.Suggestions))
	}
	if d.Suggestions[0].DisplayName != "Warsaw, Poland" {
		t.Errorf("suggestion = %q, want the prior one", d.Suggestions[0].DisplayName)
	}
}

func TestPickSuggestion_SingleResolvedRecentersOnly(t *testing.T) {
	f := newFixture(t)

	d := f.svc.NewDraft(testUser)
	d = f.resolveSlot(t, d.ID, d.Slots[0].ID, "Warsaw, Poland", 52.23, 21.01)

	if f.router.calls != 0 {
		t.Fatalf("routing called with one resolved slot: %d calls", f.router.calls)
	}
	if d.Metrics != nil {
		t.Errorf("metrics set with one resolved slot")
	}
	if d.MapCenter == nil || d.MapCenter.Lat != 52.23 || d.MapCenter.Lon != 21.01 {
		t.Errorf("map center = %+v, want the resolved point", d.MapCenter)
	}
}

func TestPickSuggestion_TwoResolvedComputesMetrics(t *testing.T) {
	f := newFixture(t)

	d := f.svc.NewDraft(testUser)
	first, second := d.Slots[0].ID, d.Slots[1].ID

	f.resolveSlot(t, d.ID, first, "Warsaw, Poland", 52.23, 21.01)
	d = f.resolveSlot(t, d.ID, second, "Krakow, Poland", 50.06, 19.94)

	if f.router.calls != 1 {
		t.Fatalf("routing calls = %d, want exactly 1", f.router.calls)
	}
	want := []routing.Coordinate{{Lat: 52.23, Lon: 21.01}, {Lat: 50.06, Lon: 19.94}}
	if len(f.router.lastReq.Waypoints) != 2 {
		t.Fatalf("waypoints = %d, want 2", len(f.router.lastReq.Waypoints))
	}
	for i, wp := range f.router.lastReq.Waypoints {
		if wp != want[i] {
			t.Errorf("waypoint[%d] = %+v, want %+v", i, wp, want[i])
		}
	}

	if d.Metrics == nil {
		t.Fatal("metrics not set")
	}
	if d.Metrics.DistanceKm != 128.40 {
		t.Errorf("distance = %v, want 128.40", d.Metrics.DistanceKm)
	}
	if d.Metrics.DurationSeconds != 5400 {
		t.Errorf("duration = %v, want 5400", d.Metrics.DurationSeconds)
	}

	// Suggestions are cleared on every pick.
	if len(d.Suggestions) != 0 {
		t.Errorf("suggestions not cleared: %d", len(d.Suggestions))
	}
}

func TestPickSuggestion_NeverMutatesOtherSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.svc.NewDraft(testUser)
	first, second := d.Slots[0].ID, d.Slots[1].ID

	f.geocoder.results = []geocoding.Location{{DisplayName: "Krakow, Poland", Lat: 50.06, Lon: 19.94}}
	if _, err := f.svc.UpdateQuery(ctx, testUser, d.ID, second, "Krakow"); err != nil {
		t.Fatalf("update query: %v", err)
	}

	d = f.resolveSlot(t, d.ID, first, "Warsaw, Poland", 52.23, 21.01)

	if d.Slots[1].Query != "Krakow" {
		t.Errorf("other slot query changed: %q", d.Slots[1].Query)
	}
	if d.Slots[1].Point != nil {
		t.Errorf("other slot resolved by pick for different slot")
	}
}

func TestStructuredSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.svc.NewDraft(testUser)
	slotID := d.Slots[0].ID
	query := geocoding.StructuredQuery{Street: "Floriana 3", City: "Gdansk", Country: "Poland"}

	// Empty result: slot untouched, ErrNoResults.
	f.geocoder.results = nil
	if _, err := f.svc.StructuredSearch(ctx, testUser, d.ID, slotID, query); !errors.Is(err, planner.ErrNoResults) {
		t.Fatalf("err = %v, want ErrNoResults", err)
	}
	d, err := f.svc.GetDraft(testUser, d.ID)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if d.Slots[0].Point != nil || d.Slots[0].DisplayName != "" {
		t.Fatalf("slot mutated on empty result: %+v", d.Slots[0])
	}

	// First candidate is applied exactly as a pick.
	f.geocoder.results = []geocoding.Location{
		{DisplayName: "Floriana 3, Gdansk, Poland", Lat: 54.35, Lon: 18.65},
		{DisplayName: "Floriana 3, Gdynia, Poland", Lat: 54.52, Lon: 18.54},
	}
	d, err = f.svc.StructuredSearch(ctx, testUser, d.ID, slotID, query)
	if err != nil {
		t.Fatalf("structured search: %v", err)
	}
	slot := d.Slots[0]
	if slot.DisplayName != "Floriana 3, Gdansk, Poland" {
		t.Errorf("display name = %q", slot.DisplayName)
	}
	if slot.Point == nil || slot.Point.Lat != 54.35 || slot.Point.Lon != 18.65 {
		t.Errorf("point = %+v", slot.Point)
	}
}

func TestRemoveResolvedSlot_Recomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.svc.NewDraft(testUser)
	d, err := f.svc.AddSlot(testUser, d.ID)
	if err != nil {
		t.Fatalf("adding slot: %v", err)
	}

	f.resolveSlot(t, d.ID, d.Slots[0].ID, "Warsaw", 52.23, 21.01)
	f.resolveSlot(t, d.ID, d.Slots[1].ID, "Lodz", 51.76, 19.46)
	f.resolveSlot(t, d.ID, d.Slots[2].ID, "Krakow", 50.06, 19.94)

	callsBefore := f.router.calls
	d, err = f.svc.RemoveSlot(ctx, testUser, d.ID, d.Slots[1].ID)
	if err != nil {
		t.Fatalf("removing slot: %v", err)
	}

	if f.router.calls != callsBefore+1 {
		t.Fatalf("routing calls = %d, want %d", f.router.calls, callsBefore+1)
	}
	if len(f.router.lastReq.Waypoints) != 2 {
		t.Fatalf("recompute waypoints = %d, want 2", len(f.router.lastReq.Waypoints))
	}
	if d.Metrics == nil {
		t.Fatal("metrics cleared by recompute")
	}
}

func TestSelectVehicle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addVehicle(t, "WGM 12345")

	// Seed one stored route for the vehicle.
	_, err := f.routes.Create(ctx, testUser, &models.RouteCreateRequest{
		LicensePlate:     "WGM 12345",
		DistanceKm:       295.32,
		EstimatedTimeSec: 10800,
		Waypoints: []models.Waypoint{
			{Name: "Warsaw", Latitude: 52.23, Longitude: 21.01, Sequence: 1},
			{Name: "Krakow", Latitude: 50.06, Longitude: 19.94, Sequence: 2},
		},
	})
	if err != nil {
		t.Fatalf("seeding route: %v", err)
	}

	d := f.svc.NewDraft(testUser)

	d, err = f.svc.SelectVehicle(ctx, testUser, d.ID, "WGM 12345")
	if err != nil {
		t.Fatalf("select vehicle: %v", err)
	}
	if d.LicensePlate != "WGM 12345" {
		t.Errorf("license plate = %q", d.LicensePlate)
	}
	if len(d.Routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(d.Routes))
	}

	// Clearing the selection empties the route list without a lookup.
	d, err = f.svc.SelectVehicle(ctx, testUser, d.ID, "")
	if err != nil {
		t.Fatalf("clear vehicle: %v", err)
	}
	if d.LicensePlate != "" || len(d.Routes) != 0 {
		t.Errorf("selection not cleared: plate=%q routes=%d", d.LicensePlate, len(d.Routes))
	}

	// Unknown plates propagate the lookup error without mutating.
	if _, err := f.svc.SelectVehicle(ctx, testUser, d.ID, "UNKNOWN"); !errors.Is(err, vehicle.ErrVehicleNotFound) {
		t.Fatalf("err = %v, want ErrVehicleNotFound", err)
	}
}

func TestAttachToVehicle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addVehicle(t, "WGM 12345")

	d := f.svc.NewDraft(testUser)

	// Attaching requires a selected vehicle.
	if _, err := f.svc.AttachToVehicle(ctx, testUser, d.ID); !errors.Is(err, planner.ErrNoVehicleSelected) {
		t.Fatalf("err = %v, want ErrNoVehicleSelected", err)
	}

	d, err := f.svc.SelectVehicle(ctx, testUser, d.ID, "WGM 12345")
	if err != nil {
		t.Fatalf("select vehicle: %v", err)
	}

	// Attaching requires computed metrics.
	if _, err := f.svc.AttachToVehicle(ctx, testUser, d.ID); !errors.Is(err, planner.ErrNoRouteComputed) {
		t.Fatalf("err = %v, want ErrNoRouteComputed", err)
	}

	f.resolveSlot(t, d.ID, d.Slots[0].ID, "Warsaw, Poland", 52.23, 21.01)
	f.resolveSlot(t, d.ID, d.Slots[1].ID, "Krakow, Poland", 50.06, 19.94)

	d, err = f.svc.AttachToVehicle(ctx, testUser, d.ID)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	// The stored route carries the computed metrics and ordered,
	// 1-based waypoints with their display names.
	if len(d.Routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(d.Routes))
	}
	rt := d.Routes[0]
	if rt.DistanceKm != 128.40 {
		t.Errorf("distance = %v, want 128.40", rt.DistanceKm)
	}
	if rt.EstimatedTimeSec != 5400 {
		t.Errorf("estimated time = %v, want 5400", rt.EstimatedTimeSec)
	}
	if len(rt.Waypoints) != 2 {
		t.Fatalf("waypoints = %d, want 2", len(rt.Waypoints))
	}
	if rt.Waypoints[0].Sequence != 1 || rt.Waypoints[1].Sequence != 2 {
		t.Errorf("sequences = %d, %d, want 1, 2", rt.Waypoints[0].Sequence, rt.Waypoints[1].Sequence)
	}
	if rt.Waypoints[0].Name != "Warsaw, Poland" || rt.Waypoints[1].Name != "Krakow, Poland" {
		t.Errorf("names = %q, %q", rt.Waypoints[0].Name, rt.Waypoints[1].Name)
	}
	if rt.Status != models.RouteStatusPlanned {
		t.Errorf("status = %q, want PLANNED", rt.Status)
	}
}

func TestShowRoute_DoesNotTouchSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addVehicle(t, "WGM 12345")

	stored, err := f.routes.Create(ctx, testUser, &models.RouteCreateRequest{
		LicensePlate:     "WGM 12345",
		DistanceKm:       295.32,
		EstimatedTimeSec: 10800,
		Waypoints: []models.Waypoint{
			{Name: "Warsaw", Latitude: 52.23, Longitude: 21.01, Sequence: 1},
			{Name: "Krakow", Latitude: 50.06, Longitude: 19.94, Sequence: 2},
		},
	})
	if err != nil {
		t.Fatalf("seeding route: %v", err)
	}

	d := f.svc.NewDraft(testUser)
	d = f.resolveSlot(t, d.ID, d.Slots[0].ID, "Gdansk, Poland", 54.35, 18.65)
	before := d.Slots[0]

	d, err = f.svc.ShowRoute(ctx, testUser, d.ID, stored.ID)
	if err != nil {
		t.Fatalf("show route: %v", err)
	}

	if *d.Slots[0].Point != *before.Point || d.Slots[0].DisplayName != before.DisplayName {
		t.Errorf("slots mutated by show route")
	}

	if len(f.plotters) != 1 {
		t.Fatalf("plotters constructed = %d, want 1", len(f.plotters))
	}
	plotted := f.plotters[0].waypoints
	if len(plotted) != 2 || plotted[0].Lat != 52.23 || plotted[1].Lat != 50.06 {
		t.Errorf("plotted waypoints = %+v", plotted)
	}
}

func TestPlotter_LazySingletonAndDispose(t *testing.T) {
	f := newFixture(t)

	d := f.svc.NewDraft(testUser)
	if len(f.plotters) != 0 {
		t.Fatalf("plotter constructed before first use")
	}

	f.resolveSlot(t, d.ID, d.Slots[0].ID, "Warsaw", 52.23, 21.01)
	f.resolveSlot(t, d.ID, d.Slots[1].ID, "Krakow", 50.06, 19.94)

	if len(f.plotters) != 1 {
		t.Fatalf("plotters constructed = %d, want 1", len(f.plotters))
	}
	if f.plotters[0].setCalls < 2 {
		t.Errorf("set calls = %d, want at least 2", f.plotters[0].setCalls)
	}

	if err := f.svc.CloseDraft(testUser, d.ID); err != nil {
		t.Fatalf("closing draft: %v", err)
	}
	if !f.plotters[0].disposed {
		t.Error("plotter not disposed on close")
	}

	if _, err := f.svc.GetDraft(testUser, d.ID); !errors.Is(err, planner.ErrDraftNotFound) {
		t.Fatalf("err = %v, want ErrDraftNotFound", err)
	}
}

func TestDrafts_ScopedToOwner(t *testing.T) {
	f := newFixture(t)

	d := f.svc.NewDraft(testUser)

	if _, err := f.svc.GetDraft("usr_other", d.ID); !errors.Is(err, planner.ErrDraftNotFound) {
		t.Fatalf("err = %v, want ErrDraftNotFound for foreign user", err)
	}
}

func TestStore_TTLEvictionDisposesPlotter(t *testing.T) {
	f := newFixture(t)

	store := planner.NewStore(10 * time.Millisecond)
	defer store.Close()

	svc := planner.NewService(planner.Config{
		Store:    store,
		Geocoder: geocoding.NewService(f.geocoder, nil, geocoding.ServiceConfig{Logger: zerolog.Nop()}),
		Router: routing.NewService(routing.ServiceConfig{
			Provider: f.router,
			Logger:   zerolog.Nop(),
		}),
		Routes: f.routes,
		PlotterFactory: func() planner.Plotter {
			p := &countingPlotter{}
			f.plotters = append(f.plotters, p)
			return p
		},
		Logger: zerolog.Nop(),
	})

	d := svc.NewDraft(testUser)

	// Resolving a slot constructs the plotter.
	if _, err := svc.PickSuggestion(context.Background(), testUser, d.ID, d.Slots[0].ID, models.SlotPickRequest{
		DisplayName: "Warsaw", Lat: 52.23, Lon: 21.01,
	}); err != nil {
		t.Fatalf("picking suggestion: %v", err)
	}
	if len(f.plotters) != 1 {
		t.Fatalf("plotters constructed = %d, want 1", len(f.plotters))
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := svc.GetDraft(testUser, d.ID); !errors.Is(err, planner.ErrDraftNotFound) {
		t.Fatalf("err = %v, want ErrDraftNotFound after expiry", err)
	}
	if !f.plotters[0].disposed {
		t.Error("plotter not disposed on eviction")
	}
}
