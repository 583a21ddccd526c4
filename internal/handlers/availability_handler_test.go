package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/scheduling"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

type stubAvailabilityService struct {
	checkResult *services.AvailabilityResult
	checkErr    error
	dayResult   *services.DaySchedule
	lastQuery   services.AvailabilityQuery
	lastDate    string
	lastWindow  scheduling.Interval
	calls       int
}

func (s *stubAvailabilityService) CheckAvailability(_ context.Context, _ int64, query services.AvailabilityQuery) (*services.AvailabilityResult, error) {
	s.calls++
	s.lastQuery = query
	return s.checkResult, s.checkErr
}

func (s *stubAvailabilityService) DayAvailability(_ context.Context, _ int64, date string, window scheduling.Interval) (*services.DaySchedule, error) {
	s.calls++
	s.lastDate = date
	s.lastWindow = window
	return s.dayResult, nil
}

func TestCheckAvailabilityReportsConflictKind(t *testing.T) {
	service := &stubAvailabilityService{
		checkResult: &services.AvailabilityResult{
			Available: false,
			Conflict:  &services.ConflictError{Kind: scheduling.SlotTimeBlock, ID: 1},
		},
	}
	handler := &AvailabilityHandler{service: service}
	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/coach/availability/check", handler.CheckAvailability)

	resp, body := doRequest(t, app, http.MethodGet, "/api/coach/availability/check?date=2024-01-15&startTime=09:30&endTime=10:30&excludeAppointmentId=5", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["available"] != false || body["conflict"] != string(scheduling.SlotTimeBlock) {
		t.Fatalf("unexpected body %v", body)
	}
	want := scheduling.Exclusion{Kind: scheduling.SlotAppointment, ID: 5}
	if service.lastQuery.Exclude != want || service.lastQuery.StartTime != "09:30" {
		t.Fatalf("unexpected query %+v", service.lastQuery)
	}
}

func TestCheckAvailabilityFreeSlotHasNullConflict(t *testing.T) {
	service := &stubAvailabilityService{checkResult: &services.AvailabilityResult{Available: true}}
	handler := &AvailabilityHandler{service: service}
	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/coach/availability/check", handler.CheckAvailability)

	resp, body := doRequest(t, app, http.MethodGet, "/api/coach/availability/check?date=2024-01-15&startTime=10:00&endTime=11:00", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	conflict, present := body["conflict"]
	if body["available"] != true || !present || conflict != nil {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCheckAvailabilityRejectsTwoExclusions(t *testing.T) {
	service := &stubAvailabilityService{}
	handler := &AvailabilityHandler{service: service}
	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/coach/availability/check", handler.CheckAvailability)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/coach/availability/check?date=2024-01-15&startTime=10:00&endTime=11:00&excludeAppointmentId=1&excludeTimeBlockId=2", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.calls != 0 {
		t.Fatalf("service must not be called")
	}
}

func TestDayAvailabilityListsFreeWindows(t *testing.T) {
	service := &stubAvailabilityService{
		dayResult: &services.DaySchedule{
			Date:         "2024-01-15",
			Appointments: []models.Appointment{},
			TimeBlocks:   []models.TimeBlock{},
			Free:         []scheduling.Interval{{Start: 8 * 60, End: 9 * 60}, {Start: 10 * 60, End: 12 * 60}},
		},
	}
	handler := &AvailabilityHandler{service: service}
	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/coach/availability", handler.DayAvailability)

	resp, body := doRequest(t, app, http.MethodGet, "/api/coach/availability?date=2024-01-15&from=08:00&to=12:00", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastWindow != (scheduling.Interval{Start: 480, End: 720}) {
		t.Fatalf("unexpected window %v", service.lastWindow)
	}
	free, ok := body["free"].([]any)
	if !ok || len(free) != 2 {
		t.Fatalf("expected two free windows, got %v", body["free"])
	}
	second := free[1].(map[string]any)
	if second["startTime"] != "10:00" || second["endTime"] != "12:00" || second["minutes"] != float64(120) {
		t.Fatalf("unexpected window %v", second)
	}

	resp, _ = doRequest(t, app, http.MethodGet, "/api/coach/availability?date=2024-01-15&from=08:00", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for half window, got %d", resp.StatusCode)
	}
}
