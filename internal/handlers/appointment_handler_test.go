package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/scheduling"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

type stubAppointmentService struct {
	listResult   []models.Appointment
	getResult    *models.Appointment
	getErr       error
	createResult *models.Appointment
	createErr    error
	updateResult *models.Appointment
	updateErr    error
	deleteErr    error
	lastActorID  int64
	lastID       int64
	lastQuery    services.AppointmentQuery
	lastCreate   services.CreateAppointmentInput
	lastUpdate   services.UpdateAppointmentInput
	calls        int
}

func (s *stubAppointmentService) ListAppointments(_ context.Context, coachID int64, query services.AppointmentQuery) ([]models.Appointment, error) {
	s.calls++
	s.lastActorID = coachID
	s.lastQuery = query
	return s.listResult, nil
}

func (s *stubAppointmentService) ListClientAppointments(_ context.Context, clientID int64, query services.AppointmentQuery) ([]models.Appointment, error) {
	s.calls++
	s.lastActorID = clientID
	s.lastQuery = query
	return s.listResult, nil
}

func (s *stubAppointmentService) GetAppointment(_ context.Context, coachID, id int64) (*models.Appointment, error) {
	s.calls++
	s.lastActorID = coachID
	s.lastID = id
	return s.getResult, s.getErr
}

func (s *stubAppointmentService) CreateAppointment(_ context.Context, coachID int64, input services.CreateAppointmentInput) (*models.Appointment, error) {
	s.calls++
	s.lastActorID = coachID
	s.lastCreate = input
	return s.createResult, s.createErr
}

func (s *stubAppointmentService) UpdateAppointment(_ context.Context, coachID, id int64, input services.UpdateAppointmentInput) (*models.Appointment, error) {
	s.calls++
	s.lastActorID = coachID
	s.lastID = id
	s.lastUpdate = input
	return s.updateResult, s.updateErr
}

func (s *stubAppointmentService) DeleteAppointment(_ context.Context, coachID, id int64) error {
	s.calls++
	s.lastActorID = coachID
	s.lastID = id
	return s.deleteErr
}

const backToBackBody = `{
	"clientId": 2,
	"date": "2024-01-15",
	"startTime": "10:00",
	"endTime": "11:00",
	"type": "Training"
}`

func TestCreateAppointmentReturnsCreated(t *testing.T) {
	service := &stubAppointmentService{
		createResult: &models.Appointment{ID: 11, CoachID: 1, ClientID: 2, Date: "2024-01-15", StartTime: "10:00", EndTime: "11:00", Duration: 60},
	}
	handler := &AppointmentHandler{service: service}

	app := newActorApp(1, models.RoleCoach)
	app.Post("/api/coach/appointments", handler.CreateAppointment)

	resp, body := doRequest(t, app, http.MethodPost, "/api/coach/appointments", backToBackBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if service.lastActorID != 1 || service.lastCreate.ClientID != 2 || service.lastCreate.StartTime != "10:00" {
		t.Fatalf("unexpected service call: actor=%d input=%+v", service.lastActorID, service.lastCreate)
	}
	appointment, ok := body["appointment"].(map[string]any)
	if !ok || appointment["id"] != float64(11) {
		t.Fatalf("expected appointment payload, got %v", body)
	}
}

func TestCreateAppointmentReturnsConflictWithKind(t *testing.T) {
	service := &stubAppointmentService{
		createErr: &services.ConflictError{Kind: scheduling.SlotTimeBlock, ID: 3},
	}
	handler := &AppointmentHandler{service: service}

	app := newActorApp(1, models.RoleCoach)
	app.Post("/api/coach/appointments", handler.CreateAppointment)

	resp, body := doRequest(t, app, http.MethodPost, "/api/coach/appointments", `{
		"clientId": 2,
		"date": "2024-01-15",
		"startTime": "09:30",
		"endTime": "10:30",
		"type": "Training"
	}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if body["error"] != "Time slot conflicts with existing time block" {
		t.Fatalf("unexpected error %v", body["error"])
	}
	if body["conflictsWith"] != string(scheduling.SlotTimeBlock) {
		t.Fatalf("unexpected conflictsWith %v", body["conflictsWith"])
	}
}

func TestCreateAppointmentRejectsInvalidBodyBeforeService(t *testing.T) {
	cases := map[string]string{
		"missing client": `{"date":"2024-01-15","startTime":"10:00","endTime":"11:00","type":"Training"}`,
		"bad date":       `{"clientId":2,"date":"15/01/2024","startTime":"10:00","endTime":"11:00","type":"Training"}`,
		"bad clock":      `{"clientId":2,"date":"2024-01-15","startTime":"10am","endTime":"11:00","type":"Training"}`,
		"bad status":     `{"clientId":2,"date":"2024-01-15","startTime":"10:00","endTime":"11:00","type":"Training","status":"LATE"}`,
		"not json":       `{`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			service := &stubAppointmentService{}
			handler := &AppointmentHandler{service: service}
			app := newActorApp(1, models.RoleCoach)
			app.Post("/api/coach/appointments", handler.CreateAppointment)

			resp, body := doRequest(t, app, http.MethodPost, "/api/coach/appointments", payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%v)", resp.StatusCode, body)
			}
			if service.calls != 0 {
				t.Fatalf("service must not be called on invalid input")
			}
		})
	}
}

func TestAppointmentRoutesRequireCoachRole(t *testing.T) {
	service := &stubAppointmentService{}
	handler := &AppointmentHandler{service: service}

	app := newActorApp(5, models.RoleClient)
	app.Post("/api/coach/appointments", handler.CreateAppointment)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/coach/appointments", backToBackBody)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if service.calls != 0 {
		t.Fatalf("service must not be called for a client")
	}
}

func TestAppointmentRoutesRequireIdentity(t *testing.T) {
	handler := &AppointmentHandler{service: &stubAppointmentService{}}

	app := newActorApp(0, "")
	app.Get("/api/coach/appointments", handler.ListAppointments)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/coach/appointments", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListAppointmentsPassesFilters(t *testing.T) {
	service := &stubAppointmentService{listResult: []models.Appointment{{ID: 1}, {ID: 2}}}
	handler := &AppointmentHandler{service: service}

	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/coach/appointments", handler.ListAppointments)

	resp, body := doRequest(t, app, http.MethodGet, "/api/coach/appointments?date=2024-01-15&status=CONFIRMED", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastQuery.Date != "2024-01-15" || service.lastQuery.Status != "CONFIRMED" {
		t.Fatalf("unexpected query %+v", service.lastQuery)
	}
	if list, ok := body["appointments"].([]any); !ok || len(list) != 2 {
		t.Fatalf("expected two appointments, got %v", body["appointments"])
	}
}

func TestUpdateAppointmentDistinguishesNullNotes(t *testing.T) {
	service := &stubAppointmentService{updateResult: &models.Appointment{ID: 9}}
	handler := &AppointmentHandler{service: service}

	app := newActorApp(1, models.RoleCoach)
	app.Put("/api/coach/appointments/:id", handler.UpdateAppointment)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/coach/appointments/9", `{"notes": null, "status": "CONFIRMED"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastID != 9 || !service.lastUpdate.NotesSet || service.lastUpdate.Notes != nil {
		t.Fatalf("expected explicit null notes for id 9, got id=%d input=%+v", service.lastID, service.lastUpdate)
	}
	if service.lastUpdate.Status == nil || *service.lastUpdate.Status != "CONFIRMED" {
		t.Fatalf("expected status to pass through, got %v", service.lastUpdate.Status)
	}

	resp, _ = doRequest(t, app, http.MethodPut, "/api/coach/appointments/9", `{"type": "Check-in"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUpdate.NotesSet {
		t.Fatalf("absent notes must not be marked as set")
	}
}

func TestGetAppointmentMapsNotFound(t *testing.T) {
	for _, err := range []error{services.ErrNotFound, pgx.ErrNoRows} {
		handler := &AppointmentHandler{service: &stubAppointmentService{getErr: err}}
		app := newActorApp(1, models.RoleCoach)
		app.Get("/api/coach/appointments/:id", handler.GetAppointment)

		resp, body := doRequest(t, app, http.MethodGet, "/api/coach/appointments/404", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for %v, got %d", err, resp.StatusCode)
		}
		if body["error"] != "Appointment not found" {
			t.Fatalf("unexpected body %v", body)
		}
	}
}

func TestDeleteAppointmentRejectsBadID(t *testing.T) {
	service := &stubAppointmentService{}
	handler := &AppointmentHandler{service: service}
	app := newActorApp(1, models.RoleCoach)
	app.Delete("/api/coach/appointments/:id", handler.DeleteAppointment)

	resp, _ := doRequest(t, app, http.MethodDelete, "/api/coach/appointments/abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, body := doRequest(t, app, http.MethodDelete, "/api/coach/appointments/12", "")
	if resp.StatusCode != http.StatusOK || body["message"] != "Appointment deleted successfully" {
		t.Fatalf("unexpected delete response %d %v", resp.StatusCode, body)
	}
}

func TestListClientAppointmentsRequiresClientRole(t *testing.T) {
	service := &stubAppointmentService{listResult: []models.Appointment{}}
	handler := &AppointmentHandler{service: service}

	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/client/appointments", handler.ListClientAppointments)
	resp, _ := doRequest(t, app, http.MethodGet, "/api/client/appointments", "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for coach, got %d", resp.StatusCode)
	}

	app = newActorApp(2, models.RoleClient)
	app.Get("/api/client/appointments", handler.ListClientAppointments)
	resp, _ = doRequest(t, app, http.MethodGet, "/api/client/appointments", "")
	if resp.StatusCode != http.StatusOK || service.lastActorID != 2 {
		t.Fatalf("expected client listing for id 2, got %d / %d", resp.StatusCode, service.lastActorID)
	}
}

func TestUnexpectedErrorsBecomeInternalServerError(t *testing.T) {
	handler := &AppointmentHandler{service: &stubAppointmentService{getErr: context.DeadlineExceeded}}
	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/coach/appointments/:id", handler.GetAppointment)

	resp, body := doRequest(t, app, http.MethodGet, "/api/coach/appointments/1", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body["error"] != "Failed to process appointment request" {
		t.Fatalf("unexpected body %v", body)
	}
}
