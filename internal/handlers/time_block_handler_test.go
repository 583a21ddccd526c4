package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/scheduling"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

type stubTimeBlockService struct {
	listResult   []models.TimeBlock
	createResult *models.TimeBlock
	createErr    error
	updateResult *models.TimeBlock
	updateErr    error
	deleteErr    error
	lastActorID  int64
	lastID       int64
	lastQuery    services.TimeBlockQuery
	lastCreate   services.CreateTimeBlockInput
	lastUpdate   services.UpdateTimeBlockInput
}

func (s *stubTimeBlockService) ListTimeBlocks(_ context.Context, coachID int64, query services.TimeBlockQuery) ([]models.TimeBlock, error) {
	s.lastActorID = coachID
	s.lastQuery = query
	return s.listResult, nil
}

func (s *stubTimeBlockService) GetTimeBlock(_ context.Context, coachID, id int64) (*models.TimeBlock, error) {
	s.lastActorID = coachID
	s.lastID = id
	return nil, services.ErrNotFound
}

func (s *stubTimeBlockService) CreateTimeBlock(_ context.Context, coachID int64, input services.CreateTimeBlockInput) (*models.TimeBlock, error) {
	s.lastActorID = coachID
	s.lastCreate = input
	return s.createResult, s.createErr
}

func (s *stubTimeBlockService) UpdateTimeBlock(_ context.Context, coachID, id int64, input services.UpdateTimeBlockInput) (*models.TimeBlock, error) {
	s.lastActorID = coachID
	s.lastID = id
	s.lastUpdate = input
	return s.updateResult, s.updateErr
}

func (s *stubTimeBlockService) DeleteTimeBlock(_ context.Context, coachID, id int64) error {
	s.lastActorID = coachID
	s.lastID = id
	return s.deleteErr
}

func TestCreateTimeBlockReturnsCreated(t *testing.T) {
	service := &stubTimeBlockService{createResult: &models.TimeBlock{ID: 4, Title: "Gym maintenance"}}
	handler := &TimeBlockHandler{service: service}

	app := newActorApp(1, models.RoleCoach)
	app.Post("/api/coach/time-blocks", handler.CreateTimeBlock)

	resp, body := doRequest(t, app, http.MethodPost, "/api/coach/time-blocks", `{
		"date": "2024-01-15",
		"startTime": "09:00",
		"endTime": "10:00",
		"type": "UNAVAILABLE",
		"title": "Gym maintenance"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if _, ok := body["timeBlock"].(map[string]any); !ok {
		t.Fatalf("expected timeBlock payload, got %v", body)
	}
	if service.lastCreate.Type != models.TimeBlockUnavailable || service.lastCreate.StartTime != "09:00" {
		t.Fatalf("unexpected input %+v", service.lastCreate)
	}
}

func TestCreateTimeBlockRejectsUnknownType(t *testing.T) {
	handler := &TimeBlockHandler{service: &stubTimeBlockService{}}
	app := newActorApp(1, models.RoleCoach)
	app.Post("/api/coach/time-blocks", handler.CreateTimeBlock)

	resp, body := doRequest(t, app, http.MethodPost, "/api/coach/time-blocks", `{
		"date": "2024-01-15",
		"startTime": "09:00",
		"endTime": "10:00",
		"type": "HOLIDAY",
		"title": "Off"
	}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["error"] != "type must be one of AVAILABLE, UNAVAILABLE, BREAK" {
		t.Fatalf("unexpected error %v", body["error"])
	}
}

func TestUpdateTimeBlockConflictNamesAppointment(t *testing.T) {
	service := &stubTimeBlockService{updateErr: &services.ConflictError{Kind: scheduling.SlotAppointment, ID: 2}}
	handler := &TimeBlockHandler{service: service}
	app := newActorApp(1, models.RoleCoach)
	app.Put("/api/coach/time-blocks/:id", handler.UpdateTimeBlock)

	resp, body := doRequest(t, app, http.MethodPut, "/api/coach/time-blocks/4", `{"endTime":"11:00","description":null}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if body["conflictsWith"] != string(scheduling.SlotAppointment) {
		t.Fatalf("unexpected conflictsWith %v", body["conflictsWith"])
	}
	if service.lastID != 4 || !service.lastUpdate.DescriptionSet || service.lastUpdate.Description != nil {
		t.Fatalf("unexpected update input id=%d %+v", service.lastID, service.lastUpdate)
	}
}

func TestGetTimeBlockNotFoundMessage(t *testing.T) {
	handler := &TimeBlockHandler{service: &stubTimeBlockService{}}
	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/coach/time-blocks/:id", handler.GetTimeBlock)

	resp, body := doRequest(t, app, http.MethodGet, "/api/coach/time-blocks/77", "")
	if resp.StatusCode != http.StatusNotFound || body["error"] != "Time block not found" {
		t.Fatalf("unexpected response %d %v", resp.StatusCode, body)
	}
}

func TestListTimeBlocksPassesTypeFilter(t *testing.T) {
	service := &stubTimeBlockService{listResult: []models.TimeBlock{}}
	handler := &TimeBlockHandler{service: service}
	app := newActorApp(1, models.RoleCoach)
	app.Get("/api/coach/time-blocks", handler.ListTimeBlocks)

	resp, body := doRequest(t, app, http.MethodGet, "/api/coach/time-blocks?from=2024-01-01&to=2024-01-31&type=BREAK", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastQuery.From != "2024-01-01" || service.lastQuery.To != "2024-01-31" || service.lastQuery.Type != "BREAK" {
		t.Fatalf("unexpected query %+v", service.lastQuery)
	}
	if list, ok := body["timeBlocks"].([]any); !ok || len(list) != 0 {
		t.Fatalf("expected empty timeBlocks array, got %v", body["timeBlocks"])
	}
}
