package handlers

import (
	"encoding/json"
	"testing"
)

func TestValidateRequestUsesJSONFieldNames(t *testing.T) {
	cases := []struct {
		name string
		req  any
		want string
	}{
		{
			name: "required",
			req:  &createTimeBlockRequest{StartTime: "09:00", EndTime: "10:00", Type: "BREAK", Title: "x"},
			want: "date is required",
		},
		{
			name: "isodate",
			req:  &createTimeBlockRequest{Date: "2024-1-5", StartTime: "09:00", EndTime: "10:00", Type: "BREAK", Title: "x"},
			want: "date must use YYYY-MM-DD",
		},
		{
			name: "clock",
			req:  &createTimeBlockRequest{Date: "2024-01-05", StartTime: "25:00", EndTime: "10:00", Type: "BREAK", Title: "x"},
			want: "startTime must use HH:MM",
		},
		{
			name: "gt",
			req:  &createAppointmentRequest{ClientID: -1, Date: "2024-01-05", StartTime: "09:00", EndTime: "10:00", Type: "x"},
			want: "clientId must be greater than 0",
		},
		{
			name: "valid",
			req:  &createTimeBlockRequest{Date: "2024-01-05", StartTime: "09:00", EndTime: "10:00", Type: "BREAK", Title: "x"},
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validateRequest(tc.req); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNullableStringTracksPresence(t *testing.T) {
	var req updateAppointmentRequest
	if err := json.Unmarshal([]byte(`{"notes":"hello"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.Notes.Set || req.Notes.Value == nil || *req.Notes.Value != "hello" {
		t.Fatalf("unexpected value %+v", req.Notes)
	}

	req = updateAppointmentRequest{}
	if err := json.Unmarshal([]byte(`{"notes":null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.Notes.Set || req.Notes.Value != nil {
		t.Fatalf("expected explicit null, got %+v", req.Notes)
	}

	req = updateAppointmentRequest{}
	if err := json.Unmarshal([]byte(`{}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Notes.Set {
		t.Fatalf("absent field must not be set")
	}

	if err := json.Unmarshal([]byte(`{"notes":5}`), &req); err == nil {
		t.Fatalf("expected error for non-string notes")
	}
}

func TestBuildPaginationMeta(t *testing.T) {
	meta := buildPaginationMeta(2, 10, 21)
	if meta.TotalPages != 3 || meta.Page != 2 || meta.Total != 21 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if empty := buildPaginationMeta(1, 10, 0); empty.TotalPages != 0 {
		t.Fatalf("expected zero pages for empty list, got %d", empty.TotalPages)
	}
}
