package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestAttendanceRoutesRegistered(t *testing.T) {
	r := mux.NewRouter()
	RegisterRoutes(r)

	recordID := "64a1f2e3d4c5b6a798081920"

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"check in", http.MethodPost, "/api/attendance/checkin"},
		{"check out", http.MethodPost, "/api/attendance/checkout"},
		{"own history", http.MethodGet, "/api/attendance/my-attendance"},
		{"list all", http.MethodGet, "/api/attendance/all"},
		{"single record", http.MethodGet, "/api/attendance/" + recordID},
		{"correct record", http.MethodPut, "/api/attendance/" + recordID},
		{"delete record", http.MethodDelete, "/api/attendance/" + recordID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			var match mux.RouteMatch
			assert.True(t, r.Match(req, &match), "%s %s should resolve to a route", tt.method, tt.path)
			assert.NoError(t, match.MatchErr)
		})
	}
}
