package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/booking"
)

func TestCreateEvent(t *testing.T) {
	var gotAuth string
	var gotBody eventPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/events", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(eventResponse{ID: "evt-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	id, err := c.CreateEvent(context.Background(), booking.CalendarEvent{
		Summary:  "Reserva de sala: Sala A",
		Location: "Sala A",
		Start:    start,
		End:      start.Add(time.Hour),
	}, "tok")
	require.NoError(t, err)
	assert.Equal(t, "evt-42", id)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Sala A", gotBody.Location)
	assert.True(t, gotBody.Start.Equal(start))
}

func TestCreateEventServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateEvent(context.Background(), booking.CalendarEvent{}, "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCreateEventMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(eventResponse{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateEvent(context.Background(), booking.CalendarEvent{}, "tok")
	assert.Error(t, err)
}

func TestDeleteEvent(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"no content", http.StatusNoContent, false},
		{"already gone 404", http.StatusNotFound, false},
		{"already gone 410", http.StatusGone, false},
		{"server error", http.StatusInternalServerError, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodDelete, r.Method)
				require.Equal(t, "/events/evt-42", r.URL.Path)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL).DeleteEvent(context.Background(), "evt-42", "tok")
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
