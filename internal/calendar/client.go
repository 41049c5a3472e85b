// Package calendar talks to the institutional calendar's REST API. The
// booking engine treats every call here as best-effort, so the client
// only has to be honest about failures, not resilient to them.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roombook/internal/booking"
)

// Client is an HTTP client for the calendar events API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ booking.Calendar = (*Client)(nil)

// NewClient builds a client for the API rooted at baseURL. A short
// timeout keeps a slow calendar backend from stalling booking traffic.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type eventPayload struct {
	Summary  string    `json:"summary"`
	Location string    `json:"location"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type eventResponse struct {
	ID string `json:"id"`
}

// CreateEvent posts the event and returns the identifier the calendar
// assigned to it.
func (c *Client) CreateEvent(ctx context.Context, ev booking.CalendarEvent, accessToken string) (string, error) {
	body, err := json.Marshal(eventPayload{
		Summary:  ev.Summary,
		Location: ev.Location,
		Start:    ev.Start,
		End:      ev.End,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("calendar: create event returned %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
	var out eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("calendar: decode create response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("calendar: create response missing event id")
	}
	return out.ID, nil
}

// DeleteEvent removes an event. A 404 or 410 means the event is
// already gone, which is exactly the state we want.
func (c *Client) DeleteEvent(ctx context.Context, eventID, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/events/"+eventID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusGone:
		return nil
	default:
		return fmt.Errorf("calendar: delete event returned %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
