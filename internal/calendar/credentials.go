package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roombook/internal/booking"
	"roombook/internal/clock"
	"roombook/internal/model"
	"roombook/internal/repository"
)

// CredentialService hands the booking engine a usable calendar access
// token for a user, running the OAuth2 refresh flow when the stored
// token has expired. Rotated tokens are written back so the refresh
// only happens once per expiry.
type CredentialService struct {
	tokenURL     string
	clientID     string
	clientSecret string
	users        *repository.UserRepo
	clock        clock.Clock
	http         *http.Client
}

var _ booking.CredentialSource = (*CredentialService)(nil)

func NewCredentialService(tokenURL, clientID, clientSecret string, users *repository.UserRepo, clk clock.Clock) *CredentialService {
	return &CredentialService{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		users:        users,
		clock:        clk,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// expirySlack refreshes tokens slightly before their nominal expiry so
// a token never dies mid-request.
const expirySlack = 30 * time.Second

// GetCredential returns the user's current access token, refreshing it
// first when expired or about to expire.
func (s *CredentialService) GetCredential(ctx context.Context, user *model.User) (booking.Credential, error) {
	if user.CalendarAccessToken == nil {
		return booking.Credential{}, fmt.Errorf("calendar: user %s has not linked a calendar account", user.Email)
	}
	now := s.clock.Now()
	if user.CalendarTokenExpiry == nil || user.CalendarTokenExpiry.After(now.Add(expirySlack)) {
		return booking.Credential{AccessToken: *user.CalendarAccessToken}, nil
	}
	return s.refresh(ctx, user)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (s *CredentialService) refresh(ctx context.Context, user *model.User) (booking.Credential, error) {
	if user.CalendarRefreshToken == nil {
		return booking.Credential{}, fmt.Errorf("calendar: access token for %s expired and no refresh token is stored", user.Email)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", *user.CalendarRefreshToken)
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return booking.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return booking.Credential{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return booking.Credential{}, fmt.Errorf("calendar: token refresh returned %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return booking.Credential{}, fmt.Errorf("calendar: decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return booking.Credential{}, fmt.Errorf("calendar: token response missing access_token")
	}

	expiry := s.clock.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	var rotated *string
	if tok.RefreshToken != "" {
		rotated = &tok.RefreshToken
	}
	if err := s.users.UpdateCalendarTokens(ctx, user.ID, tok.AccessToken, rotated, expiry); err != nil {
		// Still hand back the fresh token; the next call just refreshes again.
		return booking.Credential{AccessToken: tok.AccessToken}, nil
	}
	user.CalendarAccessToken = &tok.AccessToken
	user.CalendarTokenExpiry = &expiry
	if rotated != nil {
		user.CalendarRefreshToken = rotated
	}
	return booking.Credential{AccessToken: tok.AccessToken}, nil
}
