package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/clock"
	"roombook/internal/model"
)

func TestGetCredentialValidToken(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	svc := NewCredentialService("http://token", "id", "secret", nil, clock.NewFake(now))

	access := "live-token"
	expiry := now.Add(time.Hour)
	user := &model.User{Email: "a@uni.edu", CalendarAccessToken: &access, CalendarTokenExpiry: &expiry}

	cred, err := svc.GetCredential(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "live-token", cred.AccessToken)
}

func TestGetCredentialUnlinkedUser(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	svc := NewCredentialService("http://token", "id", "secret", nil, clock.NewFake(now))

	_, err := svc.GetCredential(context.Background(), &model.User{Email: "a@uni.edu"})
	assert.Error(t, err)
}

func TestGetCredentialExpiredWithoutRefreshToken(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	svc := NewCredentialService("http://token", "id", "secret", nil, clock.NewFake(now))

	access := "stale-token"
	expiry := now.Add(-time.Minute)
	user := &model.User{Email: "a@uni.edu", CalendarAccessToken: &access, CalendarTokenExpiry: &expiry}

	_, err := svc.GetCredential(context.Background(), user)
	assert.Error(t, err, "an expired token without a refresh token cannot be renewed")
}
