package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestPresenceHeartbeatAndExpiry(t *testing.T) {
	users := newFakeUserRepo()
	store := newFakePresence()
	u := users.add(domain.User{Name: "Sam", Email: "sam@example.com", Level: domain.LevelStudent})
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	svc := NewPresenceService(store, users, 30*time.Second, zap.NewNop()).(*presenceService)
	svc.now = fixedClock(now)
	ctx := context.Background()

	require.NoError(t, svc.Heartbeat(ctx, u.ID))
	assert.Equal(t, 30*time.Second, store.online[u.ID.Hex()])

	status, err := svc.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, status.Online)
	require.NotNil(t, status.LastSeen)
	assert.Equal(t, now, *status.LastSeen)

	store.expire(u.ID.Hex())
	status, err = svc.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, status.Online, "a lapsed key means offline")
	assert.NotNil(t, status.LastSeen)
}

func TestPresenceOffline(t *testing.T) {
	users := newFakeUserRepo()
	store := newFakePresence()
	u := users.add(domain.User{Name: "Sam", Email: "sam@example.com", Level: domain.LevelStudent})
	svc := NewPresenceService(store, users, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Heartbeat(ctx, u.ID))
	require.NoError(t, svc.Offline(ctx, u.ID))

	status, err := svc.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, status.Online)
	assert.False(t, users.get(u.ID).IsOnline)
}

func TestPresenceUnknownUser(t *testing.T) {
	svc := NewPresenceService(newFakePresence(), newFakeUserRepo(), time.Minute, zap.NewNop())
	_, err := svc.Status(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
