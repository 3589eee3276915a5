package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membershipevents/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingCatalog struct {
	calls  int
	events map[string]*domain.EventSnapshot
	err    error
}

func (c *countingCatalog) GetEvent(ctx context.Context, id string) (*domain.EventSnapshot, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	e, ok := c.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return e, nil
}

type countingDirectory struct {
	calls int
}

func (d *countingDirectory) GetUser(ctx context.Context, id string) (*domain.UserSnapshot, error) {
	d.calls++
	if id == "ghost" {
		return nil, domain.ErrUserNotFound
	}
	return &domain.UserSnapshot{ID: id, Email: id + "@example.org"}, nil
}

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[int]("test", time.Minute, testLogger)

	_, ok := m.Get(ctx, "a")
	assert.False(t, ok)

	m.Set(ctx, "a", 1)
	m.Set(ctx, "b", 2)
	v, ok := m.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, m.Len())

	m.Delete(ctx, "a")
	_, ok = m.Get(ctx, "a")
	assert.False(t, ok)

	m.Flush(ctx)
	assert.Zero(t, m.Len())
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string]("test", 20*time.Millisecond, testLogger)
	m.Set(ctx, "k", "v")

	require.Eventually(t, func() bool {
		_, ok := m.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestCachedEventCatalog(t *testing.T) {
	ctx := context.Background()
	next := &countingCatalog{events: map[string]*domain.EventSnapshot{
		"ev-1": {ID: "ev-1", Title: "AGM", Capacity: domain.Limited(40)},
	}}
	catalog := NewCachedEventCatalog(next, time.Minute, testLogger)

	first, err := catalog.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	first.Title = "mutated by caller"

	second, err := catalog.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "AGM", second.Title, "callers get their own copy")
	assert.Equal(t, domain.Limited(40), second.Capacity)
	assert.Equal(t, 1, next.calls)

	_, err = catalog.GetEvent(ctx, "ev-404")
	require.ErrorIs(t, err, domain.ErrEventNotFound)
	_, err = catalog.GetEvent(ctx, "ev-404")
	require.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.Equal(t, 3, next.calls, "misses are not cached")
}

func TestCachedEventCatalog_Errors(t *testing.T) {
	next := &countingCatalog{err: errors.New("db down")}
	catalog := NewCachedEventCatalog(next, time.Minute, testLogger)

	_, err := catalog.GetEvent(context.Background(), "ev-1")
	require.Error(t, err)
	_, err = catalog.GetEvent(context.Background(), "ev-1")
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedEventCatalog_Disabled(t *testing.T) {
	next := &countingCatalog{}
	assert.Same(t, domain.EventCatalog(next), NewCachedEventCatalog(next, 0, testLogger))
}

func TestCachedUserDirectory(t *testing.T) {
	ctx := context.Background()
	next := &countingDirectory{}
	dir := NewCachedUserDirectory(next, time.Minute, testLogger)

	for range 3 {
		u, err := dir.GetUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1@example.org", u.Email)
	}
	assert.Equal(t, 1, next.calls)

	_, err := dir.GetUser(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCachedEventCatalog_GetEventFresh(t *testing.T) {
	ctx := context.Background()
	next := &countingCatalog{events: map[string]*domain.EventSnapshot{
		"ev-1": {ID: "ev-1", Title: "AGM", RegistrationOpen: true},
	}}
	catalog := NewCachedEventCatalog(next, time.Minute, testLogger).(*eventCatalog)

	_, err := catalog.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	next.events["ev-1"] = &domain.EventSnapshot{ID: "ev-1", Title: "AGM", RegistrationOpen: false}

	cached, err := catalog.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.True(t, cached.RegistrationOpen, "plain reads are served from the cache")

	fresh, err := catalog.GetEventFresh(ctx, "ev-1")
	require.NoError(t, err)
	assert.False(t, fresh.RegistrationOpen)

	refreshed, err := catalog.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.False(t, refreshed.RegistrationOpen, "a fresh read replaces the cached entry")
	assert.Equal(t, 2, next.calls)

	delete(next.events, "ev-1")
	_, err = catalog.GetEventFresh(ctx, "ev-1")
	require.ErrorIs(t, err, domain.ErrEventNotFound)
	_, err = catalog.GetEvent(ctx, "ev-1")
	require.ErrorIs(t, err, domain.ErrEventNotFound, "a deleted event is evicted")
}

func TestCachedCollaborators_Flush(t *testing.T) {
	ctx := context.Background()
	events := &countingCatalog{events: map[string]*domain.EventSnapshot{"ev-1": {ID: "ev-1"}}}
	users := &countingDirectory{}
	catalog := NewCachedEventCatalog(events, time.Minute, testLogger).(*eventCatalog)
	dir := NewCachedUserDirectory(users, time.Minute, testLogger).(*userDirectory)

	_, err := catalog.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	_, err = dir.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.cache.Len())
	assert.Equal(t, 1, dir.cache.Len())

	catalog.Flush(ctx)
	dir.Flush(ctx)
	assert.Zero(t, catalog.cache.Len())
	assert.Zero(t, dir.cache.Len())

	_, err = catalog.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	_, err = dir.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, events.calls)
	assert.Equal(t, 2, users.calls)
}
