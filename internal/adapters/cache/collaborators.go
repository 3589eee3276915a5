package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"membershipevents/internal/domain"
)

type eventCatalog struct {
	next  domain.EventCatalog
	cache *Memory[domain.EventSnapshot]
}

// NewCachedEventCatalog caches event snapshots for ttl. A ttl of zero disables caching.
// The returned catalog also implements GetEventFresh and Flush. Registration
// reads through GetEventFresh, so a cached snapshot only ever answers
// cancellations and listings, which depend on capacity and title alone.
func NewCachedEventCatalog(next domain.EventCatalog, ttl time.Duration, logger *slog.Logger) domain.EventCatalog {
	if ttl <= 0 {
		return next
	}
	return &eventCatalog{next: next, cache: NewMemory[domain.EventSnapshot]("events", ttl, logger)}
}

func (c *eventCatalog) GetEvent(ctx context.Context, id string) (*domain.EventSnapshot, error) {
	e, err := readThrough(ctx, c.cache, id, func(ctx context.Context, id string) (domain.EventSnapshot, error) {
		e, err := c.next.GetEvent(ctx, id)
		if err != nil {
			return domain.EventSnapshot{}, err
		}
		return *e, nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEventFresh reads the event from the underlying catalog and replaces the
// cached entry with the result. A deleted event is evicted.
func (c *eventCatalog) GetEventFresh(ctx context.Context, id string) (*domain.EventSnapshot, error) {
	e, err := c.next.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.cache.Delete(ctx, id)
		}
		return nil, err
	}
	c.cache.Set(ctx, id, *e)
	fresh := *e
	return &fresh, nil
}

// Flush drops every cached event.
func (c *eventCatalog) Flush(ctx context.Context) {
	c.cache.Flush(ctx)
}

type userDirectory struct {
	next  domain.UserDirectory
	cache *Memory[domain.UserSnapshot]
}

// NewCachedUserDirectory caches user snapshots for ttl. A ttl of zero disables caching.
func NewCachedUserDirectory(next domain.UserDirectory, ttl time.Duration, logger *slog.Logger) domain.UserDirectory {
	if ttl <= 0 {
		return next
	}
	return &userDirectory{next: next, cache: NewMemory[domain.UserSnapshot]("users", ttl, logger)}
}

func (d *userDirectory) GetUser(ctx context.Context, id string) (*domain.UserSnapshot, error) {
	u, err := readThrough(ctx, d.cache, id, func(ctx context.Context, id string) (domain.UserSnapshot, error) {
		u, err := d.next.GetUser(ctx, id)
		if err != nil {
			return domain.UserSnapshot{}, err
		}
		return *u, nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Flush drops every cached user.
func (d *userDirectory) Flush(ctx context.Context) {
	d.cache.Flush(ctx)
}
