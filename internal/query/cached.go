package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"lostfound/internal/model"
)

// DefaultFreshness is how long a cached read stays fresh. Within the
// window, repeated reads with the same parameters are served from cache;
// no proactive refetching happens.
const DefaultFreshness = 30 * time.Second

// Cached decorates a Service with read-through caching. Reads are keyed by
// operation plus filter parameters; each successful mutation invalidates
// the collections it could affect, strictly after the mutation response,
// so the next read observes either pre- or post-mutation state. The cache
// is the only shared mutable structure in the client session and is only
// touched through these methods.
type Cached struct {
	svc Service

	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	value   any
	expires time.Time
}

// NewCached wraps svc with the default freshness window.
func NewCached(svc Service) *Cached {
	return &Cached{
		svc:     svc,
		entries: make(map[string]entry),
		ttl:     DefaultFreshness,
		now:     time.Now,
	}
}

// cacheKey builds an operation+parameters key. Keys are prefix-matched on
// invalidation, so every key ends in a separator.
func cacheKey(op string, params any) string {
	data, _ := json.Marshal(params)
	return op + "|" + string(data)
}

func (c *Cached) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cached) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expires: c.now().Add(c.ttl)}
}

func (c *Cached) invalidate(prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		for _, prefix := range prefixes {
			if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
				delete(c.entries, key)
				break
			}
		}
	}
}

// ListItems is a cached read keyed by the full filter, so the general
// list, the flagged list, and per-reporter lists each cache separately.
func (c *Cached) ListItems(ctx context.Context, f model.ItemFilter) (model.ItemPage, error) {
	key := cacheKey("items", f)
	if v, ok := c.lookup(key); ok {
		return v.(model.ItemPage), nil
	}
	page, err := c.svc.ListItems(ctx, f)
	if err != nil {
		return page, err
	}
	// A degraded page stands in for a failed read; caching it would pin
	// an empty listing for the whole freshness window after recovery.
	if !page.Degraded {
		c.store(key, page)
	}
	return page, nil
}

// GetItem is a cached read keyed by the item identifier.
func (c *Cached) GetItem(ctx context.Context, id string) (*model.Item, error) {
	key := cacheKey("item", id)
	if v, ok := c.lookup(key); ok {
		return v.(*model.Item), nil
	}
	item, err := c.svc.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(key, item)
	return item, nil
}

// ListUsers is a cached read.
func (c *Cached) ListUsers(ctx context.Context) ([]model.User, error) {
	key := cacheKey("users", nil)
	if v, ok := c.lookup(key); ok {
		return v.([]model.User), nil
	}
	users, err := c.svc.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	c.store(key, users)
	return users, nil
}

// CreateItem invalidates item listings on success.
func (c *Cached) CreateItem(ctx context.Context, draft model.ItemDraft) (*model.Item, error) {
	item, err := c.svc.CreateItem(ctx, draft)
	if err != nil {
		return nil, err
	}
	c.invalidate("items|")
	return item, nil
}

// UpdateItem invalidates listings and the touched detail on success.
func (c *Cached) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error) {
	item, err := c.svc.UpdateItem(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate("items|", cacheKey("item", id))
	return item, nil
}

// UpdateStatus invalidates listings and the touched detail on success.
func (c *Cached) UpdateStatus(ctx context.Context, id, status string) (*model.Item, error) {
	item, err := c.svc.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	c.invalidate("items|", cacheKey("item", id))
	return item, nil
}

// FlagItem invalidates listings (including the flagged list) and the detail.
func (c *Cached) FlagItem(ctx context.Context, id, reason string) (*model.Item, error) {
	item, err := c.svc.FlagItem(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	c.invalidate("items|", cacheKey("item", id))
	return item, nil
}

// ApproveItem invalidates listings and the detail.
func (c *Cached) ApproveItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := c.svc.ApproveItem(ctx, id)
	if err != nil {
		return nil, err
	}
	c.invalidate("items|", cacheKey("item", id))
	return item, nil
}

// RejectItem invalidates listings and the detail on success.
func (c *Cached) RejectItem(ctx context.Context, id string) error {
	if err := c.svc.RejectItem(ctx, id); err != nil {
		return err
	}
	c.invalidate("items|", cacheKey("item", id))
	return nil
}

// DeleteItem invalidates listings and the detail on success.
func (c *Cached) DeleteItem(ctx context.Context, id string) error {
	if err := c.svc.DeleteItem(ctx, id); err != nil {
		return err
	}
	c.invalidate("items|", cacheKey("item", id))
	return nil
}

// Login is never cached.
func (c *Cached) Login(ctx context.Context, email, password string) (*model.Session, error) {
	return c.svc.Login(ctx, email, password)
}

// Register invalidates the user listing on success.
func (c *Cached) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	user, err := c.svc.Register(ctx, email, name, password)
	if err != nil {
		return nil, err
	}
	c.invalidate("users|")
	return user, nil
}
