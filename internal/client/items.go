package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"lostfound/internal/adapt"
	"lostfound/internal/model"
	"lostfound/internal/query"
)

// ListItems returns one page of items matching the filter. Any failure,
// transport or server, degrades to an empty page so listing views keep
// rendering; the error is logged, not surfaced.
func (c *Client) ListItems(ctx context.Context, f model.ItemFilter) (model.ItemPage, error) {
	params := url.Values{}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Query != "" {
		params.Set("query", f.Query)
	}
	if f.Flagged != nil {
		params.Set("is_flagged", strconv.FormatBool(*f.Flagged))
	}
	if f.ReporterID != "" {
		params.Set("reporter_id", f.ReporterID)
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(f.PageSize))
	}
	if f.Sort != "" {
		params.Set("sort", f.Sort)
	}

	data, err := c.do(ctx, http.MethodGet, "/items", params, nil)
	if err != nil {
		slog.Warn("item listing failed, degrading to empty result", "error", err)
		return model.ItemPage{Items: []model.Item{}, Page: max(f.Page, 1), Degraded: true}, nil
	}
	return adapt.Page(data), nil
}

// GetItem fetches one item. A malformed identifier fails before any
// network I/O; a missing item maps to ErrNotFound.
func (c *Client) GetItem(ctx context.Context, id string) (*model.Item, error) {
	if !model.ValidID(id) {
		return nil, query.ErrInvalidID
	}
	data, err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	item := adapt.ItemBytes(data)
	return &item, nil
}

// CreateItem reports a new item. A missing or malformed reporter id is
// repaired with a known user id from the user listing, keeping demo data
// coherent; this is convenience plumbing, not access control.
func (c *Client) CreateItem(ctx context.Context, draft model.ItemDraft) (*model.Item, error) {
	if !model.ValidID(draft.ReporterID) {
		users, err := c.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, fmt.Errorf("no reporter account available")
		}
		draft.ReporterID = users[0].ID
	}

	data, err := c.do(ctx, http.MethodPost, "/items", nil, draft)
	if err != nil {
		return nil, err
	}
	item := adapt.ItemBytes(data)
	return &item, nil
}

// UpdateItem applies a partial edit to an owned item.
func (c *Client) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error) {
	if !model.ValidID(id) {
		return nil, query.ErrInvalidID
	}
	data, err := c.do(ctx, http.MethodPatch, "/items/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return nil, err
	}
	item := adapt.ItemBytes(data)
	return &item, nil
}

// UpdateStatus switches an item between LOST and FOUND.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (*model.Item, error) {
	if !model.ValidID(id) {
		return nil, query.ErrInvalidID
	}
	data, err := c.do(ctx, http.MethodPatch, "/items/"+url.PathEscape(id)+"/status", nil,
		map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	item := adapt.ItemBytes(data)
	return &item, nil
}

// FlagItem marks an item for moderation review with a reason.
func (c *Client) FlagItem(ctx context.Context, id, reason string) (*model.Item, error) {
	if !model.ValidID(id) {
		return nil, query.ErrInvalidID
	}
	data, err := c.do(ctx, http.MethodPatch, "/items/"+url.PathEscape(id)+"/flag", nil,
		map[string]any{"is_flagged": true, "flagged_reason": reason})
	if err != nil {
		return nil, err
	}
	item := adapt.ItemBytes(data)
	return &item, nil
}

// ApproveItem clears an item's moderation flag (admin).
func (c *Client) ApproveItem(ctx context.Context, id string) (*model.Item, error) {
	if !model.ValidID(id) {
		return nil, query.ErrInvalidID
	}
	data, err := c.do(ctx, http.MethodPatch, "/admin/items/"+url.PathEscape(id)+"/approve", nil, nil)
	if err != nil {
		return nil, err
	}
	item := adapt.ItemBytes(data)
	return &item, nil
}

// RejectItem removes a flagged item (admin).
func (c *Client) RejectItem(ctx context.Context, id string) error {
	if !model.ValidID(id) {
		return query.ErrInvalidID
	}
	_, err := c.do(ctx, http.MethodDelete, "/admin/items/"+url.PathEscape(id), nil, nil)
	return err
}

// DeleteItem removes an owned item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if !model.ValidID(id) {
		return query.ErrInvalidID
	}
	_, err := c.do(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil, nil)
	return err
}
