// Package query defines the data-access contract shared by the REST client
// and the local store variant, and wraps either in a read-through cache
// with invalidate-on-write semantics so callers re-render fresh data after
// a mutation without manual refetch wiring.
package query

import (
	"context"
	"errors"

	"lostfound/internal/model"
)

// Shared data-access errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidID          = errors.New("invalid identifier")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service is the data-access contract. client.Client speaks to the backend
// over REST; store.Local is the injectable seeded variant. Both return the
// canonical shapes from internal/model.
type Service interface {
	ListItems(ctx context.Context, f model.ItemFilter) (model.ItemPage, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	CreateItem(ctx context.Context, draft model.ItemDraft) (*model.Item, error)
	UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Item, error)
	FlagItem(ctx context.Context, id, reason string) (*model.Item, error)
	ApproveItem(ctx context.Context, id string) (*model.Item, error)
	RejectItem(ctx context.Context, id string) error
	DeleteItem(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Register(ctx context.Context, email, name, password string) (*model.User, error)
}
