package store

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"lostfound/internal/auth"
	"lostfound/internal/model"
	"lostfound/internal/query"
)

// Local is the injectable local variant of the data-access layer: the same
// operation set as the REST client, backed by a SQLite database instead of
// the backend boundary. It exists for offline/demo use and for tests, and
// replaces the module-level mutable mock data the original design carried.
type Local struct {
	db     *sql.DB
	secret string
}

// NewLocal wraps an opened database (schema already ensured) and loads the
// token signing secret.
func NewLocal(ctx context.Context, db *sql.DB) (*Local, error) {
	secret, err := GetSigningSecret(ctx, db)
	if err != nil {
		return nil, err
	}
	return &Local{db: db, secret: secret}, nil
}

func (l *Local) ListItems(ctx context.Context, f model.ItemFilter) (model.ItemPage, error) {
	return ListItems(ctx, l.db, f)
}

func (l *Local) GetItem(ctx context.Context, id string) (*model.Item, error) {
	if !model.ValidID(id) {
		return nil, query.ErrInvalidID
	}
	item, err := GetItem(ctx, l.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, query.ErrNotFound
	}
	return item, nil
}

func (l *Local) CreateItem(ctx context.Context, draft model.ItemDraft) (*model.Item, error) {
	// Repair a missing or malformed reporter id with a known account, the
	// same way the REST layer keeps demo data coherent.
	if !model.ValidID(draft.ReporterID) {
		users, err := ListUsers(ctx, l.db)
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, fmt.Errorf("no reporter account available")
		}
		draft.ReporterID = users[0].ID
	}

	reporter, err := GetUser(ctx, l.db, draft.ReporterID)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		return nil, fmt.Errorf("reporter user not found")
	}

	return CreateItem(ctx, l.db, draft)
}

func (l *Local) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error) {
	if _, err := l.GetItem(ctx, id); err != nil {
		return nil, err
	}
	return UpdateItem(ctx, l.db, id, patch)
}

func (l *Local) UpdateStatus(ctx context.Context, id, status string) (*model.Item, error) {
	if _, err := l.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := SetItemStatus(ctx, l.db, id, status); err != nil {
		return nil, err
	}
	return GetItem(ctx, l.db, id)
}

func (l *Local) FlagItem(ctx context.Context, id, reason string) (*model.Item, error) {
	if _, err := l.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := SetItemFlag(ctx, l.db, id, true, reason); err != nil {
		return nil, err
	}
	return GetItem(ctx, l.db, id)
}

func (l *Local) ApproveItem(ctx context.Context, id string) (*model.Item, error) {
	if _, err := l.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := SetItemFlag(ctx, l.db, id, false, ""); err != nil {
		return nil, err
	}
	return GetItem(ctx, l.db, id)
}

func (l *Local) RejectItem(ctx context.Context, id string) error {
	if _, err := l.GetItem(ctx, id); err != nil {
		return err
	}
	return DeleteItem(ctx, l.db, id)
}

func (l *Local) DeleteItem(ctx context.Context, id string) error {
	if _, err := l.GetItem(ctx, id); err != nil {
		return err
	}
	return DeleteItem(ctx, l.db, id)
}

func (l *Local) ListUsers(ctx context.Context) ([]model.User, error) {
	return ListUsers(ctx, l.db)
}

func (l *Local) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, hash, err := GetUserByEmail(ctx, l.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, query.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, query.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(l.secret, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &model.Session{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Token:  token,
	}, nil
}

func (l *Local) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	existing, _, err := GetUserByEmail(ctx, l.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return CreateUser(ctx, l.db, email, name, model.RoleUser, string(hash))
}
