package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lostfound/internal/model"
)

// CreateUser creates a new user with a synthesized UUID.
func CreateUser(ctx context.Context, db *sql.DB, email, name, role, passwordHash string) (*model.User, error) {
	role = strings.ToUpper(role)
	if role != model.RoleAdmin {
		role = model.RoleUser
	}

	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, password_hash) VALUES (?, ?, ?, ?, ?)`,
		id, email, name, role, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if it does not exist.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, email, name, role, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user and their password hash by email, or nil
// if no account exists.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, string, error) {
	u := &model.User{}
	var hash string
	err := db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &hash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting user by email: %w", err)
	}
	return u, hash, nil
}

// ListUsers returns all users, oldest account first.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, email, name, role, created_at FROM users ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
