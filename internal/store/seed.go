package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lostfound/internal/model"
)

// DemoPassword is the password for all seeded demo accounts.
const DemoPassword = "password"

type seedUser struct {
	email, name, role string
}

var seedUsers = []seedUser{
	{"user@lostfound.com", "Demo User", model.RoleUser},
	{"admin@lostfound.com", "Admin User", model.RoleAdmin},
	{"john@example.com", "John Doe", model.RoleUser},
	{"jane@example.com", "Jane Smith", model.RoleUser},
}

type seedItem struct {
	title, description, category, status, location string
	flagReason                                     string
}

var seedItems = []seedItem{
	{"Black Wallet", "Leather wallet with several cards inside.", "Accessories", model.StatusLost, "Main Cafeteria", "Contains personal documents"},
	{"Silver Keys", "Set of house and car keys on a red keychain.", "Keys", model.StatusFound, "Parking Lot B", ""},
	{"Blue Backpack", "Blue backpack with laptop sleeve, slightly worn.", "Accessories", model.StatusLost, "Engineering Building", ""},
	{"Kindle Reader", "E-reader with a few sci-fi books.", "Electronics", model.StatusFound, "Library 2nd Floor", "Possible duplicate listing"},
	{"University ID Card", "Student ID with name blurred out.", "Documents", model.StatusLost, "Administration Office", ""},
	{"Black Headphones", "Over-ear noise-cancelling headphones.", "Electronics", model.StatusFound, "Gym Locker Room", ""},
	{"Paperback Book - Dune", "Sci-fi classic paperback edition.", "Books", model.StatusLost, "Student Center", ""},
	{"Fitness Watch", "Black strap, screen has a small scratch.", "Wearables", model.StatusFound, "Sports Complex", "Inappropriate photo"},
	{"Sunglasses", "Brown frame aviator sunglasses.", "Accessories", model.StatusLost, "Main Hall", ""},
	{"Notebook", "Small ruled notebook with project sketches.", "Documents", model.StatusFound, "Chemistry Lab", ""},
}

// Seed populates an empty local database with the demo accounts and item
// listings. Seeding is skipped when any user already exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("checking seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}

	users := make([]*model.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		u, err := CreateUser(ctx, db, su.email, su.name, su.role, string(hash))
		if err != nil {
			return fmt.Errorf("seeding user %s: %w", su.email, err)
		}
		users = append(users, u)
	}

	now := time.Now().UTC()
	for i, si := range seedItems {
		reporter := users[0]
		if i%3 == 2 {
			reporter = users[2+i%2]
		}
		item, err := CreateItem(ctx, db, model.ItemDraft{
			Title:       si.title,
			Description: si.description,
			Category:    si.category,
			Status:      si.status,
			Location:    si.location,
			Date:        now.AddDate(0, 0, -(i + 2)).Format(time.RFC3339),
			ImageURL:    fmt.Sprintf("https://placedog.net/400/400?id=%d", i+1),
			Contact:     reporter.Email,
			ReporterID:  reporter.ID,
		})
		if err != nil {
			return fmt.Errorf("seeding item %q: %w", si.title, err)
		}

		// Spread report dates so newest/oldest sorting is meaningful.
		reported := now.AddDate(0, 0, -(i + 1)).Format(time.RFC3339)
		if _, err := db.ExecContext(ctx,
			`UPDATE items SET created_at = ?, updated_at = ? WHERE id = ?`,
			reported, reported, item.ID,
		); err != nil {
			return fmt.Errorf("backdating seed item %q: %w", si.title, err)
		}

		if si.flagReason != "" {
			if err := SetItemFlag(ctx, db, item.ID, true, si.flagReason); err != nil {
				return fmt.Errorf("flagging seed item %q: %w", si.title, err)
			}
		}
	}

	return nil
}
