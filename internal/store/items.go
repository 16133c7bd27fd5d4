package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lostfound/internal/model"
)

const itemColumns = `id, title, description, category, status, location, event_date,
	image_url, contact_info, reporter_id, is_flagged, flagged_reason, created_at, updated_at`

// CreateItem inserts a new item with a synthesized UUID and applies the
// canonical defaults: placeholder image when none is given, fallback
// category when the given one is unknown.
func CreateItem(ctx context.Context, db *sql.DB, draft model.ItemDraft) (*model.Item, error) {
	status := strings.ToUpper(draft.Status)
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q", draft.Status)
	}
	category := draft.Category
	if !model.ValidCategory(category) {
		category = model.CategoryFallback
	}
	imageURL := draft.ImageURL
	if imageURL == "" {
		imageURL = model.PlaceholderImageURL
	}

	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, title, description, category, status, location, event_date,
		                    image_url, contact_info, reporter_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, draft.Title, draft.Description, category, status,
		nullable(draft.Location), nullable(draft.Date), imageURL,
		nullable(draft.Contact), draft.ReporterID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns one page of items matching the filter. The free-text
// query is an exact substring match over title, description, and location.
func ListItems(ctx context.Context, db *sql.DB, f model.ItemFilter) (model.ItemPage, error) {
	where := []string{"1=1"}
	var args []any

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, strings.ToUpper(f.Status))
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Flagged != nil {
		where = append(where, "is_flagged = ?")
		args = append(args, boolInt(*f.Flagged))
	}
	if f.ReporterID != "" {
		where = append(where, "reporter_id = ?")
		args = append(args, f.ReporterID)
	}
	if f.Query != "" {
		where = append(where, "(title LIKE ? OR description LIKE ? OR location LIKE ?)")
		needle := "%" + f.Query + "%"
		args = append(args, needle, needle, needle)
	}

	clause := strings.Join(where, " AND ")

	page := model.ItemPage{Items: []model.Item{}}
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE `+clause, args...,
	).Scan(&page.Total)
	if err != nil {
		return page, fmt.Errorf("counting items: %w", err)
	}

	// Report-date ordering, rowid as an insertion-order tiebreaker.
	order := "created_at DESC, rowid DESC"
	if f.Sort == model.SortOldest {
		order = "created_at ASC, rowid ASC"
	}

	page.Page = f.Page
	if page.Page < 1 {
		page.Page = 1
	}
	page.PageSize = f.PageSize
	if page.PageSize < 1 {
		page.PageSize = 20
	}
	offset := (page.Page - 1) * page.PageSize

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE `+clause+
			` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, page.PageSize, offset)...,
	)
	if err != nil {
		return page, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return page, fmt.Errorf("scanning item: %w", err)
		}
		page.Items = append(page.Items, *item)
	}
	return page, rows.Err()
}

// UpdateItem applies a partial update; nil patch fields are left untouched.
func UpdateItem(ctx context.Context, db *sql.DB, id string, patch model.ItemPatch) (*model.Item, error) {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any

	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Category != nil {
		category := *patch.Category
		if !model.ValidCategory(category) {
			category = model.CategoryFallback
		}
		set("category", category)
	}
	if patch.Status != nil {
		status := strings.ToUpper(*patch.Status)
		if !model.ValidStatus(status) {
			return nil, fmt.Errorf("invalid status %q", *patch.Status)
		}
		set("status", status)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.Date != nil {
		set("event_date", *patch.Date)
	}
	if patch.ImageURL != nil {
		set("image_url", *patch.ImageURL)
	}
	if patch.Contact != nil {
		set("contact_info", *patch.Contact)
	}

	_, err := db.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		append(args, id)...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// SetItemStatus updates only the item status.
func SetItemStatus(ctx context.Context, db *sql.DB, id, status string) error {
	status = strings.ToUpper(status)
	if !model.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	_, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	return nil
}

// SetItemFlag sets or clears the moderation flag. The reason is stored
// only while the flag is set, so the pair stays consistent.
func SetItemFlag(ctx context.Context, db *sql.DB, id string, flagged bool, reason string) error {
	if !flagged {
		reason = ""
	}
	_, err := db.ExecContext(ctx,
		`UPDATE items SET is_flagged = ?, flagged_reason = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		boolInt(flagged), nullable(reason), id,
	)
	if err != nil {
		return fmt.Errorf("setting item flag: %w", err)
	}
	return nil
}

// DeleteItem removes an item. Deletion is final (owner delete or admin
// reject both destroy the record).
func DeleteItem(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var location, eventDate, imageURL, contact, reason sql.NullString
	var flagged int
	err := s.Scan(
		&item.ID, &item.Title, &item.Description, &item.Category, &item.Status,
		&location, &eventDate, &imageURL, &contact, &item.ReporterID,
		&flagged, &reason, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Location = location.String
	item.Date = eventDate.String
	item.ImageURL = imageURL.String
	item.Contact = contact.String
	item.Flagged = flagged != 0
	item.FlagReason = reason.String
	return item, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
