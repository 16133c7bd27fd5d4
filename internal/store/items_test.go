package store

import (
	"context"
	"database/sql"
	"testing"

	"lostfound/internal/db"
	"lostfound/internal/model"
)

func newReporter(t *testing.T, database *sql.DB) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, "reporter@example.com", "Reporter", model.RoleUser, "")
	if err != nil {
		t.Fatalf("creating reporter: %v", err)
	}
	return u
}

func TestCreateItemDefaults(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	reporter := newReporter(t, database)

	item, err := CreateItem(ctx, database, model.ItemDraft{
		Title:       "Black Wallet",
		Description: "Leather wallet with several cards inside.",
		Category:    "Accessories",
		Status:      model.StatusLost,
		ReporterID:  reporter.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if !model.ValidID(item.ID) {
		t.Errorf("expected synthesized UUID, got %q", item.ID)
	}
	if item.ImageURL != model.PlaceholderImageURL {
		t.Errorf("expected placeholder image, got %q", item.ImageURL)
	}
	if item.Flagged {
		t.Error("new item must not be flagged")
	}
	if item.Category != "Accessories" {
		t.Errorf("expected category 'Accessories', got %q", item.Category)
	}
}

func TestCreateItemUnknownCategoryFallsBack(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	reporter := newReporter(t, database)

	item, err := CreateItem(ctx, database, model.ItemDraft{
		Title: "Widget", Category: "Gadgets", Status: "lost", ReporterID: reporter.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Category != model.CategoryFallback {
		t.Errorf("expected fallback category, got %q", item.Category)
	}
	if item.Status != model.StatusLost {
		t.Errorf("expected status normalized to LOST, got %q", item.Status)
	}
}

func TestCreateItemInvalidStatus(t *testing.T) {
	database := db.NewTestDB(t)
	reporter := newReporter(t, database)

	_, err := CreateItem(context.Background(), database, model.ItemDraft{
		Title: "Widget", Status: "MISPLACED", ReporterID: reporter.ID,
	})
	if err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	reporter := newReporter(t, database)

	drafts := []model.ItemDraft{
		{Title: "Black Wallet", Description: "Leather wallet", Category: "Accessories", Status: model.StatusLost, Location: "Main Cafeteria"},
		{Title: "Silver Keys", Description: "On a red keychain", Category: "Keys", Status: model.StatusFound},
		{Title: "Kindle Reader", Description: "E-reader", Category: "Electronics", Status: model.StatusFound},
	}
	for _, d := range drafts {
		d.ReporterID = reporter.ID
		if _, err := CreateItem(ctx, database, d); err != nil {
			t.Fatalf("CreateItem %q: %v", d.Title, err)
		}
	}

	tests := []struct {
		name   string
		filter model.ItemFilter
		want   int
	}{
		{"all", model.ItemFilter{}, 3},
		{"lost only", model.ItemFilter{Status: model.StatusLost}, 1},
		{"found only", model.ItemFilter{Status: model.StatusFound}, 2},
		{"by category", model.ItemFilter{Category: "Keys"}, 1},
		{"substring in title", model.ItemFilter{Query: "Wallet"}, 1},
		{"substring in description", model.ItemFilter{Query: "keychain"}, 1},
		{"substring in location", model.ItemFilter{Query: "Cafeteria"}, 1},
		{"no match", model.ItemFilter{Query: "umbrella"}, 0},
		{"by reporter", model.ItemFilter{ReporterID: reporter.ID}, 3},
		{"other reporter", model.ItemFilter{ReporterID: "someone-else"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ListItems(ctx, database, tt.filter)
			if err != nil {
				t.Fatalf("ListItems: %v", err)
			}
			if len(page.Items) != tt.want {
				t.Errorf("got %d items, want %d", len(page.Items), tt.want)
			}
			if page.Total != tt.want {
				t.Errorf("got total %d, want %d", page.Total, tt.want)
			}
		})
	}
}

func TestListItemsPaginationAndSort(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	reporter := newReporter(t, database)

	titles := []string{"First", "Second", "Third", "Fourth", "Fifth"}
	for _, title := range titles {
		if _, err := CreateItem(ctx, database, model.ItemDraft{
			Title: title, Status: model.StatusLost, ReporterID: reporter.ID,
		}); err != nil {
			t.Fatalf("CreateItem %q: %v", title, err)
		}
	}

	page, err := ListItems(ctx, database, model.ItemFilter{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 2 {
		t.Fatalf("page 1: total=%d len=%d", page.Total, len(page.Items))
	}
	// Newest first by default.
	if page.Items[0].Title != "Fifth" {
		t.Errorf("expected newest first, got %q", page.Items[0].Title)
	}

	page, _ = ListItems(ctx, database, model.ItemFilter{Page: 3, PageSize: 2})
	if len(page.Items) != 1 || page.Items[0].Title != "First" {
		t.Errorf("last page = %+v", page.Items)
	}

	page, _ = ListItems(ctx, database, model.ItemFilter{Sort: model.SortOldest, Page: 1, PageSize: 5})
	if page.Items[0].Title != "First" || page.Items[4].Title != "Fifth" {
		t.Errorf("oldest-first order wrong: %q ... %q", page.Items[0].Title, page.Items[4].Title)
	}
}

func TestFlagLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	reporter := newReporter(t, database)

	item, _ := CreateItem(ctx, database, model.ItemDraft{
		Title: "Fitness Watch", Status: model.StatusFound, ReporterID: reporter.ID,
	})

	if err := SetItemFlag(ctx, database, item.ID, true, "Inappropriate"); err != nil {
		t.Fatalf("SetItemFlag: %v", err)
	}

	flagged := true
	page, err := ListItems(ctx, database, model.ItemFilter{Flagged: &flagged})
	if err != nil {
		t.Fatalf("ListItems flagged: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 flagged item, got %d", len(page.Items))
	}
	if !page.Items[0].Flagged || page.Items[0].FlagReason != "Inappropriate" {
		t.Errorf("flagged item = %+v", page.Items[0])
	}

	// Approving clears both the flag and the reason.
	if err := SetItemFlag(ctx, database, item.ID, false, "should be ignored"); err != nil {
		t.Fatalf("SetItemFlag clear: %v", err)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.Flagged || got.FlagReason != "" {
		t.Errorf("after approve: flagged=%v reason=%q", got.Flagged, got.FlagReason)
	}

	page, _ = ListItems(ctx, database, model.ItemFilter{Flagged: &flagged})
	if len(page.Items) != 0 {
		t.Errorf("expected no flagged items after approve, got %d", len(page.Items))
	}
}

func TestUpdateItemPartial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	reporter := newReporter(t, database)

	item, _ := CreateItem(ctx, database, model.ItemDraft{
		Title: "Sunglasses", Description: "Brown frame", Category: "Accessories",
		Status: model.StatusLost, ReporterID: reporter.ID,
	})

	title := "Aviator Sunglasses"
	status := model.StatusFound
	updated, err := UpdateItem(ctx, database, item.ID, model.ItemPatch{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Title != title || updated.Status != model.StatusFound {
		t.Errorf("updated = %+v", updated)
	}
	// Untouched fields survive.
	if updated.Description != "Brown frame" || updated.Category != "Accessories" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	reporter := newReporter(t, database)

	item, _ := CreateItem(ctx, database, model.ItemDraft{
		Title: "Notebook", Status: model.StatusFound, ReporterID: reporter.ID,
	})
	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Error("expected item to be gone after delete")
	}

	page, _ := ListItems(ctx, database, model.ItemFilter{})
	if len(page.Items) != 0 {
		t.Errorf("expected empty listing after delete, got %d", len(page.Items))
	}
}
