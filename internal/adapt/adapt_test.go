package adapt

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"lostfound/internal/model"
)

func TestItemFieldAliases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.Item
	}{
		{
			name: "canonical backend shape",
			in: `{"id": "7b2f1a9e-8c3d-4e5f-9a1b-2c3d4e5f6a7b", "title": "Black Wallet",
			      "description": "Leather wallet.", "category": "Accessories", "status": "LOST",
			      "image_url": "http://img/1.jpg", "reporter_id": "a1b2", "is_flagged": false}`,
			want: model.Item{
				ID: "7b2f1a9e-8c3d-4e5f-9a1b-2c3d4e5f6a7b", Title: "Black Wallet",
				Description: "Leather wallet.", Category: "Accessories", Status: model.StatusLost,
				ImageURL: "http://img/1.jpg", ReporterID: "a1b2",
			},
		},
		{
			name: "mock shape with ai_category and numeric id",
			in:   `{"id": 4, "title": "Kindle Reader", "status": "found", "ai_category": "Electronics", "is_flagged": true}`,
			want: model.Item{
				ID: "4", Title: "Kindle Reader", Status: model.StatusFound,
				Category: "Electronics", Flagged: true, ImageURL: model.PlaceholderImageURL,
			},
		},
		{
			name: "prediction field and reason implies flagged",
			in:   `{"id": "9", "title": "Watch", "status": "FOUND", "ai_category_prediction": "Wearables", "flagged_reason": "Inappropriate"}`,
			want: model.Item{
				ID: "9", Title: "Watch", Status: model.StatusFound, Category: "Wearables",
				Flagged: true, FlagReason: "Inappropriate", ImageURL: model.PlaceholderImageURL,
			},
		},
		{
			name: "explicit unflagged wins over reason presence",
			in:   `{"id": "9", "title": "Watch", "status": "FOUND", "is_flagged": false, "flagged_reason": "stale"}`,
			want: model.Item{
				ID: "9", Title: "Watch", Status: model.StatusFound, Category: model.CategoryFallback,
				Flagged: false, FlagReason: "stale", ImageURL: model.PlaceholderImageURL,
			},
		},
		{
			name: "unknown category falls back",
			in:   `{"id": "1", "title": "Widget", "status": "LOST", "category": "Gadgets"}`,
			want: model.Item{
				ID: "1", Title: "Widget", Status: model.StatusLost,
				Category: model.CategoryFallback, ImageURL: model.PlaceholderImageURL,
			},
		},
		{
			name: "empty payload still yields defined defaults",
			in:   `{}`,
			want: model.Item{Category: model.CategoryFallback, ImageURL: model.PlaceholderImageURL},
		},
		{
			name: "numeric reporter id coerced to string",
			in:   `{"id": "1", "title": "Keys", "status": "FOUND", "user_id": 123}`,
			want: model.Item{
				ID: "1", Title: "Keys", Status: model.StatusFound, ReporterID: "123",
				Category: model.CategoryFallback, ImageURL: model.PlaceholderImageURL,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemBytes([]byte(tt.in))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("adapted item mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestItemDateNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"rfc3339", `{"date": "2026-08-12T10:30:00Z"}`, "2026-08-12T10:30:00Z"},
		{"naive iso", `{"date": "2026-08-12T10:30:00.123456"}`, "2026-08-12T10:30:00Z"},
		{"date only", `{"event_date": "2026-08-12"}`, "2026-08-12T00:00:00Z"},
		{"epoch seconds", `{"date": 1770000000}`, "2026-02-02T02:40:00Z"},
		{"garbage", `{"date": "last tuesday"}`, ""},
		{"absent", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemBytes([]byte(tt.in)).Date; got != tt.want {
				t.Errorf("date = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestItemBytesmalformed(t *testing.T) {
	// The adapter must be total: garbage in, defined defaults out.
	for _, in := range []string{"", "not json", `[1,2,3]`, `"just a string"`} {
		item := ItemBytes([]byte(in))
		if item.Category != model.CategoryFallback {
			t.Errorf("ItemBytes(%q).Category = %q, want fallback", in, item.Category)
		}
		if item.ImageURL != model.PlaceholderImageURL {
			t.Errorf("ItemBytes(%q).ImageURL = %q, want placeholder", in, item.ImageURL)
		}
		if item.Flagged {
			t.Errorf("ItemBytes(%q) unexpectedly flagged", in)
		}
	}
}

func TestPageShapes(t *testing.T) {
	envelope := `{"items": [{"id": "1", "title": "A", "status": "LOST"}], "total": 7, "page": 2, "page_size": 1}`
	page := Page([]byte(envelope))
	if len(page.Items) != 1 || page.Total != 7 || page.Page != 2 {
		t.Errorf("envelope page = %+v", page)
	}

	bare := ` [{"id": "1", "title": "A", "status": "LOST"}, {"id": "2", "title": "B", "status": "FOUND"}]`
	page = Page([]byte(bare))
	if len(page.Items) != 2 || page.Total != 2 {
		t.Errorf("bare array page = %+v", page)
	}

	page = Page([]byte("oops"))
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("malformed page should be empty, got %+v", page)
	}
}

func TestUsers(t *testing.T) {
	data := `[{"id": "u1", "email": "a@b.c", "name": "Ana", "role": "admin"},
	          {"id": 2, "email": "d@e.f", "username": "dee"}]`
	users := Users([]byte(data))
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Role != model.RoleAdmin {
		t.Errorf("expected role normalized to ADMIN, got %q", users[0].Role)
	}
	if users[1].ID != "2" || users[1].Name != "dee" {
		t.Errorf("second user = %+v", users[1])
	}
}
