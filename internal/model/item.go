package model

import (
	"time"

	"github.com/google/uuid"
)

// Item is the canonical client-side shape for a reported lost or found
// object. Every layer above the adapter works with this shape only,
// regardless of how the backend names its fields.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Status      string    `json:"status"`
	Flagged     bool      `json:"is_flagged"`
	FlagReason  string    `json:"flagged_reason,omitempty"`
	Category    string    `json:"category"`
	ReporterID  string    `json:"reporter_id"`
	Location    string    `json:"location,omitempty"`
	Date        string    `json:"date,omitempty"` // when the item was lost/found, RFC 3339
	Contact     string    `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item statuses.
const (
	StatusLost  = "LOST"
	StatusFound = "FOUND"
)

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	return s == StatusLost || s == StatusFound
}

// CategoryFallback is used when a backend payload carries no recognizable category.
const CategoryFallback = "Others"

// Categories is the fixed category set, CategoryFallback last.
var Categories = []string{
	"Electronics",
	"Documents",
	"Wearables",
	"Accessories",
	"Books",
	"Keys",
	CategoryFallback,
}

// ValidCategory reports whether c is in the fixed category set.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PlaceholderImageURL is shown for items reported without a photo.
const PlaceholderImageURL = "https://via.placeholder.com/400?text=No+Image"

// ItemDraft is the payload for reporting a new item.
type ItemDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Location    string `json:"location,omitempty"`
	Date        string `json:"date,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Contact     string `json:"contact_info,omitempty"`
	ReporterID  string `json:"reporter_id"`
}

// ItemPatch is a partial update; nil fields are left untouched.
type ItemPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *string `json:"status,omitempty"`
	Location    *string `json:"location,omitempty"`
	Date        *string `json:"date,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Contact     *string `json:"contact_info,omitempty"`
}

// Sort orders for item listings, by report date.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// ItemFilter describes one listing request. It is built from UI state
// per request and never persisted.
type ItemFilter struct {
	Status     string `json:"status,omitempty"`
	Category   string `json:"category,omitempty"`
	Query      string `json:"query,omitempty"`
	Flagged    *bool  `json:"is_flagged,omitempty"`
	ReporterID string `json:"reporter_id,omitempty"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
	Sort       string `json:"sort,omitempty"`
}

// ItemPage is one page of a filtered item listing.
type ItemPage struct {
	Items    []Item `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`

	// Degraded marks an empty page that stands in for a failed listing
	// read. Degraded pages render normally but are never cached, so a
	// recovered backend is retried on the next read.
	Degraded bool `json:"-"`
}

// ValidID reports whether id looks like a backend identifier (UUID).
// Detail fetches check this before any request is issued.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
