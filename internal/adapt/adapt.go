// Package adapt maps heterogeneous backend payload shapes into the
// canonical client-side model. Backends disagree on field names (the
// category may arrive as category, ai_category, or ai_category_prediction;
// identifiers may be strings or numbers), so every canonical field declares
// its source keys once, in priority order, instead of sniffing shapes
// inline at each call site.
//
// The adapter never fails: malformed input produces a best-effort partial
// record with defined defaults.
package adapt

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"lostfound/internal/model"
)

// Source-key priority per canonical item field.
var (
	idKeys       = []string{"id", "item_id"}
	titleKeys    = []string{"title", "name"}
	descKeys     = []string{"description"}
	imageKeys    = []string{"image_url", "imageUrl", "image"}
	statusKeys   = []string{"status"}
	flaggedKeys  = []string{"is_flagged", "flagged"}
	reasonKeys   = []string{"flagged_reason", "flag_reason"}
	categoryKeys = []string{"category", "ai_category", "ai_category_prediction"}
	reporterKeys = []string{"reporter_id", "reporterId", "user_id"}
	locationKeys = []string{"location"}
	dateKeys     = []string{"date", "event_date", "lost_date", "found_date"}
	contactKeys  = []string{"contact_info", "contact"}
	createdKeys  = []string{"created_at", "createdAt"}
	updatedKeys  = []string{"updated_at", "updatedAt"}
)

// Item adapts one raw backend item payload into the canonical shape.
func Item(raw map[string]json.RawMessage) model.Item {
	item := model.Item{
		ID:          str(raw, idKeys),
		Title:       str(raw, titleKeys),
		Description: str(raw, descKeys),
		ImageURL:    str(raw, imageKeys),
		Status:      strings.ToUpper(str(raw, statusKeys)),
		FlagReason:  str(raw, reasonKeys),
		ReporterID:  str(raw, reporterKeys),
		Location:    str(raw, locationKeys),
		Contact:     str(raw, contactKeys),
		Date:        timestamp(raw, dateKeys),
		CreatedAt:   timeValue(raw, createdKeys),
		UpdatedAt:   timeValue(raw, updatedKeys),
	}

	// Prefer an explicit boolean; fall back to reason presence.
	if flagged, ok := boolean(raw, flaggedKeys); ok {
		item.Flagged = flagged
	} else {
		item.Flagged = item.FlagReason != ""
	}

	if category := str(raw, categoryKeys); model.ValidCategory(category) {
		item.Category = category
	} else {
		item.Category = model.CategoryFallback
	}

	if item.ImageURL == "" {
		item.ImageURL = model.PlaceholderImageURL
	}

	return item
}

// ItemBytes decodes and adapts one item payload.
func ItemBytes(data []byte) model.Item {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Item(nil)
	}
	return Item(raw)
}

// Page decodes a listing response. Backends return either a paginated
// envelope ({"items": [...], "total": n, ...}) or a bare array.
func Page(data []byte) model.ItemPage {
	data = trimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raws []map[string]json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return model.ItemPage{Items: []model.Item{}}
		}
		page := model.ItemPage{Items: make([]model.Item, 0, len(raws)), Total: len(raws), Page: 1, PageSize: len(raws)}
		for _, raw := range raws {
			page.Items = append(page.Items, Item(raw))
		}
		return page
	}

	var envelope struct {
		Items    []map[string]json.RawMessage `json:"items"`
		Total    int                          `json:"total"`
		Page     int                          `json:"page"`
		PageSize int                          `json:"page_size"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return model.ItemPage{Items: []model.Item{}}
	}
	page := model.ItemPage{Items: make([]model.Item, 0, len(envelope.Items)), Total: envelope.Total, Page: envelope.Page, PageSize: envelope.PageSize}
	for _, raw := range envelope.Items {
		page.Items = append(page.Items, Item(raw))
	}
	return page
}

// User adapts one raw backend user payload.
func User(raw map[string]json.RawMessage) model.User {
	return model.User{
		ID:        str(raw, idKeys),
		Email:     str(raw, []string{"email"}),
		Name:      str(raw, []string{"name", "display_name", "username"}),
		Role:      strings.ToUpper(str(raw, []string{"role"})),
		CreatedAt: timeValue(raw, createdKeys),
	}
}

// UserBytes decodes and adapts one user payload.
func UserBytes(data []byte) model.User {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return User(nil)
	}
	return User(raw)
}

// Users decodes and adapts a user listing.
func Users(data []byte) []model.User {
	var raws []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return []model.User{}
	}
	users := make([]model.User, 0, len(raws))
	for _, raw := range raws {
		users = append(users, User(raw))
	}
	return users
}

// str returns the first present key coerced to a string. Numeric values
// are formatted so that numeric and string identifiers compare uniformly.
func str(raw map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			return s
		}
		var n float64
		if err := json.Unmarshal(msg, &n); err == nil {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return ""
}

// boolean returns the first present key as a bool, reporting whether any
// key carried a usable boolean at all.
func boolean(raw map[string]json.RawMessage, keys []string) (bool, bool) {
	for _, key := range keys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(msg, &b); err == nil {
			return b, true
		}
	}
	return false, false
}

// Date layouts backends are known to emit, tried in order. FastAPI emits
// zone-less ISO timestamps for naive datetimes.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// timestamp returns the first present date-like key normalized to an
// absolute RFC 3339 string. Epoch numbers are accepted as seconds.
func timestamp(raw map[string]json.RawMessage, keys []string) string {
	if t := timeValue(raw, keys); !t.IsZero() {
		return t.Format(time.RFC3339)
	}
	return ""
}

// timeValue parses the first present date-like key.
func timeValue(raw map[string]json.RawMessage, keys []string) time.Time {
	for _, key := range keys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t.UTC()
				}
			}
			continue
		}
		var epoch float64
		if err := json.Unmarshal(msg, &epoch); err == nil && epoch > 0 {
			return time.Unix(int64(epoch), 0).UTC()
		}
	}
	return time.Time{}
}

func trimSpace(data []byte) []byte {
	for len(data) > 0 {
		switch data[0] {
		case ' ', '\t', '\r', '\n':
			data = data[1:]
		default:
			return data
		}
	}
	return data
}
