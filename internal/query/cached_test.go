package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"lostfound/internal/model"
)

// countingService records how many calls reach the underlying service.
type countingService struct {
	listItems int
	getItem   int
	listUsers int

	items    map[string]*model.Item
	err      error
	degraded bool
}

func newCountingService() *countingService {
	return &countingService{items: map[string]*model.Item{
		"a": {ID: "a", Title: "Black Wallet", Status: model.StatusLost},
		"b": {ID: "b", Title: "Silver Keys", Status: model.StatusFound},
	}}
}

func (s *countingService) ListItems(ctx context.Context, f model.ItemFilter) (model.ItemPage, error) {
	s.listItems++
	if s.err != nil {
		return model.ItemPage{}, s.err
	}
	if s.degraded {
		return model.ItemPage{Items: []model.Item{}, Page: 1, Degraded: true}, nil
	}
	items := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		if f.Status == "" || it.Status == f.Status {
			items = append(items, *it)
		}
	}
	return model.ItemPage{Items: items, Total: len(items), Page: 1, PageSize: 20}, nil
}

func (s *countingService) GetItem(ctx context.Context, id string) (*model.Item, error) {
	s.getItem++
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *countingService) CreateItem(ctx context.Context, draft model.ItemDraft) (*model.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	item := &model.Item{ID: "c", Title: draft.Title, Status: draft.Status}
	s.items[item.ID] = item
	return item, nil
}

func (s *countingService) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	copied := *item
	return &copied, nil
}

func (s *countingService) UpdateStatus(ctx context.Context, id, status string) (*model.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	item.Status = status
	copied := *item
	return &copied, nil
}

func (s *countingService) FlagItem(ctx context.Context, id, reason string) (*model.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	item.Flagged = true
	item.FlagReason = reason
	copied := *item
	return &copied, nil
}

func (s *countingService) ApproveItem(ctx context.Context, id string) (*model.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	item.Flagged = false
	item.FlagReason = ""
	copied := *item
	return &copied, nil
}

func (s *countingService) RejectItem(ctx context.Context, id string) error {
	delete(s.items, id)
	return nil
}

func (s *countingService) DeleteItem(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.items, id)
	return nil
}

func (s *countingService) ListUsers(ctx context.Context) ([]model.User, error) {
	s.listUsers++
	return []model.User{{ID: "u1", Email: "user@lostfound.com"}}, nil
}

func (s *countingService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	return &model.Session{UserID: "u1", Email: email}, nil
}

func (s *countingService) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	return &model.User{ID: "u2", Email: email, Name: name, Role: model.RoleUser}, nil
}

func TestCachedListItemsWithinFreshness(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	for range 3 {
		if _, err := c.ListItems(ctx, model.ItemFilter{}); err != nil {
			t.Fatalf("ListItems() error = %v", err)
		}
	}
	if svc.listItems != 1 {
		t.Errorf("underlying ListItems calls = %d, want 1 within freshness window", svc.listItems)
	}

	// A different filter is a different key.
	if _, err := c.ListItems(ctx, model.ItemFilter{Status: model.StatusLost}); err != nil {
		t.Fatalf("ListItems(filter) error = %v", err)
	}
	if svc.listItems != 2 {
		t.Errorf("underlying ListItems calls = %d, want 2 after distinct filter", svc.listItems)
	}
}

func TestCachedExpiry(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }

	c.ListItems(ctx, model.ItemFilter{})
	c.ListItems(ctx, model.ItemFilter{})
	if svc.listItems != 1 {
		t.Fatalf("calls = %d, want 1 before expiry", svc.listItems)
	}

	c.now = func() time.Time { return base.Add(DefaultFreshness + time.Second) }
	c.ListItems(ctx, model.ItemFilter{})
	if svc.listItems != 2 {
		t.Errorf("calls = %d, want 2 after freshness window elapsed", svc.listItems)
	}
}

func TestCachedGetItem(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	c.GetItem(ctx, "a")
	c.GetItem(ctx, "a")
	c.GetItem(ctx, "b")
	if svc.getItem != 2 {
		t.Errorf("underlying GetItem calls = %d, want 2 (one per id)", svc.getItem)
	}

	// Failed reads are not cached.
	if _, err := c.GetItem(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetItem(missing) error = %v, want ErrNotFound", err)
	}
	c.GetItem(ctx, "missing")
	if svc.getItem != 4 {
		t.Errorf("underlying GetItem calls = %d, want failed reads uncached", svc.getItem)
	}
}

func TestMutationInvalidatesListings(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	page, _ := c.ListItems(ctx, model.ItemFilter{})
	before := page.Total

	if _, err := c.CreateItem(ctx, model.ItemDraft{Title: "Umbrella", Status: model.StatusFound}); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	page, _ = c.ListItems(ctx, model.ItemFilter{})
	if page.Total != before+1 {
		t.Errorf("Total after create = %d, want %d (stale listing served)", page.Total, before+1)
	}
	if svc.listItems != 2 {
		t.Errorf("underlying ListItems calls = %d, want refetch after mutation", svc.listItems)
	}
}

func TestMutationInvalidatesDetail(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	item, _ := c.GetItem(ctx, "a")
	if item.Status != model.StatusLost {
		t.Fatalf("Status = %q, want LOST", item.Status)
	}
	c.GetItem(ctx, "b")

	if _, err := c.UpdateStatus(ctx, "a", model.StatusFound); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	item, _ = c.GetItem(ctx, "a")
	if item.Status != model.StatusFound {
		t.Errorf("Status after mutation = %q, want FOUND (stale detail served)", item.Status)
	}

	// The untouched item's cache entry survives.
	c.GetItem(ctx, "b")
	if svc.getItem != 3 {
		t.Errorf("underlying GetItem calls = %d, want untouched detail still cached", svc.getItem)
	}
}

func TestFailedMutationKeepsCache(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	c.ListItems(ctx, model.ItemFilter{})

	svc.err = errors.New("backend down")
	if _, err := c.UpdateItem(ctx, "a", model.ItemPatch{}); err == nil {
		t.Fatal("UpdateItem() error = nil, want failure")
	}
	svc.err = nil

	c.ListItems(ctx, model.ItemFilter{})
	if svc.listItems != 1 {
		t.Errorf("underlying ListItems calls = %d, want cache kept after failed mutation", svc.listItems)
	}
}

func TestDegradedPageNotCached(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	svc.degraded = true
	page, err := c.ListItems(ctx, model.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("Items = %v, want empty degraded page", page.Items)
	}

	// After recovery the next read must reach the backend instead of
	// serving the cached blank listing.
	svc.degraded = false
	page, err = c.ListItems(ctx, model.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Total after recovery = %d, want 2 (degraded page was cached)", page.Total)
	}
	if svc.listItems != 2 {
		t.Errorf("underlying ListItems calls = %d, want 2", svc.listItems)
	}

	// The recovered page caches as usual.
	c.ListItems(ctx, model.ItemFilter{})
	if svc.listItems != 2 {
		t.Errorf("underlying ListItems calls = %d, want recovered page cached", svc.listItems)
	}
}

func TestDeleteInvalidates(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	c.GetItem(ctx, "a")
	c.ListItems(ctx, model.ItemFilter{})

	if err := c.DeleteItem(ctx, "a"); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}

	if _, err := c.GetItem(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetItem(deleted) error = %v, want ErrNotFound via refetch", err)
	}
	page, _ := c.ListItems(ctx, model.ItemFilter{})
	if page.Total != 1 {
		t.Errorf("Total after delete = %d, want 1", page.Total)
	}
}

func TestRegisterInvalidatesUsers(t *testing.T) {
	svc := newCountingService()
	c := NewCached(svc)
	ctx := context.Background()

	c.ListUsers(ctx)
	c.ListUsers(ctx)
	if svc.listUsers != 1 {
		t.Fatalf("underlying ListUsers calls = %d, want 1", svc.listUsers)
	}

	if _, err := c.Register(ctx, "new@lostfound.com", "New User", "secret"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	c.ListUsers(ctx)
	if svc.listUsers != 2 {
		t.Errorf("underlying ListUsers calls = %d, want refetch after register", svc.listUsers)
	}
}

// The decorator must keep satisfying the contract as it evolves.
var _ Service = (*Cached)(nil)
