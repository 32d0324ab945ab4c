package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/db"
	"wishlist/internal/models"
)

type shareKey struct{ list, user uuid.UUID }

// fakeStore keeps everything in memory. Transactions are serialized by txMu,
// which stands in for the row lock, and roll back by restoring a snapshot.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	lists         map[uuid.UUID]models.Wishlist
	shares        map[shareKey]models.Share
	items         map[uuid.UUID]models.Item
	links         map[uuid.UUID]models.PublicLink
	suggestions   map[uuid.UUID]models.Suggestion
	names         map[uuid.UUID]string
	contributions []models.Contribution
	activity      []models.Activity
	notifications []models.Notification

	failNotifications bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:       make(map[uuid.UUID]models.Wishlist),
		shares:      make(map[shareKey]models.Share),
		items:       make(map[uuid.UUID]models.Item),
		links:       make(map[uuid.UUID]models.PublicLink),
		suggestions: make(map[uuid.UUID]models.Suggestion),
		names:       make(map[uuid.UUID]string),
	}
}

type snapshot struct {
	lists         map[uuid.UUID]models.Wishlist
	shares        map[shareKey]models.Share
	items         map[uuid.UUID]models.Item
	links         map[uuid.UUID]models.PublicLink
	suggestions   map[uuid.UUID]models.Suggestion
	contributions []models.Contribution
	activity      []models.Activity
	notifications []models.Notification
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (f *fakeStore) snapshot() snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshot{
		lists:         copyMap(f.lists),
		shares:        copyMap(f.shares),
		items:         copyMap(f.items),
		links:         copyMap(f.links),
		suggestions:   copyMap(f.suggestions),
		contributions: append([]models.Contribution(nil), f.contributions...),
		activity:      append([]models.Activity(nil), f.activity...),
		notifications: append([]models.Notification(nil), f.notifications...),
	}
}

func (f *fakeStore) restore(s snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists, f.shares, f.items, f.links, f.suggestions = s.lists, s.shares, s.items, s.links, s.suggestions
	f.contributions, f.activity, f.notifications = s.contributions, s.activity, s.notifications
}

func (f *fakeStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

// seeding helpers

func (f *fakeStore) addList(owner uuid.UUID, title string) models.Wishlist {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := models.Wishlist{ID: uuid.New(), OwnerID: owner, Title: title}
	f.lists[w.ID] = w
	return w
}

func (f *fakeStore) addShare(listID, userID uuid.UUID, role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shares[shareKey{listID, userID}] = models.Share{ID: uuid.New(), WishlistID: listID, UserID: userID, Role: role}
}

func (f *fakeStore) item(id uuid.UUID) (models.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	return it, ok
}

func (f *fakeStore) notificationsFor(userID uuid.UUID) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeStore) activityCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.activity)
}

// access.Store

func (f *fakeStore) GetWishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.lists[id]
	if !ok {
		return nil, db.ErrWishlistNotFound
	}
	return &w, nil
}

func (f *fakeStore) GetShare(ctx context.Context, wishlistID, userID uuid.UUID) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shares[shareKey{wishlistID, userID}]
	if !ok {
		return nil, db.ErrShareNotFound
	}
	return &s, nil
}

func (f *fakeStore) GetPublicLinkByToken(ctx context.Context, token string) (*models.PublicLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.Token == token {
			return &l, nil
		}
	}
	return nil, db.ErrPublicLinkNotFound
}

func (f *fakeStore) CountPublicLinkView(ctx context.Context, token string, now time.Time) (*models.PublicLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, l := range f.links {
		if l.Token != token {
			continue
		}
		if l.Expired(now) || l.Exhausted() {
			return nil, db.ErrPublicLinkNotFound
		}
		l.ViewCount++
		f.links[id] = l
		return &l, nil
	}
	return nil, db.ErrPublicLinkNotFound
}

// items

func (f *fakeStore) ListItems(ctx context.Context, wishlistID uuid.UUID) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Item
	for _, it := range f.items {
		if it.WishlistID == wishlistID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeStore) GetItem(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.WishlistID != wishlistID {
		return nil, db.ErrItemNotFound
	}
	return &it, nil
}

func (f *fakeStore) LockItem(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.Item, error) {
	return f.GetItem(ctx, wishlistID, itemID)
}

func (f *fakeStore) LockWishlistItems(ctx context.Context, wishlistID uuid.UUID) ([]models.Item, error) {
	if _, err := f.GetWishlist(ctx, wishlistID); err != nil {
		return nil, err
	}
	return f.ListItems(ctx, wishlistID)
}

func (f *fakeStore) UpdateItemClaim(ctx context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.items[item.ID]
	if !ok {
		return db.ErrItemNotFound
	}
	cur.Status = item.Status
	cur.ReservedByID = item.ReservedByID
	cur.ReservedAt = item.ReservedAt
	cur.ReservationMessage = item.ReservationMessage
	f.items[item.ID] = cur
	return nil
}

func (f *fakeStore) CreateItem(ctx context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pos := 0
	for _, it := range f.items {
		if it.WishlistID == item.WishlistID && it.Position >= pos {
			pos = it.Position + 1
		}
	}
	item.ID = uuid.New()
	item.Position = pos
	item.Status = models.ClaimAvailable
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	f.items[item.ID] = *item
	return nil
}

func (f *fakeStore) DeleteItem(ctx context.Context, wishlistID, itemID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.WishlistID != wishlistID {
		return db.ErrItemNotFound
	}
	delete(f.items, itemID)
	kept := f.contributions[:0:0]
	for _, c := range f.contributions {
		if c.ItemID != itemID {
			kept = append(kept, c)
		}
	}
	f.contributions = kept
	return nil
}

// lists

func (f *fakeStore) DeleteWishlist(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lists[id]; !ok {
		return db.ErrWishlistNotFound
	}
	delete(f.lists, id)
	delete(f.links, id)
	for k := range f.shares {
		if k.list == id {
			delete(f.shares, k)
		}
	}
	gone := make(map[uuid.UUID]bool)
	for itemID, it := range f.items {
		if it.WishlistID == id {
			gone[itemID] = true
			delete(f.items, itemID)
		}
	}
	kept := f.contributions[:0:0]
	for _, c := range f.contributions {
		if !gone[c.ItemID] {
			kept = append(kept, c)
		}
	}
	f.contributions = kept
	return nil
}

func (f *fakeStore) GetDeleteImpact(ctx context.Context, w *models.Wishlist) (*models.DeleteImpact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	impact := &models.DeleteImpact{}
	for k := range f.shares {
		if k.list == w.ID {
			impact.SharedWithCount++
		}
	}
	seen := make(map[uuid.UUID]bool)
	for _, c := range f.contributions {
		if it, ok := f.items[c.ItemID]; ok && it.WishlistID == w.ID && !seen[c.UserID] {
			seen[c.UserID] = true
			impact.ContributorsCount++
		}
	}
	return impact, nil
}

func (f *fakeStore) ListShares(ctx context.Context, wishlistID uuid.UUID) ([]models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Share
	for k, s := range f.shares {
		if k.list == wishlistID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

// public links

func (f *fakeStore) GetPublicLinkByWishlist(ctx context.Context, wishlistID uuid.UUID) (*models.PublicLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[wishlistID]
	if !ok {
		return nil, db.ErrPublicLinkNotFound
	}
	return &l, nil
}

func (f *fakeStore) UpsertPublicLink(ctx context.Context, wishlistID uuid.UUID, token string, expiresAt *time.Time, maxViews *int) (*models.PublicLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[wishlistID]
	if !ok {
		l = models.PublicLink{ID: uuid.New(), WishlistID: wishlistID, Token: token, CreatedAt: time.Now()}
	}
	if expiresAt != nil {
		l.ExpiresAt = expiresAt
	}
	if maxViews != nil {
		l.MaxViews = maxViews
	}
	l.UpdatedAt = time.Now()
	f.links[wishlistID] = l
	return &l, nil
}

func (f *fakeStore) DeletePublicLink(ctx context.Context, wishlistID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[wishlistID]; !ok {
		return db.ErrPublicLinkNotFound
	}
	delete(f.links, wishlistID)
	return nil
}

// contributions

func (f *fakeStore) CreateContribution(ctx context.Context, c *models.Contribution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	it := f.items[c.ItemID]
	c.Currency = it.CurrencyCode()
	f.contributions = append(f.contributions, *c)
	return nil
}

func (f *fakeStore) ListContributions(ctx context.Context, itemIDs []uuid.UUID) ([]models.Contribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = true
	}
	var out []models.Contribution
	for _, c := range f.contributions {
		if want[c.ItemID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListWishlistContributions(ctx context.Context, wishlistID uuid.UUID) ([]models.Contribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Contribution
	for _, c := range f.contributions {
		if it, ok := f.items[c.ItemID]; ok && it.WishlistID == wishlistID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListContributionsWithUsers(ctx context.Context, itemID uuid.UUID) ([]models.ContributionWithUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ContributionWithUser
	for _, c := range f.contributions {
		if c.ItemID == itemID {
			out = append(out, models.ContributionWithUser{Contribution: c, DisplayName: f.names[c.UserID]})
		}
	}
	return out, nil
}

func (f *fakeStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	f.activity = append(f.activity, *a)
	return nil
}

// notifications

func (f *fakeStore) CreateNotifications(ctx context.Context, ns []models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNotifications {
		return errors.New("notification insert failed")
	}
	for _, n := range ns {
		n.ID = uuid.New()
		n.CreatedAt = time.Now()
		f.notifications = append(f.notifications, n)
	}
	return nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if f.notifications[i].UserID == userID {
			out = append(out, f.notifications[i])
		}
	}
	return out, nil
}

func (f *fakeStore) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].ReadAt = &now
			return nil
		}
	}
	return db.ErrNotificationNotFound
}

func (f *fakeStore) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.notifications {
		if f.notifications[i].UserID == userID && f.notifications[i].ReadAt == nil {
			f.notifications[i].ReadAt = &now
			n++
		}
	}
	return n, nil
}

// suggestions

func (f *fakeStore) CreateSuggestion(ctx context.Context, s *models.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.suggestions[s.ID] = *s
	return nil
}

func (f *fakeStore) ListPendingSuggestions(ctx context.Context, wishlistID uuid.UUID) ([]models.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Suggestion
	for _, s := range f.suggestions {
		if s.WishlistID == wishlistID && s.Status == models.SuggestionPending {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ResolveSuggestion(ctx context.Context, wishlistID, id uuid.UUID, status string) (*models.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.suggestions[id]
	if !ok || s.WishlistID != wishlistID || s.Status != models.SuggestionPending {
		return nil, db.ErrSuggestionNotFound
	}
	s.Status = status
	f.suggestions[id] = s
	return &s, nil
}
