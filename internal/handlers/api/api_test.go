package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/models"
	"wishlist/internal/service"
)

// fakeService answers every handler interface. err, when set, is returned by
// every call.
type fakeService struct {
	err        error
	item       *models.ItemView
	link       *models.PublicLink
	lastCaller *uuid.UUID
	lastToken  string
	lastItem   service.NewItem
	lastRes    service.ReserveInput
}

func (f *fakeService) ListItems(ctx context.Context, userID, listID uuid.UUID) ([]models.ItemView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.ItemView{*f.item}, nil
}

func (f *fakeService) GetItem(ctx context.Context, userID, listID, itemID uuid.UUID) (*models.ItemView, error) {
	return f.item, f.err
}

func (f *fakeService) CreateItem(ctx context.Context, userID, listID uuid.UUID, in service.NewItem) (*models.ItemView, error) {
	f.lastItem = in
	return f.item, f.err
}

func (f *fakeService) Reserve(ctx context.Context, userID, listID, itemID uuid.UUID, in service.ReserveInput) (*models.ItemView, error) {
	f.lastRes = in
	return f.item, f.err
}

func (f *fakeService) DeleteItem(ctx context.Context, userID, listID, itemID uuid.UUID) error {
	return f.err
}

func (f *fakeService) AddContribution(ctx context.Context, userID, listID, itemID uuid.UUID, in service.ContributionInput) (*models.ItemView, error) {
	return f.item, f.err
}

func (f *fakeService) Contributions(ctx context.Context, userID, listID, itemID uuid.UUID) (*models.ContributionBreakdown, error) {
	return &models.ContributionBreakdown{}, f.err
}

func (f *fakeService) DeleteList(ctx context.Context, userID, listID uuid.UUID) error { return f.err }

func (f *fakeService) DeleteImpact(ctx context.Context, userID, listID uuid.UUID) (*models.DeleteImpact, error) {
	return &models.DeleteImpact{SharedWithCount: 2, ContributorsCount: 1}, f.err
}

func (f *fakeService) SharePublicly(ctx context.Context, userID, listID uuid.UUID, in service.PublicLinkInput) (*models.PublicLink, error) {
	return f.link, f.err
}

func (f *fakeService) PublicLink(ctx context.Context, userID, listID uuid.UUID) (*models.PublicLink, error) {
	return f.link, f.err
}

func (f *fakeService) RevokePublicLink(ctx context.Context, userID, listID uuid.UUID) error {
	return f.err
}

func (f *fakeService) Suggestions(ctx context.Context, userID, listID uuid.UUID) ([]models.Suggestion, error) {
	return nil, f.err
}

func (f *fakeService) AcceptSuggestion(ctx context.Context, userID, listID, suggestionID uuid.UUID) (*models.ItemView, error) {
	return f.item, f.err
}

func (f *fakeService) RejectSuggestion(ctx context.Context, userID, listID, suggestionID uuid.UUID) error {
	return f.err
}

func (f *fakeService) ViewPublic(ctx context.Context, token string) (*service.PublicView, error) {
	f.lastToken = token
	if f.err != nil {
		return nil, f.err
	}
	return &service.PublicView{Items: []models.ItemView{*f.item}}, nil
}

func (f *fakeService) ReservePublic(ctx context.Context, userID uuid.UUID, token string, itemID uuid.UUID, in service.ReserveInput) (*models.ItemView, error) {
	f.lastToken = token
	return f.item, f.err
}

func (f *fakeService) AddContributionPublic(ctx context.Context, userID uuid.UUID, token string, itemID uuid.UUID, in service.ContributionInput) (*models.ItemView, error) {
	f.lastToken = token
	return f.item, f.err
}

func (f *fakeService) Suggest(ctx context.Context, caller *uuid.UUID, token string, in service.NewSuggestion) (*models.Suggestion, error) {
	f.lastCaller = caller
	f.lastToken = token
	return &models.Suggestion{ID: uuid.New(), Title: in.Title}, f.err
}

func (f *fakeService) Notifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	return nil, f.err
}

func (f *fakeService) MarkRead(ctx context.Context, userID, id uuid.UUID) error { return f.err }

func (f *fakeService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 3, f.err
}

var testUser = &models.User{ID: uuid.New(), Email: "sam@example.com"}

// withTestUser authenticates requests that carry an X-Test-User header.
func withTestUser(c fiber.Ctx) error {
	if c.Get("X-Test-User") != "" {
		c.Locals("user", testUser)
	}
	return c.Next()
}

func newTestApp(svc *fakeService) *fiber.App {
	items := NewItemHandler(svc)
	lists := NewWishlistHandler(svc, "https://wish.example.com")
	public := NewPublicHandler(svc)
	notifications := NewNotificationHandler(svc)

	app := fiber.New()
	app.Use(withTestUser)
	app.Get("/wishlists/:id/items", items.List)
	app.Post("/wishlists/:id/items", items.Create)
	app.Patch("/wishlists/:id/items/:itemID", items.Reserve)
	app.Delete("/wishlists/:id/items/:itemID", items.Delete)
	app.Post("/wishlists/:id/items/:itemID/contributions", items.Contribute)
	app.Delete("/wishlists/:id", lists.Delete)
	app.Get("/wishlists/:id/delete-impact", lists.DeleteImpact)
	app.Post("/wishlists/:id/public-link", lists.SharePublicly)
	app.Get("/wishlists/:id/public-link", lists.PublicLink)
	app.Get("/wishlists/:id/suggestions", lists.Suggestions)
	app.Post("/wishlists/:id/suggestions/:suggestionID/reject", lists.RejectSuggestion)
	app.Get("/public/wishlists", public.View)
	app.Patch("/public/wishlists/items/:itemID", public.Reserve)
	app.Post("/public/wishlists/suggestions", public.Suggest)
	app.Get("/notifications", notifications.List)
	app.Patch("/notifications/:id/read", notifications.MarkRead)
	app.Post("/notifications/read-all", notifications.MarkAllRead)
	return app
}

type envelope struct {
	Status      string           `json:"status"`
	Data        json.RawMessage  `json:"data"`
	Error       string           `json:"error"`
	Code        string           `json:"code"`
	CurrentItem *models.ItemView `json:"current_item"`
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, authed bool) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("X-Test-User", "1")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
	}
	return resp, env
}

func sampleItem() *models.ItemView {
	return &models.ItemView{Item: models.Item{ID: uuid.New(), Title: "Bike", Status: models.ClaimAvailable}}
}

func TestReserveConflictResponse(t *testing.T) {
	claimant := uuid.New()
	current := sampleItem()
	current.Status = models.ClaimReserved
	current.ReservedByID = &claimant

	svc := &fakeService{err: &apperr.ConflictError{Reason: "This item was just reserved by someone else. Please refresh.", Current: current}}
	app := newTestApp(svc)

	path := "/wishlists/" + uuid.NewString() + "/items/" + uuid.NewString()
	resp, env := doRequest(t, app, "PATCH", path, `{"reservation_status":"reserved"}`, true)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if env.Code != "reservation_conflict" {
		t.Errorf("code = %q", env.Code)
	}
	if env.CurrentItem == nil || env.CurrentItem.ReservedByID == nil || *env.CurrentItem.ReservedByID != claimant {
		t.Errorf("current_item = %+v", env.CurrentItem)
	}
	if svc.lastRes.Status != models.ClaimReserved {
		t.Errorf("status passed to service = %q", svc.lastRes.Status)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	path := "/wishlists/" + uuid.NewString() + "/items"

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", apperr.NotFound("Wishlist not found"), fiber.StatusNotFound, "Wishlist not found"},
		{"forbidden", apperr.Forbidden("Not allowed to access this wishlist"), fiber.StatusForbidden, "Not allowed to access this wishlist"},
		{"validation", apperr.Validation("title is required"), fiber.StatusUnprocessableEntity, "title is required"},
		{"unexpected", errors.New("connection reset"), fiber.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeService{err: tt.err})
			resp, env := doRequest(t, app, "GET", path, "", true)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if env.Status != "error" || env.Error != tt.wantMsg {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestRequestValidation(t *testing.T) {
	listPath := "/wishlists/" + uuid.NewString()
	itemPath := listPath + "/items/" + uuid.NewString()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		authed     bool
		wantStatus int
		wantMsg    string
	}{
		{"unauthenticated", "GET", listPath + "/items", "", false, fiber.StatusUnauthorized, "Not authenticated"},
		{"malformed list id", "GET", "/wishlists/nope/items", "", true, fiber.StatusNotFound, "Wishlist not found"},
		{"malformed item id", "PATCH", listPath + "/items/nope", `{"reservation_status":"reserved"}`, true, fiber.StatusNotFound, "Item not found"},
		{"invalid json", "POST", listPath + "/items", `{"title":`, true, fiber.StatusBadRequest, "invalid request body"},
		{"missing title", "POST", listPath + "/items", `{}`, true, fiber.StatusUnprocessableEntity, "title is required"},
		{"bad link url", "POST", listPath + "/items", `{"title":"Bike","link_url":"javascript:alert(1)"}`, true, fiber.StatusUnprocessableEntity, "link_url must be an http:// or https:// URL"},
		{"unknown status", "PATCH", itemPath, `{"reservation_status":"gifted"}`, true, fiber.StatusUnprocessableEntity, "reservation_status must be one of: available, reserved, purchased"},
		{"zero amount", "POST", itemPath + "/contributions", `{"amount":0}`, true, fiber.StatusUnprocessableEntity, "amount must be greater than 0"},
		{"zero max views", "POST", listPath + "/public-link", `{"max_views":-1}`, true, fiber.StatusUnprocessableEntity, "max_views must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeService{item: sampleItem()})
			resp, env := doRequest(t, app, tt.method, tt.path, tt.body, tt.authed)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if env.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", env.Error, tt.wantMsg)
			}
		})
	}
}

func TestCreateItem(t *testing.T) {
	svc := &fakeService{item: sampleItem()}
	app := newTestApp(svc)

	resp, env := doRequest(t, app, "POST", "/wishlists/"+uuid.NewString()+"/items",
		`{"title":"Bike","link_url":"https://shop.example.com/bike","price":120.5,"currency":"EUR"}`, true)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if env.Status != "ok" {
		t.Errorf("envelope status = %q", env.Status)
	}
	if svc.lastItem.Title != "Bike" || svc.lastItem.Price == nil || *svc.lastItem.Price != 120.5 {
		t.Errorf("service input = %+v", svc.lastItem)
	}
}

func TestNoContentResponses(t *testing.T) {
	listPath := "/wishlists/" + uuid.NewString()
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"delete item", "DELETE", listPath + "/items/" + uuid.NewString()},
		{"delete list", "DELETE", listPath},
		{"reject suggestion", "POST", listPath + "/suggestions/" + uuid.NewString() + "/reject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doRequest(t, newTestApp(&fakeService{}), tt.method, tt.path, "", true)
			if resp.StatusCode != fiber.StatusNoContent {
				t.Errorf("status = %d, want 204", resp.StatusCode)
			}
		})
	}
}

func TestPublicLinkResponse(t *testing.T) {
	link := &models.PublicLink{ID: uuid.New(), Token: "abc123"}
	app := newTestApp(&fakeService{link: link})

	resp, env := doRequest(t, app, "POST", "/wishlists/"+uuid.NewString()+"/public-link", "", true)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var data struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Token != "abc123" || data.URL != "https://wish.example.com/public/abc123" {
		t.Errorf("data = %+v", data)
	}

	resp, env = doRequest(t, newTestApp(&fakeService{}), "GET", "/wishlists/"+uuid.NewString()+"/public-link", "", true)
	if resp.StatusCode != fiber.StatusNotFound || env.Error != "Public link not found" {
		t.Errorf("missing link: %d %q", resp.StatusCode, env.Error)
	}
}

func TestPublicRoutes(t *testing.T) {
	t.Run("view passes the token", func(t *testing.T) {
		svc := &fakeService{item: sampleItem()}
		resp, _ := doRequest(t, newTestApp(svc), "GET", "/public/wishlists?token=tok", "", false)
		if resp.StatusCode != fiber.StatusOK || svc.lastToken != "tok" {
			t.Errorf("status = %d, token = %q", resp.StatusCode, svc.lastToken)
		}
	})

	t.Run("reserve requires sign in", func(t *testing.T) {
		resp, _ := doRequest(t, newTestApp(&fakeService{}), "PATCH",
			"/public/wishlists/items/"+uuid.NewString()+"?token=tok", `{"reservation_status":"reserved"}`, false)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("anonymous suggestion", func(t *testing.T) {
		svc := &fakeService{}
		resp, _ := doRequest(t, newTestApp(svc), "POST", "/public/wishlists/suggestions?token=tok", `{"title":"Scarf"}`, false)
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		if svc.lastCaller != nil {
			t.Error("anonymous suggestion carried a caller")
		}
	})

	t.Run("signed in suggestion", func(t *testing.T) {
		svc := &fakeService{}
		doRequest(t, newTestApp(svc), "POST", "/public/wishlists/suggestions?token=tok", `{"title":"Scarf"}`, true)
		if svc.lastCaller == nil || *svc.lastCaller != testUser.ID {
			t.Errorf("caller = %v", svc.lastCaller)
		}
	})
}

func TestNotificationRoutes(t *testing.T) {
	app := newTestApp(&fakeService{})

	resp, env := doRequest(t, app, "GET", "/notifications", "", true)
	if resp.StatusCode != fiber.StatusOK || string(env.Data) != "[]" {
		t.Errorf("list: %d %s", resp.StatusCode, env.Data)
	}

	resp, env = doRequest(t, app, "POST", "/notifications/read-all", "", true)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(env.Data), `"marked":3`) {
		t.Errorf("read-all: %d %s", resp.StatusCode, env.Data)
	}

	notFound := newTestApp(&fakeService{err: apperr.NotFound("Notification not found")})
	resp, _ = doRequest(t, notFound, "PATCH", "/notifications/"+uuid.NewString()+"/read", "", true)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("foreign mark read: %d", resp.StatusCode)
	}
}
