package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rl1809/pizzan/internal/adapter/storage"
	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/core/service"
	"github.com/rl1809/pizzan/internal/core/session"
)

const testSecret = "test-secret-for-handlers"

type testEnv struct {
	store   *storage.MemoryAdapter
	signer  *session.Signer
	handler http.Handler
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	store := storage.NewMemoryAdapter()
	signer, err := session.NewSigner([]byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	h := NewHTTPHandler(
		service.NewCatalogService(store, nil, nil),
		service.NewCartService(store),
		service.NewUserService(store),
		signer,
		opts,
	)
	return &testEnv{store: store, signer: signer, handler: h.Routes()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedFoods(t *testing.T, items ...domain.MenuItem) []string {
	t.Helper()

	ids := make([]string, 0, len(items))
	for _, item := range items {
		res, err := e.store.InsertFood(context.Background(), item)
		if err != nil {
			t.Fatalf("seed food: %v", err)
		}
		ids = append(ids, res.InsertedID)
	}
	return ids
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", CookieName)
	return nil
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "Pizzan website" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody[map[string]string](t, rec); got["status"] != "ok" {
		t.Errorf("unexpected health body %v", got)
	}
}

func TestListFoods_Pagination(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.seedFoods(t,
		domain.MenuItem{Name: "A"},
		domain.MenuItem{Name: "B"},
		domain.MenuItem{Name: "C"},
		domain.MenuItem{Name: "D"},
		domain.MenuItem{Name: "E"},
	)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"A", "B", "C", "D", "E"}},
		{"?page=0&size=2", []string{"A", "B"}},
		{"?page=1&size=2", []string{"C", "D"}},
		{"?page=2&size=2", []string{"E"}},
		{"?page=5&size=2", []string{}},
		{"?page=4611686018427387904&size=3", []string{}},
		{"?page=4611686018427387904&size=4", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/foods"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			items := decodeBody[[]domain.MenuItem](t, rec)
			if len(items) != len(tt.want) {
				t.Fatalf("expected %d items, got %d", len(tt.want), len(items))
			}
			for i, name := range tt.want {
				if items[i].Name != name {
					t.Errorf("item %d: expected %s, got %s", i, name, items[i].Name)
				}
			}
		})
	}
}

func TestListFoods_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodGet, "/foods", nil)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected [], got %q", rec.Body.String())
	}
}

func TestListFoods_FilterAndSort(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.seedFoods(t,
		domain.MenuItem{Name: "Margherita", Price: 9, Email: "chef@pizzan.test"},
		domain.MenuItem{Name: "Hawaii", Price: 10, Email: "other@pizzan.test"},
		domain.MenuItem{Name: "Diavola", Price: 12, Email: "chef@pizzan.test"},
		domain.MenuItem{Name: "Funghi", Price: 8, Email: "chef@pizzan.test"},
	)

	rec := env.do(t, http.MethodGet, "/foods?email=chef@pizzan.test&sortField=price&sortOrder=desc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	items := decodeBody[[]domain.MenuItem](t, rec)
	want := []string{"Diavola", "Margherita", "Funghi"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("item %d: expected %s, got %s", i, name, items[i].Name)
		}
		if items[i].Email != "chef@pizzan.test" {
			t.Errorf("item %d leaked owner %s", i, items[i].Email)
		}
	}
}

func TestListFoods_BadQuery(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, query := range []string{
		"?page=-1&size=2",
		"?size=abc",
		"?sortField=secret",
		"?sortField=price&sortOrder=up",
	} {
		t.Run(query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/foods"+query, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestFoodsCount(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.seedFoods(t, domain.MenuItem{Name: "A"}, domain.MenuItem{Name: "B"})

	rec := env.do(t, http.MethodGet, "/foodsCount", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody[CountResponse](t, rec); got.Count != 2 {
		t.Errorf("expected count 2, got %d", got.Count)
	}
}

func TestCreateAndGetFood(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/foods", MenuItemRequest{
		Name:     "Quattro Stagioni",
		Price:    13.5,
		Email:    "chef@pizzan.test",
		Quantity: 7,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	created := decodeBody[domain.InsertResult](t, rec)
	if !created.Acknowledged || created.InsertedID == "" {
		t.Fatalf("unexpected insert result %+v", created)
	}

	rec = env.do(t, http.MethodGet, "/foods/"+created.InsertedID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	item := decodeBody[domain.MenuItem](t, rec)
	if item.ID != created.InsertedID || item.Name != "Quattro Stagioni" || item.Price != 13.5 || item.Quantity != 7 {
		t.Errorf("unexpected item %+v", item)
	}
}

func TestGetFood_NotFound(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodGet, "/foods/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreateFood_MalformedBody(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/foods", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateFoodStock(t *testing.T) {
	env := newTestEnv(t, Options{})
	ids := env.seedFoods(t, domain.MenuItem{Name: "Capricciosa", Price: 11, OrderCount: 1, Quantity: 10})

	rec := env.do(t, http.MethodPatch, "/foods/"+ids[0], map[string]int{"order_count": 4, "quantity": 6})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	res := decodeBody[domain.UpdateResult](t, rec)
	if res.MatchedCount != 1 || res.ModifiedCount != 1 {
		t.Errorf("unexpected update result %+v", res)
	}

	item := decodeBody[domain.MenuItem](t, env.do(t, http.MethodGet, "/foods/"+ids[0], nil))
	if item.OrderCount != 4 || item.Quantity != 6 {
		t.Errorf("expected order_count=4 quantity=6, got %d/%d", item.OrderCount, item.Quantity)
	}
	if item.Name != "Capricciosa" || item.Price != 11 {
		t.Errorf("other fields changed: %+v", item)
	}
}

func TestUpdateFoodStock_MissingField(t *testing.T) {
	env := newTestEnv(t, Options{})
	ids := env.seedFoods(t, domain.MenuItem{Name: "Capricciosa"})

	rec := env.do(t, http.MethodPatch, "/foods/"+ids[0], map[string]int{"order_count": 4})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateFoodStock_UnknownID(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPatch, "/foods/missing", map[string]int{"order_count": 1, "quantity": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if res := decodeBody[domain.UpdateResult](t, rec); res.MatchedCount != 0 {
		t.Errorf("expected matchedCount 0, got %d", res.MatchedCount)
	}
}

func TestUpsertFood(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPut, "/foods/pizza-1", MenuItemRequest{Name: "Bianca", Price: 10})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	created := decodeBody[domain.UpdateResult](t, rec)
	if created.UpsertedCount != 1 || created.UpsertedID != "pizza-1" {
		t.Errorf("expected upsert to create pizza-1, got %+v", created)
	}

	rec = env.do(t, http.MethodPut, "/foods/pizza-1", MenuItemRequest{Name: "Bianca", Price: 11})
	replaced := decodeBody[domain.UpdateResult](t, rec)
	if replaced.MatchedCount != 1 || replaced.ModifiedCount != 1 || replaced.UpsertedCount != 0 {
		t.Errorf("expected replace, got %+v", replaced)
	}

	item := decodeBody[domain.MenuItem](t, env.do(t, http.MethodGet, "/foods/pizza-1", nil))
	if item.Price != 11 {
		t.Errorf("expected price 11, got %v", item.Price)
	}
}

func TestAddAndRemoveCartEntry(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/mycarts", CartEntryRequest{Email: "a@pizzan.test", Name: "Margherita", Quantity: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	added := decodeBody[domain.InsertResult](t, rec)

	rec = env.do(t, http.MethodDelete, "/mycarts/"+added.InsertedID, nil)
	if res := decodeBody[domain.DeleteResult](t, rec); res.DeletedCount != 1 {
		t.Errorf("expected deletedCount 1, got %d", res.DeletedCount)
	}

	rec = env.do(t, http.MethodDelete, "/mycarts/"+added.InsertedID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if res := decodeBody[domain.DeleteResult](t, rec); res.DeletedCount != 0 {
		t.Errorf("expected deletedCount 0, got %d", res.DeletedCount)
	}
}

func TestAddCartEntry_RequiresEmail(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/mycarts", CartEntryRequest{Name: "Margherita"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListCart_Gate(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	for _, email := range []string{"a@pizzan.test", "a@pizzan.test", "b@pizzan.test"} {
		if _, err := env.store.InsertCartEntry(ctx, domain.CartEntry{Email: email, Name: "Margherita"}); err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}

	token, _, err := env.signer.Issue("a@pizzan.test")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	cookie := &http.Cookie{Name: CookieName, Value: token}

	t.Run("no cookie", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/mycarts?email=a@pizzan.test", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage cookie", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/mycarts?email=a@pizzan.test", nil, &http.Cookie{Name: CookieName, Value: "garbage"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		old, _, err := env.signer.IssueAt("a@pizzan.test", time.Now().Add(-2*time.Hour))
		if err != nil {
			t.Fatalf("IssueAt: %v", err)
		}
		rec := env.do(t, http.MethodGet, "/mycarts?email=a@pizzan.test", nil, &http.Cookie{Name: CookieName, Value: old})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("other owner", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/mycarts?email=b@pizzan.test", nil, cookie)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("own cart", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/mycarts?email=a@pizzan.test", nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		entries := decodeBody[[]domain.CartEntry](t, rec)
		if len(entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(entries))
		}
	})

	t.Run("email defaults to session", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/mycarts", nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if entries := decodeBody[[]domain.CartEntry](t, rec); len(entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(entries))
		}
	})
}

func TestTokenIssueThenLogout(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/jwt", TokenRequest{Email: "a@pizzan.test"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody[StatusResponse](t, rec); !got.Success {
		t.Errorf("expected success, got %+v", got)
	}
	cookie := sessionCookieFrom(t, rec)
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode || cookie.Secure {
		t.Errorf("unexpected cookie flags %+v", cookie)
	}
	if cookie.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("expected Max-Age 3600, got %d", cookie.MaxAge)
	}

	rec = env.do(t, http.MethodGet, "/mycarts?email=a@pizzan.test", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with issued cookie, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cleared := sessionCookieFrom(t, rec)
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Errorf("expected cleared cookie, got %+v", cleared)
	}

	// a client honouring the cleared cookie sends nothing
	rec = env.do(t, http.MethodGet, "/mycarts?email=a@pizzan.test", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestTokenIssue_SecureCookie(t *testing.T) {
	env := newTestEnv(t, Options{CookieSecure: true})

	rec := env.do(t, http.MethodPost, "/jwt", TokenRequest{Email: "a@pizzan.test"})
	cookie := sessionCookieFrom(t, rec)
	if !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("expected Secure + SameSite=None, got %+v", cookie)
	}
}

func TestTokenIssue_RequiresEmail(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/jwt", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookie expected on failure")
	}
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, req := range []UserRequest{
		{Email: "admin@pizzan.test", AdminID: "adm-1", Name: "Admin"},
		{Email: "guest@pizzan.test", Name: "Guest"},
		{Email: "guest@pizzan.test", Name: "Guest again"},
	} {
		rec := env.do(t, http.MethodPost, "/users", req)
		if rec.Code != http.StatusOK {
			t.Fatalf("create user: expected 200, got %d", rec.Code)
		}
	}

	users := decodeBody[[]domain.User](t, env.do(t, http.MethodGet, "/users", nil))
	if len(users) != 3 {
		t.Errorf("expected 3 users, got %d", len(users))
	}

	rec := env.do(t, http.MethodGet, "/users/adm-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if user := decodeBody[domain.User](t, rec); user.Email != "admin@pizzan.test" {
		t.Errorf("unexpected user %+v", user)
	}

	rec = env.do(t, http.MethodGet, "/users/adm-404", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreateUser_RequiresEmail(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/users", UserRequest{Name: "Nobody"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, Options{CORSOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/foods", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected allow-origin %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("expected credentials allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/foods", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin for unknown origin, got %q", got)
	}
}
