package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/live"
	"storefront/internal/store/filestore"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create stores: %v", err)
	}
	authSvc := auth.NewService(stores.Users, stores.Carts, auth.Config{
		Secret:      "test-secret",
		AdminDomain: "admin.com",
	})
	feed := live.NewHub(stores.Products)
	go feed.Run()

	return NewRouter(stores, authSvc, feed, false)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return out
}

// registerAndLogin provisions an account through the API and returns its
// token and cart id.
func registerAndLogin(t *testing.T, router *gin.Engine, email string) (token, cartID string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/sessions/register", "", map[string]any{
		"email": email, "password": "hunter2", "first_name": "Test", "last_name": "User",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register code = %d: %s", w.Code, w.Body.String())
	}
	user := decode(t, w)["user"].(map[string]any)
	cartID, _ = user["cart"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/sessions/login", "", map[string]any{
		"email": email, "password": "hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login code = %d: %s", w.Code, w.Body.String())
	}
	token = decode(t, w)["token"].(string)
	return token, cartID
}

func TestProductsRequireAuth(t *testing.T) {
	router := setupServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/products", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", w.Code)
	}
	if decode(t, w)["status"] != "error" {
		t.Fatal("expected error envelope")
	}
}

func TestProductMutationRequiresAdmin(t *testing.T) {
	router := setupServer(t)
	userToken, _ := registerAndLogin(t, router, "user@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/products", userToken, map[string]any{
		"title": "A", "price": 10, "stock": 5, "category": "x",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403 for a non-admin", w.Code)
	}
}

func TestStorefrontScenario(t *testing.T) {
	router := setupServer(t)
	adminToken, _ := registerAndLogin(t, router, "boss@admin.com")
	userToken, cartID := registerAndLogin(t, router, "shopper@example.com")

	// Admin adds a product.
	w := doJSON(t, router, http.MethodPost, "/api/products", adminToken, map[string]any{
		"title": "A", "price": 10, "stock": 5, "category": "x",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create product code = %d: %s", w.Code, w.Body.String())
	}
	productID := decode(t, w)["product"].(map[string]any)["id"].(string)

	// The listing shows it.
	w = doJSON(t, router, http.MethodGet, "/api/products", userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code = %d", w.Code)
	}
	listing := decode(t, w)
	payload := listing["payload"].([]any)
	if len(payload) != 1 {
		t.Fatalf("payload size = %d, want 1", len(payload))
	}
	first := payload[0].(map[string]any)
	if first["title"] != "A" || first["price"].(float64) != 10 {
		t.Fatalf("unexpected product: %+v", first)
	}
	if listing["totalPages"].(float64) != 1 || listing["hasNextPage"].(bool) {
		t.Fatalf("unexpected paging metadata: %+v", listing)
	}

	// Add to cart with quantity 3.
	w = doJSON(t, router, http.MethodPost, "/api/carts/"+cartID+"/product/"+productID, userToken,
		map[string]any{"quantity": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("add to cart code = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/carts/"+cartID, userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart code = %d", w.Code)
	}
	items := decode(t, w)["data"].(map[string]any)["products"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["quantity"].(float64) != 3 {
		t.Fatalf("unexpected cart items: %+v", items)
	}

	// Adding the same product again merges quantities.
	w = doJSON(t, router, http.MethodPost, "/api/carts/"+cartID+"/product/"+productID, userToken,
		map[string]any{"quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("second add code = %d", w.Code)
	}
	items = decode(t, w)["data"].(map[string]any)["products"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["quantity"].(float64) != 5 {
		t.Fatalf("merge broken: %+v", items)
	}
}

func TestCartOwnershipEnforced(t *testing.T) {
	router := setupServer(t)
	_, cartID := registerAndLogin(t, router, "owner@example.com")
	otherToken, _ := registerAndLogin(t, router, "other@example.com")
	adminToken, _ := registerAndLogin(t, router, "boss@admin.com")

	w := doJSON(t, router, http.MethodGet, "/api/carts/"+cartID, otherToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign cart access code = %d, want 403", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/carts/"+cartID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin cart access code = %d, want 200", w.Code)
	}
}

func TestRegisterConflict(t *testing.T) {
	router := setupServer(t)
	registerAndLogin(t, router, "dup@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/sessions/register", "", map[string]any{
		"email": "dup@example.com", "password": "other", "first_name": "X", "last_name": "Y",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("code = %d, want 409", w.Code)
	}
}

func TestLoginFailuresLookAlike(t *testing.T) {
	router := setupServer(t)
	registerAndLogin(t, router, "jane@example.com")

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/sessions/login", "", map[string]any{
		"email": "jane@example.com", "password": "not-it",
	})
	unknownEmail := doJSON(t, router, http.MethodPost, "/api/sessions/login", "", map[string]any{
		"email": "ghost@example.com", "password": "hunter2",
	})

	if wrongPassword.Code != unknownEmail.Code {
		t.Fatalf("codes differ: %d vs %d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("bodies differ: %s vs %s", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestSessionCurrentAndLogout(t *testing.T) {
	router := setupServer(t)
	token, _ := registerAndLogin(t, router, "jane@example.com")

	w := doJSON(t, router, http.MethodGet, "/api/sessions/current", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("current code = %d", w.Code)
	}
	user := decode(t, w)["user"].(map[string]any)
	if user["email"] != "jane@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password hash leaked in response")
	}

	w = doJSON(t, router, http.MethodGet, "/api/sessions/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout code = %d", w.Code)
	}
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_token" && c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("logout must expire the session cookie")
	}
}

func TestDeleteUnknownProduct(t *testing.T) {
	router := setupServer(t)
	adminToken, _ := registerAndLogin(t, router, "boss@admin.com")

	w := doJSON(t, router, http.MethodDelete, "/api/products/64b5f0c2a1b2c3d4e5f60718", adminToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}
}

func TestAddToCartRejectsBadQuantity(t *testing.T) {
	router := setupServer(t)
	adminToken, _ := registerAndLogin(t, router, "boss@admin.com")
	userToken, cartID := registerAndLogin(t, router, "shopper@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/products", adminToken, map[string]any{
		"title": "A", "price": 10, "stock": 5, "category": "x",
	})
	productID := decode(t, w)["product"].(map[string]any)["id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/carts/"+cartID+"/product/"+productID, userToken,
		map[string]any{"quantity": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}
