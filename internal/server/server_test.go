package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/internal/testutil"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/jwt"
	"go-inventory-tracker/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type testServer struct {
	app       *fiber.App
	token     string
	inventory service.InventoryService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.NewUser(t, db, "clerk", "secret123")

	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	warehouseRepo := repository.NewWarehouseRepo(db)
	userRepo := repository.NewUserRepo(db)

	reports := service.NewReportService(productRepo, categoryRepo)
	svc := Services{
		Inventory: service.NewInventoryService(productRepo, txRepo, categoryRepo, warehouseRepo, db, nil),
		Catalog:   service.NewCatalogService(categoryRepo, warehouseRepo, db, nil),
		Reports:   reports,
		Dashboard: service.NewDashboardService(productRepo, txRepo, reports),
		Auth:      service.NewAuthService(userRepo, jwt.NewManager("test-secret", time.Hour)),
		Users:     service.NewUserService(userRepo, db),
	}

	login, err := svc.Auth.Login(context.Background(), "clerk", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	hub := ws.NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)

	return &testServer{
		app:       New(svc, hub, logger.Nop(), Options{Metrics: true}),
		token:     login.Token,
		inventory: svc.Inventory,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	body := map[string]interface{}{}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) && len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp, body
}

func (s *testServer) authed(method, target, jsonBody string) *http.Request {
	var body io.Reader
	if jsonBody != "" {
		body = strings.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
	if jsonBody != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

func (s *testServer) createProduct(t *testing.T, sku string, qty int) string {
	t.Helper()
	p := decimal.RequireFromString("9.99")
	product, err := s.inventory.CreateProduct(context.Background(), &service.ProductInput{
		SKU: sku, Name: "Item " + sku, Quantity: qty, Price: &p,
	}, service.SystemActor)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product.ID.String()
}

func TestBrowserWithoutSessionIsRedirected(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/products?search=a", nil)
	req.Header.Set(fiber.HeaderAccept, "text/html")

	resp, _ := s.do(t, req)
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	want := "/login?next=" + url.QueryEscape("/products?search=a")
	if loc := resp.Header.Get(fiber.HeaderLocation); loc != want {
		t.Fatalf("location = %q, want %q", loc, want)
	}
}

func TestBadBearerGets401(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")

	resp, body := s.do(t, req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if body["error"] == nil {
		t.Fatalf("missing error message")
	}
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/metrics", "/login"} {
		resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("GET %s = %d", path, resp.StatusCode)
		}
	}
}

func TestFormLoginSetsCookieAndRedirects(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{"username": {"clerk"}, "password": {"secret123"}, "next": {"/reports"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, _ := s.do(t, req)
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get(fiber.HeaderLocation); loc != "/reports" {
		t.Fatalf("location = %q", loc)
	}

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" || !session.HttpOnly {
		t.Fatalf("session cookie = %+v", session)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session.Value})
	resp, body := s.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("dashboard with cookie = %d", resp.StatusCode)
	}
	if _, ok := body["total_products"]; !ok {
		t.Fatalf("dashboard body = %v", body)
	}
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{"username": {"clerk"}, "password": {"secret123"}, "next": {"//evil.example"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, _ := s.do(t, req)
	if loc := resp.Header.Get(fiber.HeaderLocation); loc != "/" {
		t.Fatalf("location = %q, want /", loc)
	}
}

func TestLoginFailureEchoesUsername(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"clerk","password":"nope"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, body := s.do(t, req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	form, _ := body["form"].(map[string]interface{})
	if form["username"] != "clerk" {
		t.Fatalf("form echo = %v", body["form"])
	}
	if _, leaked := form["password"]; leaked {
		t.Fatalf("password echoed back")
	}
}

func TestLogoutKillsToken(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, s.authed(http.MethodPost, "/logout", ""))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("logout = %d", resp.StatusCode)
	}
	resp, _ = s.do(t, s.authed(http.MethodGet, "/products", ""))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("after logout = %d, want 401", resp.StatusCode)
	}
}

func TestOversizedOutIsConflict(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "PROD-001", 5)

	resp, body := s.do(t, s.authed(http.MethodPost, "/transactions",
		`{"product_id":"`+id+`","type":"OUT","quantity":6,"note":"pick"}`))
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if body["available"] != float64(5) || body["requested"] != float64(6) {
		t.Fatalf("body = %v", body)
	}
	form, _ := body["form"].(map[string]interface{})
	if form["note"] != "pick" {
		t.Fatalf("form echo = %v", body["form"])
	}

	resp, body = s.do(t, s.authed(http.MethodGet, "/products/"+id, ""))
	if resp.StatusCode != fiber.StatusOK || body["quantity"] != float64(5) {
		t.Fatalf("product after rejected OUT: %d %v", resp.StatusCode, body)
	}
}

func TestRecordTransaction(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "PROD-002", 5)

	resp, body := s.do(t, s.authed(http.MethodPost, "/transactions",
		`{"product_id":"`+id+`","type":"IN","quantity":4}`))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201: %v", resp.StatusCode, body)
	}
	if body["message"] != "Transaction recorded successfully! Product quantity updated." {
		t.Fatalf("message = %v", body["message"])
	}

	resp, _ = s.do(t, s.authed(http.MethodGet, "/transactions?product="+id, ""))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list = %d", resp.StatusCode)
	}
}

func TestInvalidProductIs422WithForm(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, s.authed(http.MethodPost, "/products", `{"sku":"NEW-1","price":"1.00"}`))
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if body["field"] != "name" {
		t.Fatalf("field = %v", body["field"])
	}
	form, _ := body["form"].(map[string]interface{})
	if form["sku"] != "NEW-1" {
		t.Fatalf("form echo = %v", body["form"])
	}
}

func TestCreateProductAndDelete(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, s.authed(http.MethodPost, "/products",
		`{"sku":"NEW-2","name":"Bracket","quantity":3,"price":"2.40"}`))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create = %d: %v", resp.StatusCode, body)
	}
	data, _ := body["data"].(map[string]interface{})
	id, _ := data["id"].(string)
	if id == "" || data["is_low_stock"] != true {
		t.Fatalf("data = %v", data)
	}

	resp, _ = s.do(t, s.authed(http.MethodPost, "/products/"+id+"/delete", ""))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete = %d", resp.StatusCode)
	}
	resp, _ = s.do(t, s.authed(http.MethodGet, "/products/"+id, ""))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestUnknownCategoryFilterIs422(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, s.authed(http.MethodGet, "/products?category=nope", ""))
	if resp.StatusCode != fiber.StatusUnprocessableEntity || body["field"] != "category" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

func TestReportExport(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, "REP-1", 1)

	resp, body := s.do(t, s.authed(http.MethodGet, "/reports", ""))
	if resp.StatusCode != fiber.StatusOK || body["total_value"] != "9.99" {
		t.Fatalf("reports = %d %v", resp.StatusCode, body)
	}

	resp, _ = s.do(t, s.authed(http.MethodGet, "/reports/export.xlsx", ""))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("export = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
}

func upgradeRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set(fiber.HeaderConnection, "Upgrade")
	req.Header.Set(fiber.HeaderUpgrade, "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}

func TestWebSocketRequiresSession(t *testing.T) {
	s := newTestServer(t)

	req := upgradeRequest()
	req.Header.Set(fiber.HeaderAccept, "text/html")
	resp, _ := s.do(t, req)
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("browser upgrade without session = %d, want 303", resp.StatusCode)
	}

	req = upgradeRequest()
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	resp, _ = s.do(t, req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("upgrade with bad token = %d, want 401", resp.StatusCode)
	}
}

func TestWebSocketRejectsPlainRequest(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, s.authed(http.MethodGet, "/ws", ""))
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("status = %d, want 426", resp.StatusCode)
	}
}

func TestUnparsableFormFieldIs422(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("sku=F-1&name=Widget&quantity=2&price=abc"))
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, body := s.do(t, req)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %v", resp.StatusCode, body)
	}
	if body["field"] != "price" || body["message"] != "Enter a number." {
		t.Fatalf("body = %v", body)
	}
	form, _ := body["form"].(map[string]interface{})
	if form["price"] != "abc" || form["sku"] != "F-1" {
		t.Fatalf("form echo = %v", body["form"])
	}
}

func TestUnparsableJSONFieldIs422(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		body    string
		field   string
		message string
	}{
		{`{"sku":"J-1","name":"Widget","quantity":2,"price":"abc"}`, "price", "Enter a number."},
		{`{"sku":"J-1","name":"Widget","quantity":"two","price":"1.00"}`, "quantity", "Enter a whole number."},
	}
	for _, tt := range tests {
		resp, body := s.do(t, s.authed(http.MethodPost, "/products", tt.body))
		if resp.StatusCode != fiber.StatusUnprocessableEntity {
			t.Fatalf("%s: status = %d, want 422", tt.body, resp.StatusCode)
		}
		if body["field"] != tt.field || body["message"] != tt.message {
			t.Fatalf("%s: body = %v", tt.body, body)
		}
		form, _ := body["form"].(map[string]interface{})
		if form["sku"] != "J-1" {
			t.Fatalf("%s: form echo = %v", tt.body, body["form"])
		}
	}
}

func TestMalformedJSONIs400(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, s.authed(http.MethodPost, "/products", `{"sku":`))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestProductListIsPaged(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 25; i++ {
		s.createProduct(t, fmt.Sprintf("PG-%02d", i), 1)
	}

	resp, body := s.do(t, s.authed(http.MethodGet, "/products", ""))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	products, _ := body["products"].([]interface{})
	if len(products) != 20 || body["total"] != float64(25) || body["page_size"] != float64(20) {
		t.Fatalf("page 1: %d products, total %v", len(products), body["total"])
	}

	_, body = s.do(t, s.authed(http.MethodGet, "/products?page=2", ""))
	products, _ = body["products"].([]interface{})
	if len(products) != 5 || body["page"] != float64(2) {
		t.Fatalf("page 2: %d products, page %v", len(products), body["page"])
	}
}

func TestProductWarehouseFilter(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, s.authed(http.MethodPost, "/warehouses", `{"name":"North"}`))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create warehouse = %d: %v", resp.StatusCode, body)
	}
	data, _ := body["data"].(map[string]interface{})
	warehouseID, _ := data["id"].(string)

	resp, body = s.do(t, s.authed(http.MethodPost, "/products",
		`{"sku":"WH-1","name":"Stored","quantity":1,"price":"1.00","warehouse_id":"`+warehouseID+`"}`))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create product = %d: %v", resp.StatusCode, body)
	}
	s.createProduct(t, "WH-2", 1)

	_, body = s.do(t, s.authed(http.MethodGet, "/products?warehouse="+warehouseID, ""))
	products, _ := body["products"].([]interface{})
	if len(products) != 1 || body["total"] != float64(1) {
		t.Fatalf("filtered = %v", body["products"])
	}
	first, _ := products[0].(map[string]interface{})
	if first["sku"] != "WH-1" {
		t.Fatalf("sku = %v", first["sku"])
	}

	resp, body = s.do(t, s.authed(http.MethodGet, "/products?warehouse=nope", ""))
	if resp.StatusCode != fiber.StatusUnprocessableEntity || body["field"] != "warehouse" {
		t.Fatalf("bad warehouse = %d %v", resp.StatusCode, body)
	}
}

func TestTransactionSearchByProduct(t *testing.T) {
	s := newTestServer(t)
	bolt := s.createProduct(t, "BOLT-1", 10)
	nut := s.createProduct(t, "NUT-1", 10)
	for _, id := range []string{bolt, bolt, nut} {
		resp, body := s.do(t, s.authed(http.MethodPost, "/transactions",
			`{"product_id":"`+id+`","type":"OUT","quantity":1}`))
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("record = %d: %v", resp.StatusCode, body)
		}
	}

	for _, q := range []string{"bolt", "Item BOLT"} {
		_, body := s.do(t, s.authed(http.MethodGet, "/transactions?search="+url.QueryEscape(q), ""))
		entries, _ := body["transactions"].([]interface{})
		if len(entries) != 2 || body["total"] != float64(2) {
			t.Fatalf("search %q: %d entries, total %v", q, len(entries), body["total"])
		}
	}

	_, body := s.do(t, s.authed(http.MethodGet, "/transactions", ""))
	if body["total"] != float64(3) {
		t.Fatalf("unfiltered total = %v", body["total"])
	}
}
