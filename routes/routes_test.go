package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"food-ordering-api/config"
	"food-ordering-api/events"
	"food-ordering-api/handlers"
	"food-ordering-api/logger"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/payment"
	"food-ordering-api/repository"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

var testSecret = []byte("routes-test-secret")

type testServer struct {
	router *gin.Engine
	tokens map[models.UserRole]string
	menu   map[string]uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB(&config.Config{
		DBDriver: "sqlite",
		DBSource: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: zapcore.ErrorLevel,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users, err := config.SeedDemo(db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	ts := &testServer{tokens: map[models.UserRole]string{}, menu: map[string]uint{}}
	for _, u := range users {
		tok, err := middleware.GenerateToken(models.Identity{UserID: u.ID, Name: u.Name, Role: u.Role}, testSecret, time.Hour)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		ts.tokens[u.Role] = tok
	}
	var items []models.MenuItem
	db.Find(&items)
	for _, m := range items {
		ts.menu[m.Name] = m.ID
	}

	log := logger.NewWithWriter("test", zapcore.ErrorLevel, io.Discard)
	store := repository.NewStore(db)
	gateway := payment.NewLocal()
	svc := services.NewOrderService(store, gateway, events.NewLogPublisher(log), log, "usd")

	ts.router = gin.New()
	SetupRoutes(ts.router, Handlers{
		Orders:    handlers.NewOrderHandler(svc, false),
		Payments:  handlers.NewPaymentHandler(gateway, svc, false),
		Catalog:   handlers.NewCatalogHandler(store),
		JWTSecret: testSecret,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, role models.UserRole, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+ts.tokens[role])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

// placeOrder creates one Hot Chocolate pickup order at the first branch
func (ts *testServer) placeOrder(t *testing.T) (orderID uint, intentID string) {
	t.Helper()
	body := fmt.Sprintf(`{"restaurantId":1,"branchId":1,"items":[{"menuItem":{"id":%d},"quantity":1}],"total":8.00}`, ts.menu["Hot Chocolate"])
	w, resp := ts.do(t, http.MethodPost, "/api/order", models.RoleCustomer, body)
	if w.Code != http.StatusOK {
		t.Fatalf("create order: %d %s", w.Code, w.Body.String())
	}
	order := resp["order"].(map[string]any)
	return uint(order["id"].(float64)), resp["paymentIntentId"].(string)
}

func TestOrderRoutesRequireAuthentication(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/order"},
		{http.MethodPost, "/api/order"},
		{http.MethodPut, "/api/order"},
		{http.MethodGet, "/api/order/1/history"},
	} {
		w, resp := ts.do(t, tc.method, tc.path, "", `{}`)
		if w.Code != http.StatusUnauthorized || resp["error"] != "Unauthorized" {
			t.Errorf("%s %s = %d %v", tc.method, tc.path, w.Code, resp)
		}
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body := fmt.Sprintf(`{
		"restaurantId": 1,
		"branchId": 1,
		"deliveryType": "DELIVERY",
		"items": [{"menuItem": {"id": %d}, "quantity": 2, "addons": [{"id": 1, "items": [{"id": 1}]}]}],
		"discount": "1.00",
		"total": 27.80
	}`, ts.menu["Nasi Lemak"])
	w, resp := ts.do(t, http.MethodPost, "/api/order", models.RoleCustomer, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if secret, _ := resp["clientSecret"].(string); secret == "" {
		t.Errorf("missing client secret: %v", resp)
	}
	intentID, _ := resp["paymentIntentId"].(string)
	if !strings.HasPrefix(intentID, "pi_") {
		t.Errorf("payment intent id = %q", intentID)
	}
	order := resp["order"].(map[string]any)
	if order["paymentStatus"] != string(models.PaymentInitiated) || order["deliveryType"] != "DELIVERY" {
		t.Errorf("order = %v", order)
	}
	if items := order["orderItems"].([]any); len(items) != 1 {
		t.Errorf("order items = %d, want 1", len(items))
	}
}

func TestCreateOrderEndpointRejections(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"malformed json", `{"branchId":`, http.StatusBadRequest, "Invalid request body"},
		{"missing fields", `{"items":[]}`, http.StatusBadRequest, "Missing required fields"},
		{"unknown menu item", `{"branchId":1,"items":[{"menuItem":{"id":999},"quantity":1}],"total":5}`, http.StatusBadRequest, "One or more menu items not found"},
		{"unknown branch", `{"branchId":999,"items":[{"menuItem":{"id":1},"quantity":1}],"total":5}`, http.StatusNotFound, "Branch not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := ts.do(t, http.MethodPost, "/api/order", models.RoleCustomer, tt.body)
			if w.Code != tt.status || resp["error"] != tt.error {
				t.Errorf("got %d %v, want %d %q", w.Code, resp, tt.status, tt.error)
			}
		})
	}

	w, resp := ts.do(t, http.MethodPost, "/api/order", models.RoleCustomer, `{"items":[]}`)
	details, _ := resp["details"].(map[string]any)
	if w.Code != http.StatusBadRequest || details["itemsLength"] != float64(0) {
		t.Errorf("details = %v", resp)
	}
}

func TestListOrdersEndpoint(t *testing.T) {
	ts := newTestServer(t)
	orderID, _ := ts.placeOrder(t)

	w, _ := ts.do(t, http.MethodGet, "/api/order?restaurantId=abc", models.RoleRestaurantAdmin, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid restaurantId status = %d", w.Code)
	}

	for _, tc := range []struct {
		role models.UserRole
		path string
	}{
		{models.RoleRestaurantAdmin, "/api/order?restaurantId=1"},
		{models.RoleBranchManager, "/api/order?branchManagerId=2"},
		{models.RoleCustomer, "/api/order"},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+ts.tokens[tc.role])
		ts.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s %s = %d %s", tc.role, tc.path, w.Code, w.Body.String())
		}
		var orders []models.Order
		if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(orders) != 1 || orders[0].ID != orderID {
			t.Errorf("%s sees %d orders", tc.role, len(orders))
		}
	}

	w, resp := ts.do(t, http.MethodGet, "/api/order?restaurantId=999", models.RoleRestaurantAdmin, "")
	if w.Code != http.StatusNotFound || resp["error"] != "Restaurant not found" {
		t.Errorf("unknown restaurant = %d %v", w.Code, resp)
	}
	w, _ = ts.do(t, http.MethodGet, "/api/order?branchManagerId=1", models.RoleBranchManager, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign manager scope = %d", w.Code)
	}
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)
	orderID, _ := ts.placeOrder(t)
	body := fmt.Sprintf(`{"orderId":%d,"status":"PREPARING"}`, orderID)

	w, resp := ts.do(t, http.MethodPut, "/api/order", models.RoleCustomer, body)
	if w.Code != http.StatusForbidden || resp["error"] != "Not authorized to update this order" {
		t.Errorf("customer update = %d %v", w.Code, resp)
	}

	w, resp = ts.do(t, http.MethodPut, "/api/order", models.RoleBranchManager, body)
	if w.Code != http.StatusOK || resp["status"] != "PREPARING" {
		t.Errorf("manager update = %d %v", w.Code, resp)
	}

	w, resp = ts.do(t, http.MethodPut, "/api/order", models.RoleSuperAdmin, `{"orderId":999,"status":"READY"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown order = %d %v", w.Code, resp)
	}
	w, resp = ts.do(t, http.MethodPut, "/api/order", models.RoleSuperAdmin, `{"status":"READY"}`)
	if w.Code != http.StatusBadRequest || resp["error"] != "Order ID and status are required" {
		t.Errorf("missing order id = %d %v", w.Code, resp)
	}

	w, resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/order/%d/history", orderID), models.RoleCustomer, "")
	if w.Code != http.StatusOK || resp["count"] != float64(2) {
		t.Errorf("history = %d %v", w.Code, resp)
	}
	w, _ = ts.do(t, http.MethodGet, "/api/order/abc/history", models.RoleCustomer, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad history id = %d", w.Code)
	}
}

func TestPaymentWebhook(t *testing.T) {
	ts := newTestServer(t)
	orderID, intentID := ts.placeOrder(t)

	payload := fmt.Sprintf(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":%q,"object":"payment_intent","metadata":{"orderId":"%d"}}}}`, intentID, orderID)
	post := func(body string) (*httptest.ResponseRecorder, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewBufferString(body))
		req.Header.Set("Stripe-Signature", "unused")
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		var resp map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return w, resp
	}

	for i := 0; i < 2; i++ {
		w, resp := post(payload)
		if w.Code != http.StatusOK || resp["handled"] != true {
			t.Fatalf("delivery %d = %d %v", i+1, w.Code, resp)
		}
	}

	w, resp := ts.do(t, http.MethodGet, "/api/order", models.RoleCustomer, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"paymentStatus":"CONFIRMED"`) {
		t.Errorf("order after webhook = %d %v", w.Code, resp)
	}

	w, resp = post(`{"type":"customer.created","data":{"object":{"id":"cus_1"}}}`)
	if w.Code != http.StatusOK || resp["handled"] != false {
		t.Errorf("ignored event = %d %v", w.Code, resp)
	}

	w, _ = post(`garbage`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("garbage webhook = %d", w.Code)
	}
}

func TestPublicRoutes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path   string
		status int
		key    string
		want   any
	}{
		{"/health", http.StatusOK, "status", "healthy"},
		{"/api/restaurants/1/menu", http.StatusOK, "count", float64(3)},
		{"/api/restaurants/1/menu?category=Air", http.StatusOK, "count", float64(2)},
		{"/api/restaurants/1/branches", http.StatusOK, "count", float64(2)},
		{"/api/restaurants/999/branches", http.StatusNotFound, "error", "Restaurant not found"},
		{"/api/restaurants/x/menu", http.StatusBadRequest, "error", "Invalid restaurant id"},
		{"/api/payment-states", http.StatusOK, "initialState", string(models.PaymentPending)},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, resp := ts.do(t, http.MethodGet, tt.path, "", "")
			if w.Code != tt.status || resp[tt.key] != tt.want {
				t.Errorf("got %d %v, want %d %s=%v", w.Code, resp, tt.status, tt.key, tt.want)
			}
		})
	}
}
