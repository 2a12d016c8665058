package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appaddress "github.com/xiebiao/bookstore-ledger/internal/application/address"
	"github.com/xiebiao/bookstore-ledger/internal/application/catalog"
	apporder "github.com/xiebiao/bookstore-ledger/internal/application/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/address"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-ledger/pkg/jwt"
)

const isbn = "9780132350884"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	tokens *jwt.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlstore.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := zap.NewNop()
	tx := sqlstore.NewTxManager(db)
	books := sqlstore.NewBookRepository(db)
	invRepo := sqlstore.NewInventoryRepository(db)
	addrRepo := sqlstore.NewAddressRepository(db)
	orders := sqlstore.NewOrderRepository(db)

	prices := price.NewLedger(sqlstore.NewPriceRepository(db), books, tx, logger)
	inv := inventory.NewLedger(invRepo, tx, logger)
	guard := address.NewOwnershipGuard(addrRepo)
	cache := catalog.NopSnapshotCache{}
	events := apporder.NopEventPublisher{}
	opts := apporder.DefaultOptions()

	// 上架时间往前拨一小时,保证下单时价格已经生效
	published := func() time.Time { return time.Now().Add(-time.Hour) }

	cancel := apporder.NewCancelOrderUseCase(orders, inv, tx, events, cache, opts, logger)
	h := Handlers{
		Catalog: handler.NewCatalogHandler(
			catalog.NewPublishBookUseCase(books, prices, invRepo, tx, cache, logger).WithClock(published),
			catalog.NewGetBookUseCase(books, prices, inv, cache, logger),
			catalog.NewSetPriceUseCase(prices, cache, logger),
			catalog.NewPriceHistoryUseCase(prices),
			catalog.NewRestockUseCase(inv, cache, logger),
			catalog.NewInventoryLogsUseCase(inv),
		),
		Address: handler.NewAddressHandler(
			appaddress.NewCreateAddressUseCase(addrRepo, tx, logger),
			appaddress.NewListAddressesUseCase(addrRepo),
		),
		Order: handler.NewOrderHandler(
			apporder.NewCreateOrderUseCase(orders, guard, prices, inv, tx, events, cache, opts, logger),
			apporder.NewGetOrderUseCase(orders),
			apporder.NewListOrdersUseCase(orders),
			apporder.NewUpdateAddressesUseCase(orders, guard, tx, logger),
			apporder.NewChangeStatusUseCase(orders, cancel, tx, logger),
		),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{"database": sqlDB}),
	}

	tokens := jwt.NewManager("router-test-secret", time.Hour, 24*time.Hour)
	engine, err := New(Options{Mode: gin.TestMode}, h, middleware.NewAuthMiddleware(tokens), logger)
	require.NoError(t, err)
	return &testServer{engine: engine, tokens: tokens}
}

func (s *testServer) token(t *testing.T, userID uint, role string) string {
	t.Helper()
	pair, err := s.tokens.GenerateToken(userID, role)
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *testServer) publish(t *testing.T, admin string, stock int) {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/books", admin, gin.H{
		"isbn":              "978-0-13-235088-4",
		"title":             "Clean Code",
		"publication_year":  2008,
		"unit_price":        "29.99",
		"initial_stock":     stock,
		"reorder_threshold": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
}

func (s *testServer) address(t *testing.T, userID uint, token string) uint {
	t.Helper()
	w, env := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/addresses", userID), token, gin.H{
		"street":      "Marszałkowska",
		"building_nr": "10",
		"city":        "Warszawa",
		"postal_code": "00-001",
		"country":     "Polska",
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var a struct {
		ID        uint `json:"id"`
		IsPrimary bool `json:"is_primary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &a))
	return a.ID
}

func available(t *testing.T, s *testServer) int {
	t.Helper()
	w, env := s.do(t, http.MethodGet, "/api/v1/books/"+isbn, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var b struct {
		Available int `json:"available"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &b))
	return b.Available
}

func TestPingAndReady(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	w, _ = s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestCatalogWrites_RequireAdmin(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"isbn": isbn, "title": "Clean Code", "publication_year": 2008, "unit_price": "29.99"}

	w, env := s.do(t, http.MethodPost, "/api/v1/books", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40100, env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/books", "not-a-token", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/books", s.token(t, 1, jwt.RoleCustomer), body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 40104, env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/books", s.token(t, 99, jwt.RoleAdmin), body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPublishBook_BindingRules(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 99, jwt.RoleAdmin)

	w, env := s.do(t, http.MethodPost, "/api/v1/books", admin, gin.H{
		"isbn": "12345", "title": "x", "publication_year": 2008, "unit_price": "1.00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40900, env.Code)
	assert.Contains(t, env.Message, "isbn")

	// 价格非法由领域层拒绝
	w, env = s.do(t, http.MethodPost, "/api/v1/books", admin, gin.H{
		"isbn": isbn, "title": "x", "publication_year": 2008, "unit_price": "0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40900, env.Code)
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 99, jwt.RoleAdmin)
	alice := s.token(t, 1, jwt.RoleCustomer)
	bob := s.token(t, 2, jwt.RoleCustomer)

	s.publish(t, admin, 10)
	addrID := s.address(t, 1, alice)

	// 不能替别人建地址
	w, _ := s.do(t, http.MethodPost, "/api/v1/users/1/addresses", bob, gin.H{
		"street": "x", "building_nr": "1", "city": "y", "postal_code": "00-001",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/v1/orders", alice, gin.H{
		"shipping_address_id": addrID,
		"billing_address_id":  addrID,
		"items":               []gin.H{{"isbn": isbn, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)

	var created struct {
		OrderID     uint   `json:"order_id"`
		OwnerID     uint   `json:"owner_id"`
		Status      string `json:"status"`
		TotalAmount string `json:"total_amount"`
		Items       []struct {
			UnitPrice string `json:"unit_price"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, uint(1), created.OwnerID)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "119.96", created.TotalAmount)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "29.99", created.Items[0].UnitPrice)
	assert.Equal(t, 6, available(t, s))

	orderPath := fmt.Sprintf("/api/v1/orders/%d", created.OrderID)

	w, _ = s.do(t, http.MethodGet, orderPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, orderPath, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/v1/orders/999", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/orders?page=1&page_size=10", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)

	// 发货只有管理员能操作
	w, _ = s.do(t, http.MethodPatch, orderPath+"/status", alice, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(t, http.MethodPatch, orderPath+"/status", alice, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, 10, available(t, s))

	w, env = s.do(t, http.MethodPatch, orderPath+"/status", alice, gin.H{"status": "paid"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40002, env.Code)

	w, _ = s.do(t, http.MethodPatch, orderPath+"/status", alice, gin.H{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_Rejections(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 99, jwt.RoleAdmin)
	alice := s.token(t, 1, jwt.RoleCustomer)
	bob := s.token(t, 2, jwt.RoleCustomer)

	s.publish(t, admin, 3)
	aliceAddr := s.address(t, 1, alice)
	bobAddr := s.address(t, 2, bob)

	tests := []struct {
		name       string
		token      string
		body       gin.H
		wantStatus int
		wantCode   int
	}{
		{
			name:  "数量为0",
			token: alice,
			body: gin.H{"shipping_address_id": aliceAddr, "billing_address_id": aliceAddr,
				"items": []gin.H{{"isbn": isbn, "quantity": 0}}},
			wantStatus: http.StatusBadRequest, wantCode: 40900,
		},
		{
			name:  "空明细",
			token: alice,
			body: gin.H{"shipping_address_id": aliceAddr, "billing_address_id": aliceAddr,
				"items": []gin.H{}},
			wantStatus: http.StatusBadRequest, wantCode: 40900,
		},
		{
			name:  "地址属于不同用户",
			token: alice,
			body: gin.H{"shipping_address_id": aliceAddr, "billing_address_id": bobAddr,
				"items": []gin.H{{"isbn": isbn, "quantity": 1}}},
			wantStatus: http.StatusBadRequest, wantCode: 40006,
		},
		{
			name:  "用别人的地址下单",
			token: alice,
			body: gin.H{"shipping_address_id": bobAddr, "billing_address_id": bobAddr,
				"items": []gin.H{{"isbn": isbn, "quantity": 1}}},
			wantStatus: http.StatusForbidden, wantCode: 40104,
		},
		{
			name:  "库存不足",
			token: alice,
			body: gin.H{"shipping_address_id": aliceAddr, "billing_address_id": aliceAddr,
				"items": []gin.H{{"isbn": isbn, "quantity": 4}}},
			wantStatus: http.StatusConflict, wantCode: 40001,
		},
		{
			name:  "图书不存在",
			token: alice,
			body: gin.H{"shipping_address_id": aliceAddr, "billing_address_id": aliceAddr,
				"items": []gin.H{{"isbn": "9780000000000", "quantity": 1}}},
			wantStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodPost, "/api/v1/orders", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, env.Message)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, env.Code)
			}
		})
	}

	// 全部失败,库存原样
	assert.Equal(t, 3, available(t, s))
}

func TestSetPriceAndRestock(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 99, jwt.RoleAdmin)
	s.publish(t, admin, 5)

	w, env := s.do(t, http.MethodPut, "/api/v1/books/"+isbn+"/price", admin, gin.H{"unit_price": "34.50"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, env = s.do(t, http.MethodGet, "/api/v1/books/"+isbn+"/prices", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []struct {
		UnitPrice  string `json:"unit_price"`
		ValidUntil string `json:"valid_until"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "34.50", history[0].UnitPrice)
	assert.Empty(t, history[0].ValidUntil)
	assert.NotEmpty(t, history[1].ValidUntil)

	w, env = s.do(t, http.MethodPost, "/api/v1/books/"+isbn+"/restock", admin, gin.H{"added": 7, "reference": "PO-7"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, 12, available(t, s))

	w, _ = s.do(t, http.MethodPost, "/api/v1/books/"+isbn+"/restock", admin, gin.H{"added": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/books/"+isbn+"/inventory-logs?limit=5", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"reference":"PO-7"`)
}
