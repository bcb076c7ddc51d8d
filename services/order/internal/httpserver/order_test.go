package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	E       *echo.Echo
	DB      *gorm.DB
	Handler *OrderHTTP
	Buyer   *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	s1 := testutil.Seller(t, db, "seller-1")
	s2 := testutil.Seller(t, db, "seller-2")
	testutil.Product(t, db, s1, "Shirt", nil, testutil.UnitSpec{SKU: "A", Price: 100, Stock: 5})
	testutil.Product(t, db, s2, "Jeans", nil, testutil.UnitSpec{SKU: "B", Price: 500, Stock: 1})

	h := &OrderHTTP{Svc: &service.OrderService{Repo: &repo.GormRepo{DB: db}}}
	e := echo.New()
	Register(e, &Deps{OrderHandler: h, JWTSecret: testSecret})

	return &testEnv{E: e, DB: db, Handler: h, Buyer: testutil.Buyer(t, db, "buyer")}
}

func (env *testEnv) do(t *testing.T, method, target, body string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != nil {
		tok, err := tokens.NewAccessToken(user.ID, user.Role, time.Now().Add(time.Hour), testSecret)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

const checkoutBody = `{"name":"Jane","address":"1 Main St","phone":"555","units":[{"sku":"A","quantity":2},{"sku":"B","quantity":2}]}`

func TestCreateOrder_ReportsLines(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/orders", checkoutBody, env.Buyer)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp transport.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Len(t, resp.Orders, 2)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, transport.LineCreated, resp.Lines[0].Status)
	assert.Equal(t, transport.LineSkippedInsufficientStock, resp.Lines[1].Status)

	assert.Equal(t, 3, testutil.Stock(t, env.DB, "A"))
	assert.Equal(t, 1, testutil.Stock(t, env.DB, "B"))
}

func TestCreateOrder_LegacyResponse(t *testing.T) {
	env := newTestEnv(t)
	env.Handler.LegacyResponse = true

	rec := env.do(t, http.MethodPost, "/orders", checkoutBody, env.Buyer)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
}

func TestCreateOrder_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/orders", checkoutBody, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/orders", `{"name":"Jane","units":[{"sku":"A","quantity":0}]}`, env.Buyer)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr transport.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.Contains(t, verr.Errors, "address")
	assert.Contains(t, verr.Errors, "units[0].quantity")

	rec = env.do(t, http.MethodPost, "/orders", `{"name":`, env.Buyer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/orders", `{"name":"Jane","address":"x","phone":"1","units":[{"sku":"ZZZ","quantity":1}]}`, env.Buyer)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 5, testutil.Stock(t, env.DB, "A"))
}

func TestGetOrders(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.Buyer(t, env.DB, "other")

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/orders", checkoutBody, env.Buyer).Code)

	rec := env.do(t, http.MethodGet, "/orders", "", env.Buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 2)

	rec = env.do(t, http.MethodGet, "/orders", "", other)
	require.Equal(t, http.StatusOK, rec.Code)
	var none []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &none))
	assert.Empty(t, none)

	id := strconv.FormatUint(uint64(orders[0].ID), 10)

	rec = env.do(t, http.MethodGet, "/orders/"+id, "", env.Buyer)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders/"+id, "", other)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "1 Main St")

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/orders/999", "", env.Buyer).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/orders/abc", "", env.Buyer).Code)
}
