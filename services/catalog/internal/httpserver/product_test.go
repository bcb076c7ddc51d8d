package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	"github.com/Skotchmaster/marketplace/services/catalog/internal/repo"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/service"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/transport"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	e := echo.New()
	Register(e, &Deps{
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: &repo.GormRepo{DB: db}}},
		JWTSecret:      testSecret,
	})
	return &testEnv{E: e, DB: db}
}

func (env *testEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(u.ID, u.Role, time.Now().Add(time.Hour), testSecret)
	require.NoError(t, err)
	return tok
}

func TestGetProducts_Filtered(t *testing.T) {
	env := newTestEnv(t)
	seller := testutil.Seller(t, env.DB, "seller")
	testutil.Product(t, env.DB, seller, "Red Shirt", []string{"summer"},
		testutil.UnitSpec{SKU: "A1", Price: 100, Stock: 5})
	testutil.Product(t, env.DB, seller, "Blue Jeans", []string{"denim"},
		testutil.UnitSpec{SKU: "B1", Price: 500, Stock: 0})

	rec := env.do(t, http.MethodGet, "/catalog/products?tags=summer&in_stock=1&price_min=oops", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page transport.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Red Shirt", page.Results[0].Title)
	assert.Equal(t, int64(100), *page.MinPrice)
	assert.Equal(t, int64(500), *page.MaxPrice)
}

func TestGetProducts_InvalidPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/catalog/products?page=1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"min_price":null`)

	rec = env.do(t, http.MethodGet, "/catalog/products?page=2", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/catalog/products?page=first", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	seller := testutil.Seller(t, env.DB, "seller")
	p := testutil.Product(t, env.DB, seller, "Hat", nil, testutil.UnitSpec{SKU: "H", Price: 7, Stock: 1})

	rec := env.do(t, http.MethodGet, "/catalog/products/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Hat", got.Title)
	assert.NotContains(t, rec.Body.String(), "password")

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/catalog/products/99", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/catalog/products/abc", "", "").Code)
}

func TestGetTagsAndProperties(t *testing.T) {
	env := newTestEnv(t)
	seller := testutil.Seller(t, env.DB, "seller")
	testutil.Property(t, env.DB, "Size", "S", "M")
	testutil.Product(t, env.DB, seller, "Hat", []string{"winter", "wool"})

	rec := env.do(t, http.MethodGet, "/catalog/tags", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tags []models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	require.Len(t, tags, 2)
	assert.Equal(t, "winter", tags[0].Name)

	rec = env.do(t, http.MethodGet, "/catalog/properties", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var props []models.Property
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &props))
	require.Len(t, props, 1)
	require.Len(t, props[0].Values, 2)
	assert.Equal(t, "S", props[0].Values[0].Value)
}

func TestCreateProduct_Authorization(t *testing.T) {
	env := newTestEnv(t)
	seller := testutil.Seller(t, env.DB, "seller")
	buyer := testutil.Buyer(t, env.DB, "buyer")

	body := `{"title":"Mug","tags":["kitchen"],"units":[{"sku":"MUG-1","price":300,"num_in_stock":4}]}`

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/catalog/products", body, "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/catalog/products", body, tokenFor(t, buyer)).Code)

	rec := env.do(t, http.MethodPost, "/catalog/products", body, tokenFor(t, seller))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, seller.ID, created.SellerID)
	require.Len(t, created.Units, 1)
	assert.Equal(t, "MUG-1", created.Units[0].SKU)

	rec = env.do(t, http.MethodPost, "/catalog/products", body, tokenFor(t, seller))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/catalog/products", `{"title":""}`, tokenFor(t, seller))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/catalog/products", `{"title":`, tokenFor(t, seller))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProduct_CookieAuthNeedsCSRFToken(t *testing.T) {
	env := newTestEnv(t)
	seller := testutil.Seller(t, env.DB, "seller")
	tok := tokenFor(t, seller)
	body := `{"title":"Mug","units":[{"sku":"MUG-1","price":300,"num_in_stock":4}]}`

	send := func(csrfHeader string) int {
		req := httptest.NewRequest(http.MethodPost, "/catalog/products", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: tok})
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "csrf-value"})
		if csrfHeader != "" {
			req.Header.Set("X-CSRF-Token", csrfHeader)
		}
		rec := httptest.NewRecorder()
		env.E.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, send(""))
	assert.Equal(t, http.StatusCreated, send("csrf-value"))
}
