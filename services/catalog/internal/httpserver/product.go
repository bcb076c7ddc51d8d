package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/filter"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/service"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	product, err := h.Svc.GetProduct(ctx, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product with this id does not exist", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product with this id does not exist")
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	params := filter.ParseParams(c.QueryParams())

	page, err := h.Svc.ListProducts(ctx, params, c.QueryParam("page"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_products_failed", "status", 404, "reason", "invalid page", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "invalid page")
		}
		l.Error("get_products_failed", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	l.Info("get_products_success", "page", page.Page, "results", len(page.Results))
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetTags(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_tags")

	tags, err := h.Svc.ListTags(ctx)
	if err != nil {
		l.Error("get_tags_failed", "status", 500, "reason", "cannot list tags", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list tags")
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *CatalogHTTP) GetProperties(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_properties")

	props, err := h.Svc.ListProperties(ctx)
	if err != nil {
		l.Error("get_properties_failed", "status", 500, "reason", "cannot list properties", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list properties")
	}
	return c.JSON(http.StatusOK, props)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	sellerID, err := middleware.UserID(c)
	if err != nil {
		l.Warn("product_create_error", "status", 401, "reason", "no user in context", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, sellerID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			l.Warn("product_create_error", "status", 409, "reason", "sku already exists", "error", err)
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product to db")
	}

	l.Info("create_product_success", "product_id", product.ID, "seller_id", sellerID)
	return c.JSON(http.StatusCreated, product)
}
