package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/logging"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
	// LegacyResponse makes checkout answer with a bare {"status":"success"}.
	LegacyResponse bool
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		l.Warn("create_order_error", "status", 401, "reason", "no user in context", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, transport.ValidationErrorResponse{
			Errors: map[string][]string{"body": {"Malformed JSON."}},
		})
	}

	res, err := h.Svc.Checkout(ctx, userID, req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
			return c.JSON(http.StatusBadRequest, transport.ValidationErrorResponse{Errors: verr.Fields})
		case errors.Is(err, service.ErrNotFound):
			l.Warn("create_order_error", "status", 404, "reason", "unknown sku", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		l.Error("create_order_error", "status", 500, "reason", "checkout failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("create_order_success", "user_id", userID, "orders", len(res.Orders), "lines", len(res.Lines))

	if h.LegacyResponse {
		return c.JSON(http.StatusCreated, transport.CheckoutResponse{Status: "success"})
	}
	return c.JSON(http.StatusCreated, transport.CheckoutResponse{
		Status: "success",
		Orders: res.Orders,
		Lines:  res.Lines,
	})
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	userID, err := middleware.UserID(c)
	if err != nil {
		l.Warn("get_orders_error", "status", 401, "reason", "no user in context", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Svc.ListOrders(ctx, userID)
	if err != nil {
		l.Error("get_orders_error", "status", 500, "reason", "cannot list orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 401, "reason", "no user in context", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	order, err := h.Svc.GetOrder(ctx, userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("get_order_error", "status", 404, "reason", "order not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrUnauthorized):
			l.Warn("get_order_error", "status", 401, "reason", "order belongs to another buyer", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		l.Error("get_order_error", "status", 500, "reason", "cannot get order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get order")
	}
	return c.JSON(http.StatusOK, order)
}
