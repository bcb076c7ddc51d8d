package httpserver

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/pkg/middleware/csrf"
)

type Deps struct {
	OrderHandler *OrderHTTP
	JWTSecret    []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echoprometheus.NewHandler())

	authMW := middleware.NewJWTMiddleware(d.JWTSecret)

	orders := e.Group("/orders",
		csrf.Middleware(csrf.Config{AuthCookie: middleware.AccessCookie}),
		authMW.RequireAuth,
	)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
}
