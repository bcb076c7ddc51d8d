package httpserver

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler *AuthHTTP
	JWTSecret   []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echoprometheus.NewHandler())

	authMw := middleware.NewJWTMiddleware(d.JWTSecret)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/register/seller", d.AuthHandler.RegisterSeller)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.LogOut)

	private := auth.Group("", authMw.RequireAuth)
	private.GET("/me", d.AuthHandler.Me)
}
