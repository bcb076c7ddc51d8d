package httpserver

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/models"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/pkg/middleware/csrf"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echoprometheus.NewHandler())

	authMW := middleware.NewJWTMiddleware(d.JWTSecret)

	catalog := e.Group("/catalog")
	catalog.GET("/tags", d.CatalogHandler.GetTags)
	catalog.GET("/properties", d.CatalogHandler.GetProperties)

	products := catalog.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	seller := products.Group("",
		csrf.Middleware(csrf.Config{AuthCookie: middleware.AccessCookie}),
		authMW.RequireAuth,
		middleware.RequireRole(models.RoleSeller),
	)
	seller.POST("", d.CatalogHandler.CreateProduct)
}
