package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	JWTSecret []byte

	AuthHandler      *AuthHandler
	CatalogHandler   *CatalogHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	SearchHandler    *SearchHandler
	BestOfferHandler *BestOfferHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/logout-all", d.AuthHandler.LogoutAll, RequireLogin(d.JWTSecret))
	auth.GET("/me", d.AuthHandler.Me, RequireLogin(d.JWTSecret))

	catalog := api.Group("/catalog")
	catalog.GET("", d.CatalogHandler.List)
	catalog.GET("/filters", d.CatalogHandler.FilterOptions)
	catalog.GET("/:id", d.CatalogHandler.Get)

	api.GET("/search", d.SearchHandler.Search)
	api.GET("/best-offers", d.BestOfferHandler.Get)

	cart := api.Group("/cart", RequireLogin(d.JWTSecret))
	cart.GET("", d.CartHandler.Get)
	cart.POST("", d.CartHandler.Add)
	cart.POST("/sync", d.CartHandler.Sync)
	cart.PATCH("/:productId", d.CartHandler.Update)
	cart.DELETE("/:productId", d.CartHandler.Remove)
	cart.DELETE("", d.CartHandler.Clear)

	orders := api.Group("/orders", RequireLogin(d.JWTSecret))
	orders.POST("", d.OrderHandler.Create)
	orders.GET("", d.OrderHandler.ListMine)
	orders.GET("/:id", d.OrderHandler.GetMine)

	admin := api.Group("/admin", RequireLogin(d.JWTSecret), AdminOnly)
	admin.GET("/orders", d.OrderHandler.AdminList)
	admin.GET("/orders/:id", d.OrderHandler.AdminGet)
	admin.PATCH("/orders/:id/status", d.OrderHandler.AdminUpdateStatus)
	admin.POST("/products", d.CatalogHandler.AdminCreate)
	admin.PATCH("/products/:id", d.CatalogHandler.AdminUpdate)
	admin.DELETE("/products/:id", d.CatalogHandler.AdminDelete)
	admin.PUT("/best-offers", d.BestOfferHandler.AdminUpdate)
}
