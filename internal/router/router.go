package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/handler"
	"github.com/jortega/backoffice-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAccounts wires the whole /api/accounts surface: the public token
// and registration endpoints (optionally rate limited), the /me group and
// the admin user management group. Route paths keep their trailing slashes;
// they are part of the published API contract.
func RegisterAccounts(e *echo.Echo, a *handler.AuthHandler, m *handler.MeHandler, u *handler.UserAdminHandler, jwtSecret string, accounts middleware.AccountLoader, limiter echo.MiddlewareFunc) {
	pub := e.Group("/api/accounts")
	if limiter != nil {
		// Throttle only the credential endpoints; everything else already
		// requires a valid token.
		pub.POST("/token/", a.Token, limiter)
		pub.POST("/register/", a.Register, limiter)
	} else {
		pub.POST("/token/", a.Token)
		pub.POST("/register/", a.Register)
	}
	pub.POST("/token/refresh/", a.Refresh)
	pub.POST("/token/verify/", a.Verify)

	// Everything below requires a valid access token whose subject resolves
	// to an active account.
	auth := e.Group("/api/accounts", middleware.JWTAuth(jwtSecret, accounts))
	auth.GET("/me/", m.Me)
	auth.PATCH("/me/", m.UpdateMe)
	auth.PUT("/me/", m.UpdateMe)
	auth.POST("/me/change-password/", m.ChangePassword)

	// User detail read/edit applies the self-or-admin predicate per object
	// inside the handler; list, delete and the single-field admin actions
	// are admin-only outright.
	auth.GET("/users/:id/", u.Get)
	auth.PATCH("/users/:id/", u.Update)
	auth.PUT("/users/:id/", u.Update)

	admin := auth.Group("", middleware.RequireRole("admin"))
	admin.GET("/users/", u.List)
	admin.DELETE("/users/:id/", u.Delete)
	admin.POST("/users/:id/set-role/", u.SetRole)
	admin.POST("/users/:id/set-active/", u.SetActive)
}

// RegisterBackoffice wires the authenticated CRUD resources (companies,
// clients, providers, warehouses, articles) and the location proxies.
func RegisterBackoffice(e *echo.Echo, co *handler.CompanyHandler, ct *handler.ContactHandler, ca *handler.CatalogHandler, lo *handler.LocationHandler, jwtSecret string, accounts middleware.AccountLoader) {
	api := e.Group("/api", middleware.JWTAuth(jwtSecret, accounts))

	companies := api.Group("/companies")
	companies.GET("/", co.List)
	companies.GET("/primary/", co.GetPrimary)
	companies.POST("/", co.Create)
	companies.GET("/:id/", co.Get)
	companies.PATCH("/:id/", co.Update)
	companies.PUT("/:id/", co.Update)
	companies.DELETE("/:id/", co.Delete)

	clients := api.Group("/clients")
	clients.GET("/", ct.ListClients)
	clients.POST("/", ct.CreateClient)
	clients.GET("/:id/", ct.GetClient)
	clients.PATCH("/:id/", ct.UpdateClient)
	clients.PUT("/:id/", ct.UpdateClient)
	clients.DELETE("/:id/", ct.DeleteClient)

	providers := api.Group("/providers")
	providers.GET("/", ct.ListProviders)
	providers.POST("/", ct.CreateProvider)
	providers.GET("/:id/", ct.GetProvider)
	providers.PATCH("/:id/", ct.UpdateProvider)
	providers.PUT("/:id/", ct.UpdateProvider)
	providers.DELETE("/:id/", ct.DeleteProvider)

	warehouses := api.Group("/warehouses")
	warehouses.GET("/", ca.ListWarehouses)
	warehouses.POST("/", ca.CreateWarehouse)
	warehouses.GET("/:id/", ca.GetWarehouse)
	warehouses.PATCH("/:id/", ca.UpdateWarehouse)
	warehouses.PUT("/:id/", ca.UpdateWarehouse)
	warehouses.DELETE("/:id/", ca.DeleteWarehouse)

	articles := api.Group("/articles")
	articles.GET("/", ca.ListArticles)
	articles.POST("/", ca.CreateArticle)
	articles.GET("/:id/", ca.GetArticle)
	articles.PATCH("/:id/", ca.UpdateArticle)
	articles.PUT("/:id/", ca.UpdateArticle)
	articles.DELETE("/:id/", ca.DeleteArticle)

	locations := api.Group("/locations")
	locations.POST("/get-city-name/", lo.GetCityName)
	locations.POST("/generate-description/", lo.GenerateDescription)
}
