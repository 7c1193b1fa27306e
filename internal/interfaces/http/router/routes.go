package router

import (
	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/handler"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CartRoutes builds the shopping cart route table. Every route sits behind
// the guard middleware, which must authenticate the caller; each route then
// requires the permission its page requires.
func CartRoutes(h *handler.CartHandler, guard ...gin.HandlerFunc) *DomainGroup {
	basic := middleware.RequireBasicAccess()
	request := middleware.RequirePermission(cart.PermRequestItems)
	fulfill := middleware.RequirePermission(cart.PermFulfillRequests)
	manage := middleware.RequirePermission(cart.PermManageRequests)

	g := NewDomainGroup("shopping-cart", "/shopping-cart").
		Use(guard...).
		Use(middleware.TracingAttributeInjector())

	g.GET("/", basic, h.Summary).
		GET("/menu", h.Menu).
		GET("/hubs", basic, h.Hubs).
		GET("/leaderboard", basic, h.Leaderboard)

	// requesters
	g.POST("/items/parse", request, h.ParseItems).
		POST("/requests", request, h.CreateRequest).
		GET("/my-requests", request, h.MyRequests)

	// either party of a request; the use case checks which one the caller is
	g.GET("/requests/:id", basic, h.GetRequest).
		POST("/requests/:id/cancel", basic, h.CancelRequest).
		POST("/requests/:id/contract", basic, h.SubmitContract).
		POST("/requests/:id/accept", basic, h.AcceptContract).
		POST("/requests/:id/complete", basic, h.CompleteRequest).
		POST("/requests/:id/rate", basic, h.RateFulfiller)

	// fulfillers
	g.GET("/marketplace", fulfill, h.Marketplace).
		GET("/my-claimed", fulfill, h.MyClaimed).
		POST("/requests/:id/claim", fulfill, h.ClaimRequest).
		POST("/requests/:id/fulfiller-contract", fulfill, h.SubmitFulfillerContract)

	admin := g.Group("admin", "/admin").Use(manage)
	admin.GET("", h.AdminDashboard).
		GET("/requests", h.AdminListRequests).
		GET("/fulfillers", h.AdminListFulfillers)

	return g
}

// AuthRoutes are public: they carry their own tokens
func AuthRoutes(h *handler.AuthHandler) *DomainGroup {
	return NewDomainGroup("auth", "/auth").
		POST("/refresh", h.RefreshToken).
		POST("/logout", h.Logout)
}

// SystemRoutes are public probes under the API prefix
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping)
}
