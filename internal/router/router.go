// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/movietime/ticket-booking/internal/handler"
	"github.com/movietime/ticket-booking/internal/middleware"
	"github.com/movietime/ticket-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth, while the profile endpoint requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints: the
// movie catalog, upcoming shows and per-show seat availability.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/v1/movies", p.ListMovies)
	e.GET("/v1/shows", p.ListShows)
	e.GET("/v1/shows/:id/seats", p.ShowSeats)
}

// RegisterCustomer registers the reservation endpoints.  All routes
// require a valid access token; the reserve endpoint additionally sits
// behind the token-bucket rate limiter so a single client cannot hammer
// the seat ledger during an on-sale.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))

	g.POST("/shows/:id/reserve", b.Reserve, limiter)
	g.GET("/bookings/:id", b.GetBooking)
	g.GET("/my-bookings", b.MyBookings)
}

// RegisterPayments registers the payment provider callback.  The
// webhook is unauthenticated at the HTTP layer; providers authenticate
// via network controls in front of the service.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler) {
	e.POST("/v1/payments/webhook", p.Webhook)
}

// RegisterAdmin registers catalog management endpoints behind the ADMIN
// role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.POST("/movies", a.CreateMovie)
	g.POST("/shows", a.CreateShow)
}
