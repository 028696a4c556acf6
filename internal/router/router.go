// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/frostair/ac-booking/internal/handler"
	"github.com/frostair/ac-booking/internal/middleware"
	"github.com/frostair/ac-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check
// used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while the protected /v1/auth/me endpoint requires a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access only issues a
	// new access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.POST("/logout-all", a.LogoutAll, middleware.JWTAuth(jwtSecret))
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the guest-facing booking surface: the static
// catalogs, availability queries, booking creation and lookup, the
// technician directory and the contact form. None of these routes
// require a session so customers can book without an account.
//
// cache is the response cache middleware. It is applied only to the
// static catalog routes; availability and booking lookups must always
// reflect the live database.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, u *handler.UserHandler, ct *handler.ContactHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/services", handler.GetServices, cache)
	e.GET("/v1/timeslots", handler.GetTimeSlots, cache)

	e.GET("/v1/bookings/availability/timeslots", b.GetTimeSlotAvailability)
	e.GET("/v1/bookings/availability/technicians", b.GetTechnicianAvailability)
	e.POST("/v1/bookings", b.CreateBooking)
	e.GET("/v1/bookings/:referenceNumber", b.GetBooking)

	e.GET("/v1/users/technicians", u.ListTechnicians)

	e.POST("/v1/contact", ct.Submit)
}

// RegisterUsers registers the authenticated profile endpoints. Any
// signed-in role may view and edit its own profile.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users", middleware.JWTAuth(jwtSecret))
	g.GET("/profile", u.GetProfile)
	g.PUT("/profile", u.UpdateProfile)
}

// RegisterStaff registers the operational endpoints used by
// technicians and admins: the booking ledger with status and
// assignment updates, and the contact inbox.
func RegisterStaff(e *echo.Echo, b *handler.BookingHandler, ct *handler.ContactHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleTechnician, model.RoleAdmin))
	g.GET("/bookings", b.ListBookings)
	g.PATCH("/bookings/:id/status", b.UpdateStatus)
	g.PATCH("/bookings/:id/assign", b.AssignTechnician)

	g.GET("/contacts", ct.List)
	g.PATCH("/contacts/:id/status", ct.UpdateStatus)
}
