package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/handler"
	"github.com/venuebook/venue-booking-api/internal/middleware"
	"github.com/venuebook/venue-booking-api/internal/model"
)

// Handlers bundles every handler the router wires up. All fields
// are required.
type Handlers struct {
	Auth         *handler.AuthHandler
	Venue        *handler.VenueHandler
	Service      *handler.ServiceHandler
	TimeSlot     *handler.TimeSlotHandler
	Reservation  *handler.ReservationHandler
	Notification *handler.NotificationHandler
	Comment      *handler.CommentHandler
	User         *handler.UserHandler
	Report       *handler.ReportHandler
}

// Register wires the full route table onto e. Unauthenticated
// routes are the health check and the auth endpoints; everything
// else requires a valid access token, with write access narrowed
// per group by role.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health)

	// Session endpoints. Register is public and always creates a
	// CUSTOMER; privileged accounts are created through the admin
	// route below.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/refresh-access", h.Auth.RefreshAccess)
	auth.POST("/logout", h.Auth.Logout)

	// Everything below requires a valid access token.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleCustomer, model.RoleStaff, model.RoleAdmin))

	v1.GET("/me", h.Auth.Me)

	// Catalog reads are open to every authenticated role.
	v1.GET("/venues", h.Venue.List)
	v1.GET("/venues/:id", h.Venue.Get)
	v1.GET("/services", h.Service.List)
	v1.GET("/services/:id", h.Service.Get)
	v1.GET("/time-slots", h.TimeSlot.List)

	// Booking. Customers create, read and cancel their own
	// reservations.
	v1.POST("/reservations", h.Reservation.Create)
	v1.GET("/reservations/:id", h.Reservation.Get)
	v1.GET("/my-reservations", h.Reservation.ListMine)
	v1.POST("/reservations/:id/cancel", h.Reservation.Cancel)

	// In-app notifications, always scoped to the caller.
	v1.GET("/notifications", h.Notification.List)
	v1.GET("/notifications/unread-count", h.Notification.UnreadCount)
	v1.POST("/notifications/:id/read", h.Notification.MarkRead)
	v1.POST("/notifications/read-all", h.Notification.MarkAllRead)

	// Staff operate the booking desk: full listing, confirmation
	// and reporting.
	staff := v1.Group("", middleware.RequireRole(model.RoleStaff, model.RoleAdmin))
	staff.GET("/reservations", h.Reservation.List)
	staff.POST("/reservations/:id/confirm", h.Reservation.Confirm)
	staff.GET("/reservations/:id/comments", h.Comment.List)
	staff.GET("/users/:id", h.User.Get)
	staff.GET("/reports/stats", h.Report.Stats)
	staff.GET("/reports/reservations.xlsx", h.Report.Export)

	// Admin-only surface: catalog writes, reservation overrides
	// and account provisioning.
	admin := v1.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/venues", h.Venue.Create)
	admin.PUT("/venues/:id", h.Venue.Update)
	admin.DELETE("/venues/:id", h.Venue.Delete)
	admin.POST("/services", h.Service.Create)
	admin.PUT("/services/:id", h.Service.Update)
	admin.DELETE("/services/:id", h.Service.Delete)
	admin.POST("/time-slots", h.TimeSlot.Create)
	admin.PUT("/time-slots/:id", h.TimeSlot.Update)
	admin.DELETE("/time-slots/:id", h.TimeSlot.Delete)

	admin.PATCH("/reservations/:id", h.Reservation.Update)
	admin.POST("/reservations/:id/complete", h.Reservation.Complete)
	admin.DELETE("/reservations/:id", h.Reservation.Delete)
	admin.DELETE("/reservations/:id/permanent", h.Reservation.Purge)

	// Internal reservation notes. Only the author may edit or
	// delete a comment.
	admin.POST("/reservations/:id/comments", h.Comment.Create)
	admin.PUT("/comments/:id", h.Comment.Update)
	admin.DELETE("/comments/:id", h.Comment.Delete)

	// Account administration.
	admin.POST("/users", h.Auth.Register)
	admin.GET("/users", h.User.List)
	admin.PUT("/users/:id", h.User.Update)
	admin.DELETE("/users/:id", h.User.Delete)
	admin.DELETE("/users/:id/permanent", h.User.Purge)
}
