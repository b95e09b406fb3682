// Package gateway assembles the gin engine from the area handlers and
// the auth middlewares.
package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Pankaj72885/care.xyz/internal/gateway/handlers"
	"github.com/Pankaj72885/care.xyz/internal/gateway/middlewares"
)

type Deps struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Catalog *handlers.CatalogHandler
	Booking *handlers.BookingHandler
	Payment *handlers.PaymentHandler
	Report  *handlers.ReportHandler

	// Webhook is the Omise callback; nil when the gateway keys are unset.
	Webhook http.Handler

	JWTSecret string
}

func Router(d Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Webhook != nil {
		r.POST("/webhooks/omise", gin.WrapH(d.Webhook))
	}
	r.GET("/payments/return", d.Payment.Return)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", d.Auth.Register)
		v1.POST("/auth/login", d.Auth.Login)
		v1.POST("/auth/refresh", d.Auth.Refresh)
		v1.GET("/auth/google/login", d.Auth.GoogleLogin)
		v1.GET("/auth/google/callback", d.Auth.GoogleCallback)

		v1.GET("/services", d.Catalog.List)
		v1.GET("/services/:slug", d.Catalog.GetBySlug)

		secured := v1.Group("")
		secured.Use(middlewares.JWTAuth(d.JWTSecret))
		{
			secured.GET("/users/me", d.User.Me)
			secured.PATCH("/users/me", d.User.UpdateMe)
			secured.POST("/auth/complete-profile", d.User.CompleteProfile)

			secured.POST("/bookings", d.Booking.Create)
			secured.GET("/bookings", d.Booking.ListMine)
			secured.GET("/bookings/:id", d.Booking.Get)
			secured.POST("/bookings/:id/cancel", d.Booking.Cancel)
			secured.POST("/bookings/:id/complete", d.Booking.Complete)

			secured.POST("/payments/charges/card", d.Payment.ChargeCard)
			secured.POST("/payments/charges/source", d.Payment.ChargeSource)
			secured.GET("/payments/charges/:id", d.Payment.GetCharge)

			secured.GET("/dashboard", d.Report.Dashboard)
		}

		admin := v1.Group("/admin")
		admin.Use(middlewares.JWTAuth(d.JWTSecret), middlewares.RequireRole("ADMIN"))
		{
			admin.GET("/services", d.Catalog.AdminList)
			admin.POST("/services", d.Catalog.Create)
			admin.PUT("/services/:id", d.Catalog.Update)
			admin.POST("/services/:id/toggle", d.Catalog.Toggle)
			admin.DELETE("/services/:id", d.Catalog.Delete)

			admin.GET("/users", d.User.AdminList)
			admin.GET("/users/:id", d.User.AdminGet)
			admin.PUT("/users/:id", d.User.AdminUpdate)
			admin.PUT("/users/:id/role", d.User.AdminSetRole)
			admin.PUT("/users/:id/password", d.User.AdminResetPassword)
			admin.DELETE("/users/:id", d.User.AdminDelete)

			admin.GET("/bookings", d.Booking.AdminList)
			admin.PUT("/bookings/:id/status", d.Booking.AdminSetStatus)
			admin.PUT("/bookings/:id/status/force", d.Booking.AdminForceStatus)

			admin.GET("/payments", d.Payment.AdminList)
			admin.GET("/reports/sales", d.Report.Sales)
			admin.GET("/reports/services", d.Report.Services)
		}
	}

	return r
}
