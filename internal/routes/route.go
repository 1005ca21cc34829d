package routes

import (
	"github.com/blendhq/blend-server/internal/container"
	"github.com/blendhq/blend-server/internal/handlers"
	"github.com/blendhq/blend-server/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(ctn *container.Container) *gin.Engine {
	if ctn.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{ctn.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(ctn.Logger))
	r.Use(middleware.ErrorHandler(ctn.Logger))
	r.Use(gin.Recovery())

	isProduction := ctn.Config.IsProduction()
	authRequired := middleware.AuthRequired(ctn.TokenValidator, ctn.AuthService, ctn.Logger, isProduction)
	optionalAuth := middleware.OptionalAuth(ctn.TokenValidator, ctn.AuthService, ctn.Logger, isProduction)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "blend-api",
				"backend": ctn.Config.Backend,
			})
		})

		auth := v1.Group("/auth")
		{
			auth.POST("/signin", handlers.SignIn(ctn.AuthService, ctn.Config))
			auth.POST("/signup", handlers.SignUp(ctn.AuthService, ctn.Config))
			auth.GET("/google", handlers.GoogleAuth(ctn.AuthService, ctn.Config))
			auth.GET("/google/callback", handlers.GoogleAuthCallback(ctn.Config))
			auth.POST("/refresh", handlers.RefreshToken(ctn.AuthService, ctn.Config))
			auth.POST("/logout", handlers.Logout(ctn.AuthService, ctn.Config))
			auth.GET("/me", authRequired, handlers.GetCurrentUser(ctn.AuthService))
		}

		profiles := v1.Group("/profiles")
		{
			profiles.GET("/:id", handlers.GetProfile(ctn.AuthService))
			profiles.PATCH("/me", authRequired, handlers.UpdateMyProfile(ctn.AuthService))
		}

		// Reads go through optional auth so hosts see their own drafts
		// and private events while anonymous callers see public ones.
		events := v1.Group("/events")
		{
			events.GET("", optionalAuth, handlers.ListEvents(ctn.EventService))
			events.GET("/:id", optionalAuth, handlers.GetEventByID(ctn.EventService))
			events.GET("/slug/:slug", optionalAuth, handlers.GetEventBySlug(ctn.EventService))

			events.POST("", authRequired, handlers.CreateEvent(ctn.EventService))
			events.PATCH("/:id", authRequired, handlers.UpdateEvent(ctn.EventService))
			events.DELETE("/:id", authRequired, handlers.DeleteEvent(ctn.EventService))
			events.POST("/:id/publish", authRequired, handlers.PublishEvent(ctn.EventService))
			events.POST("/:id/cancel", authRequired, handlers.CancelEvent(ctn.EventService))
			events.POST("/:id/cover", authRequired, handlers.UploadEventCover(ctn.EventService))

			events.POST("/:id/register", authRequired, handlers.RegisterForEvent(ctn.RegistrationService))
			events.DELETE("/:id/registration", authRequired, handlers.CancelMyRegistration(ctn.RegistrationService))
			events.GET("/:id/registration", authRequired, handlers.GetMyRegistrationForEvent(ctn.RegistrationService))
			events.GET("/:id/guests", authRequired, handlers.GetEventGuests(ctn.RegistrationService))
			events.POST("/:id/invitations", authRequired, handlers.SendInvitations(ctn.RegistrationService))
		}

		calendars := v1.Group("/calendars")
		{
			calendars.GET("", optionalAuth, handlers.ListCalendars(ctn.CalendarService))
			calendars.GET("/:id", handlers.GetCalendarByID(ctn.CalendarService))
			calendars.GET("/slug/:slug", handlers.GetCalendarBySlug(ctn.CalendarService))
			calendars.GET("/:id/events", optionalAuth, handlers.GetCalendarEvents(ctn.CalendarService))

			calendars.POST("", authRequired, handlers.CreateCalendar(ctn.CalendarService))
			calendars.PATCH("/:id", authRequired, handlers.UpdateCalendar(ctn.CalendarService))
			calendars.DELETE("/:id", authRequired, handlers.DeleteCalendar(ctn.CalendarService))
			calendars.POST("/:id/subscribe", authRequired, handlers.SubscribeToCalendar(ctn.CalendarService))
			calendars.DELETE("/:id/subscribe", authRequired, handlers.UnsubscribeFromCalendar(ctn.CalendarService))
		}

		registrations := v1.Group("/registrations")
		registrations.Use(authRequired)
		{
			registrations.GET("/me", handlers.GetMyRegistrations(ctn.RegistrationService))
			registrations.PATCH("/:id/status", handlers.UpdateGuestStatus(ctn.RegistrationService))
			registrations.POST("/:id/checkin", handlers.CheckInGuest(ctn.RegistrationService))
		}

		subscriptions := v1.Group("/subscriptions")
		subscriptions.Use(authRequired)
		{
			subscriptions.GET("/me", handlers.GetMySubscriptions(ctn.CalendarService))
		}

		v1.POST("/payments/webhook", handlers.PaymentWebhook(ctn.RegistrationService))
	}

	return r
}
