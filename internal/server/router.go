package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/handlers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/middleware"
)

func NewRouter(app *App, uploadDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	setupRoutes(r, app, uploadDir)
	return r
}

func setupRoutes(r *gin.Engine, app *App, uploadDir string) {
	h := app.Handler

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if uploadDir != "" {
		r.Static(handlers.UploadPrefix, uploadDir)
	}

	public := r.Group("/v1")
	{
		public.POST("/register", h.Register)
		public.POST("/login", h.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", h.ListEvents)
			eventPublic.GET("/:id", h.GetEvent)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware(app.JWTSecret))
	{
		profile := protected.Group("/profile")
		{
			profile.GET("", h.GetProfile)
			profile.PUT("", h.UpdateProfile)
			profile.POST("/upgrade", h.UpgradeToOrganizer)
		}

		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", h.CreateEvent)
			eventProtected.POST("/:id/register", h.RegisterForEvent)
			eventProtected.POST("/:id/checkout", h.CreateCheckoutSession)
		}

		organizer := protected.Group("/events/:id")
		organizer.Use(middleware.RequireEventOrganizer(app.Store))
		{
			organizer.PUT("", h.UpdateEvent)
			organizer.DELETE("", h.DeleteEvent)
			organizer.POST("/media", h.UploadEventMedia)
			organizer.POST("/zoom", h.CreateZoomMeeting)
			organizer.GET("/attendees/export", h.ExportAttendees)
			organizer.POST("/checkin", h.CheckIn)
		}
	}
}
