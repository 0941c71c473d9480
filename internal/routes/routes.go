package routes

import (
	"time"

	"github.com/amayhq/amayai/internal/config"
	"github.com/amayhq/amayai/internal/handlers"
	"github.com/amayhq/amayai/internal/middleware"
	"github.com/amayhq/amayai/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	hub *ws.Hub,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	emailHandler *handlers.EmailHandler,
	calendarHandler *handlers.CalendarHandler,
	taskHandler *handlers.TaskHandler,
	suggestionHandler *handlers.SuggestionHandler,
	settingsHandler *handlers.SettingsHandler,
	statsHandler *handlers.StatsHandler,
) {
	// OAuth endpoints get a tighter limit than the rest of the API.
	authLimiter := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})

	// The callback lives outside /api; Google redirects the browser here.
	app.Get("/auth/google/callback", authLimiter, authHandler.GoogleCallback)

	api := app.Group("/api")

	api.Get("/auth/google", authLimiter, authHandler.GoogleLogin)

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Everything below requires a session token from the OAuth callback.
	protected := api.Group("", middleware.Protected(cfg))

	protected.Get("/auth/status", authHandler.Status)
	protected.Post("/auth/logout", authHandler.Logout)

	protected.Get("/emails/triage", emailHandler.Triage)
	protected.Post("/emails/reply", emailHandler.Reply)
	protected.Post("/emails/archive", emailHandler.Archive)

	protected.Get("/calendar/events", calendarHandler.Events)
	protected.Post("/calendar/meetings", calendarHandler.ScheduleMeeting)
	protected.Post("/calendar/find-free-time", calendarHandler.FindFreeTime)

	protected.Get("/tasks", taskHandler.List)
	protected.Post("/tasks", taskHandler.Create)
	protected.Patch("/tasks/:id", taskHandler.Update)
	protected.Post("/tasks/ai-create", taskHandler.AICreate)
	protected.Post("/tasks/approve-draft", taskHandler.ApproveDraft)
	protected.Post("/slack/reminder", taskHandler.SlackReminder)

	protected.Get("/suggestions", suggestionHandler.List)
	protected.Post("/suggestions", suggestionHandler.Generate)
	protected.Patch("/suggestions/:id", suggestionHandler.Update)

	protected.Get("/user/settings", settingsHandler.Get)
	protected.Put("/user/settings", settingsHandler.Update)

	protected.Get("/stats", statsHandler.Get)

	// Live updates. The dashboard identifies itself with ?userId=.
	app.Use("/ws", ws.UpgradeRequired)
	app.Get("/ws", hub.Handler())
}
