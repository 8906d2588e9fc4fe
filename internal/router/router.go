package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/schreiber-platform/schreiber-api/internal/config"
	"github.com/schreiber-platform/schreiber-api/internal/handler"
	"github.com/schreiber-platform/schreiber-api/internal/middleware"
	"github.com/schreiber-platform/schreiber-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	CourseHandler   *handler.CourseHandler
	PackageHandler  *handler.PackageHandler
	PurchaseHandler *handler.PurchaseHandler
	AttemptHandler  *handler.AttemptHandler
	TaskHandler     *handler.TaskHandler
	MediaHandler    *handler.MediaHandler
	GrammarHandler  *handler.GrammarHandler
	JWTMiddleware   fiber.Handler
	MediaGuard      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common api group for health & headers
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := app.Group("/api/auth")
		deps.AuthHandler.Register(auth)

		protected := app.Group("/api/auth", jwtMiddleware)
		deps.AuthHandler.RegisterProtected(protected)
	}

	if deps.CourseHandler != nil {
		courses := app.Group("/api/courses")
		deps.CourseHandler.Register(courses)

		if deps.AttemptHandler != nil {
			results := app.Group("/api/courses", jwtMiddleware)
			deps.AttemptHandler.RegisterCourseResults(results)
		}
	}

	if deps.PackageHandler != nil {
		packages := app.Group("/api/packages")
		deps.PackageHandler.Register(packages)
	}

	if deps.TaskHandler != nil {
		tasks := app.Group("/api/tasks", jwtMiddleware)
		deps.TaskHandler.Register(tasks)
	}

	if deps.AttemptHandler != nil {
		attempts := app.Group("/api/attempts", jwtMiddleware)
		deps.AttemptHandler.Register(attempts)
	}

	if deps.PurchaseHandler != nil {
		purchases := app.Group("/api/purchases", jwtMiddleware)
		deps.PurchaseHandler.Register(purchases)

		me := app.Group("/api/me", jwtMiddleware)
		deps.PurchaseHandler.RegisterMe(me)
	}

	if deps.GrammarHandler != nil {
		grammar := app.Group("/api/grammar", jwtMiddleware,
			middleware.RateLimit("grammar", 30, time.Minute))
		deps.GrammarHandler.Register(grammar)
	}

	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole("admin"))
	if deps.CourseHandler != nil {
		deps.CourseHandler.RegisterAdmin(admin.Group("/courses"))
	}
	if deps.PurchaseHandler != nil {
		deps.PurchaseHandler.RegisterAdmin(admin.Group("/courses"))
	}
	if deps.PackageHandler != nil {
		deps.PackageHandler.RegisterAdmin(admin.Group("/packages"))
	}
	if deps.TaskHandler != nil {
		deps.TaskHandler.RegisterAdmin(admin.Group("/tasks"))
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterAdmin(admin)
	}

	// Media uses its own guard: the static service token or an admin JWT.
	// It lives outside /api/admin so the admin-only JWT stack does not
	// shadow the service-token path.
	if deps.MediaHandler != nil && deps.MediaGuard != nil {
		media := app.Group("/api/media", deps.MediaGuard)
		deps.MediaHandler.Register(media)
	}
}
