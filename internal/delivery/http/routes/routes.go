package routes

import (
	"resume-pathways/internal/delivery/http/handler"
	"resume-pathways/internal/delivery/http/middleware"
	"resume-pathways/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Registry mounts every route group. Handlers are built by the app
// container; this package only knows the URL layout.
type Registry struct {
	Health     *handler.HealthHandler
	Jobs       *handler.JobsHandler
	Pathways   *handler.PathwaysHandler
	Similarity *handler.SimilarityHandler
	WS         *ws.Handler
	Auth       *middleware.AuthMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
	if r.WS != nil {
		app.Get("/ws", r.WS.HandleProgressWS)
	}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Optional auth: anonymous requests pass through, a bearer token sets
	// the username for user-scoped behavior.
	open := v1
	if r.Auth != nil {
		open = v1.Group("", r.Auth.OptionalMiddleware())
	}
	if r.Jobs != nil {
		r.Jobs.RegisterRoutes(open)
	}
	if r.Pathways != nil {
		r.Pathways.RegisterRoutes(open)
	}
	if r.Similarity != nil {
		r.Similarity.RegisterRoutes(open)
	}

	if r.Auth != nil {
		protected := v1.Group("", r.Auth.Middleware())
		if r.Jobs != nil {
			r.Jobs.RegisterProtectedRoutes(protected)
		}
		if r.Pathways != nil {
			r.Pathways.RegisterProtectedRoutes(protected)
		}
	}
}
