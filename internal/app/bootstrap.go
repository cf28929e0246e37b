package app

import (
	"fmt"
	"log"
	"strings"

	"resume-pathways/internal/config"
	"resume-pathways/internal/delivery/http/handler"
	"resume-pathways/internal/delivery/http/middleware"
	"resume-pathways/internal/delivery/http/routes"
	"resume-pathways/internal/pkg/jwt"
	"resume-pathways/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the container, the fiber app, and the route table. The
// returned cleanup closes the database pool.
func Bootstrap(cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	if logger == nil {
		logger = log.Default()
	}

	container, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	errMw := middleware.NewErrorMiddleware(logger)
	accessLog := middleware.NewAccessLogMiddleware(logger)
	f.Use(errMw.Middleware())
	f.Use(accessLog.Middleware())

	jwtSvc := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn)

	registry := &routes.Registry{
		Health:     handler.NewHealthHandler(container.DB, container.Cache),
		Jobs:       handler.NewJobsHandler(container.Jobs),
		Pathways:   handler.NewPathwaysHandler(container.Pathways),
		Similarity: handler.NewSimilarityHandler(container.Similarity),
		WS:         ws.NewHandler(container.Hub, logger),
		Auth:       middleware.NewAuthMiddleware(jwtSvc),
	}
	registry.Register(f)

	go container.Hub.Run()

	cleanup := func() error { return container.Close() }
	return &App{Fiber: f, Container: container}, cleanup, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
