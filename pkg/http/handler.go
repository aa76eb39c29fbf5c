package http

import "github.com/labstack/echo/v4"

// Handler mounts its routes on the API group.
type Handler interface {
	RegisterRoutes(g *echo.Group)
}

// Handlers registers several handlers on the same group.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(g *echo.Group) {
	for _, h := range hs {
		if h != nil {
			h.RegisterRoutes(g)
		}
	}
}
