package http

import "github.com/labstack/echo/v4"

// Handler registers a group of routes on the server's Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(e *echo.Echo)

// RegisterRoutes calls f.
func (f HandlerFunc) RegisterRoutes(e *echo.Echo) { f(e) }
