package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"campushub/cmd/middleware"
	"campushub/internal/auth"
)

type Routers struct {
	Handlers *Handlers
	Tokens   *auth.TokenIssuer
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	apiGroup := app.Group("/v1")

	apiGroup.POST("/auth/login", r.Handlers.Login)
	apiGroup.GET("/events", r.Handlers.GetAllEvents)
	apiGroup.GET("/events/:id", r.Handlers.GetEvent)

	authed := apiGroup.Group("")
	authed.Use(middleware.Auth(r.Tokens))

	authed.POST("/events", r.Handlers.CreateEvent)
	authed.PATCH("/events/:id", r.Handlers.UpdateEvent)

	authed.POST("/events/:id/registrations", r.Handlers.Register)
	authed.GET("/events/:id/registrations", r.Handlers.ListRegistrations)
	authed.GET("/events/:id/registrations/:regID", r.Handlers.GetRegistration)
	authed.PATCH("/events/:id/registrations/:regID", r.Handlers.UpdateRegistration)
	authed.DELETE("/events/:id/registrations/:regID", r.Handlers.CancelRegistration)

	return app
}
