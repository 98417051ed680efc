package routes

import (
	"dailydiet/controllers"
	"dailydiet/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps is everything the router needs; cmd/main.go builds it.
type Deps struct {
	Log         logrus.FieldLogger
	Metrics     *middlewares.Metrics
	RateLimiter *middlewares.RateLimiter
	CookieName  string
	AdminSecret string // empty disables operator routes

	Meals    *controllers.MealController
	Sessions *controllers.SessionController
	Health   *controllers.HealthController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}
	r.GET("/healthz", d.Health.Health)

	api := r.Group("/")
	api.Use(middlewares.SessionCookie(d.CookieName))
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Handler())
	}

	meals := api.Group("/meals")
	{
		meals.POST("", d.Meals.CreateMeal)
		meals.GET("/:id", d.Meals.GetMeal)
		meals.PUT("/:id", d.Meals.UpdateMeal)
		meals.DELETE("/:id", d.Meals.DeleteMeal)
	}

	// session-scoped routes
	scoped := meals.Group("")
	scoped.Use(middlewares.RequireSession())
	{
		scoped.GET("", d.Meals.ListMeals)
		scoped.GET("/metrics", d.Meals.GetMetrics)
		scoped.POST("/export", d.Meals.ExportMeals)
	}

	sessions := api.Group("/sessions")
	{
		sessions.POST("", d.Sessions.CreateSession)
		if d.AdminSecret != "" {
			sessions.GET("", middlewares.AdminAuth(d.AdminSecret), d.Sessions.ListSessions)
		}
	}

	return r
}
