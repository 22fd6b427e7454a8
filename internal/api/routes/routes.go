package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/journai/internal/api/handlers"
	"github.com/yoockh/journai/internal/api/middleware"
	"github.com/yoockh/journai/internal/metrics"
)

type Deps struct {
	Chat    *handlers.ChatHandler
	Logs    *handlers.LogHandler
	Journal *handlers.JournalHandler
	Gate    *handlers.GateHandler
	Session *handlers.SessionHandler
	Users   *handlers.UserHandler

	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil hides the endpoint.
	Gatherer prometheus.Gatherer

	// Auth is nil when bearer tokens are not verified.
	Auth        *middleware.AuthConfig
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(d.Logger, d.Metrics))
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/")
	if d.Auth != nil {
		api.Use(middleware.JWTAuth(*d.Auth))
	}

	// completion-backed routes share the per-client limiter
	llm := api.Group("/")
	if d.RateLimiter != nil {
		llm.Use(d.RateLimiter.Middleware())
	}
	llm.POST("/chat", d.Chat.Chat)
	llm.POST("/journal/elaborate", d.Journal.Elaborate)
	llm.GET("/journal/summary", d.Journal.Summary)
	llm.POST("/weekly/mentor", d.Journal.WeeklyMentor)

	api.POST("/logs", d.Logs.Save)
	api.GET("/logs", d.Logs.List)

	api.POST("/journal/entry", d.Journal.SaveEntry)
	api.POST("/journal/save", d.Journal.SaveEntry)
	api.GET("/journal/entry", d.Journal.GetEntry)
	api.GET("/journal/entries", d.Journal.WeekEntries)

	api.GET("/history/journals", d.Journal.History)
	api.GET("/history/mentor", d.Logs.MentorHistory)

	api.GET("/mentor/availability", d.Gate.MentorAvailability)
	api.GET("/vent/cooldown", d.Gate.VentCooldown)

	api.POST("/sessions/start", d.Session.Start)
	api.GET("/sessions/draft", d.Session.GetDraft)
	api.PUT("/sessions/draft", d.Session.PutDraft)
	api.DELETE("/sessions/draft", d.Session.DeleteDraft)

	api.POST("/users/touch", d.Users.Touch)

	// Admin listing needs a verified role, so it only exists with auth on.
	if d.Auth != nil {
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		admin.GET("/users", d.Users.List)
	}
}
