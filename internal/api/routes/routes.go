package routes

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yoockh/leadintake/internal/api/handlers"
	"github.com/yoockh/leadintake/internal/api/middleware"
)

type Deps struct {
	Quote   *handlers.QuoteHandler
	Careers *handlers.CareersHandler
	Admin   *handlers.AdminHandler

	AdminUsername  string
	AdminPassword  string
	RateLimit      middleware.RateLimitConfig
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty means ClientIP is the
	// socket peer.
	TrustedProxies []string
	Gatherer       prometheus.Gatherer
}

func RegisterRoutes(r *gin.Engine, d Deps) error {
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(corsMiddleware(d.AllowedOrigins))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	limited := middleware.RateLimit(d.RateLimit)
	admin := middleware.AdminAuth(d.AdminUsername, d.AdminPassword)

	api := r.Group("/api")
	api.POST("/quote", limited, d.Quote.Submit)
	api.GET("/careers/roles", d.Careers.Roles)
	api.POST("/careers/apply", limited, d.Careers.Apply)
	api.POST("/careers/resume-upload", limited, d.Careers.ResumeUpload)
	api.GET("/admin/resume", admin, d.Admin.DownloadResume)

	inbox := r.Group("/admin")
	inbox.Use(admin)

	inbox.GET("/applications", d.Admin.ListApplications)
	inbox.GET("/applications/:id", d.Admin.GetApplication)
	inbox.POST("/applications/:id", d.Admin.UpdateApplication)

	inbox.GET("/deliveries", d.Admin.ListDeliveries)
	inbox.GET("/deliveries/:requestId", d.Admin.GetDelivery)
	return nil
}

// corsMiddleware allows the marketing site to post forms cross-origin. With no
// origins configured only same-origin requests pass.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "X-Requested-With", "X-Request-Id"}
	cfg.ExposeHeaders = []string{"X-Request-Id"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
