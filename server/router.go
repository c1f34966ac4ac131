package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daccred/nearmints/controllers"
)

type RouterOptions struct {
	AllowOrigins  []string
	EnableMetrics bool
}

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

func NewRouter(ingesterController *controllers.IngesterController, ownerController *controllers.OwnerController, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = defaultOrigins
	if len(opts.AllowOrigins) > 0 {
		cfg.AllowOrigins = opts.AllowOrigins
	}
	cfg.AllowMethods = []string{"GET", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Cache-Control"}
	cfg.AllowCredentials = true
	cfg.MaxAge = 12 * time.Hour
	r.Use(cors.New(cfg))

	if opts.EnableMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	ingesterController.RegisterRoutes(r)
	if ownerController != nil {
		r.GET("/api/v1/owners/:id", ownerController.Retrieve)
	}

	return r
}
