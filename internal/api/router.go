package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"residence-occupancy-backend/config"
	"residence-occupancy-backend/internal/mw"
	"residence-occupancy-backend/internal/occupancy"
)

// familyRoutes maps URL segments to record families.
var familyRoutes = []struct {
	path   string
	family occupancy.Family
}{
	{"visits", occupancy.FamilyVisit},
	{"bookings", occupancy.FamilyBooking},
	{"cargo", occupancy.FamilyCargo},
	{"couriers", occupancy.FamilyCourier},
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw.RequestLogger(h.log))
	if cfg.RequestIPHeader != "" {
		r.RemoteIPHeaders = []string{cfg.RequestIPHeader}
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", ActorHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	limit := rate.Inf
	if cfg.RateLimitPerSec > 0 {
		limit = rate.Limit(cfg.RateLimitPerSec)
	}
	rateLimiter := mw.RateLimiter(limit, max(cfg.RateLimitBurst, 1))

	// The facility catalog changes only on sync, so it is cached briefly.
	// Building routes carry live spot occupancy and are never cached.
	caching := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		caching = mw.Cache(cache.New(ttl, 2*ttl), ttl)
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		for _, fr := range familyRoutes {
			g := api.Group("/" + fr.path)
			g.POST("", h.CreateRecord(fr.family))
			g.GET("", h.ListRecords(fr.family))
			g.GET("/:id", h.GetRecord(fr.family))
			g.PATCH("/:id/status", h.TransitionRecord(fr.family))
			g.GET("/:id/history", h.RecordHistory(fr.family))
		}

		// GET /api/facilities?siteId=
		api.GET("/facilities", caching, h.ListFacilities)

		// GET /api/buildings/{id}
		api.GET("/buildings/:id", h.GetBuilding)

		// GET /api/buildings/{id}/occupancy
		api.GET("/buildings/:id/occupancy", h.GetBuildingOccupancy)
	}

	return r
}
