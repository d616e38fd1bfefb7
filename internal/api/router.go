// Package api is the local HTTP surface over the tour services.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler, checks map[string]HealthCheck) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), Correlator(), Instrument())

	r.GET("/healthz", health(checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/tours", h.ListTours)
		apiGroup.GET("/tours/browse", h.BrowseTours)
		apiGroup.GET("/tours/:id", h.GetTour)
		apiGroup.POST("/tours/pet-info", h.PetInfo)
		apiGroup.GET("/areas", h.ListAreas)
		apiGroup.GET("/geo", h.Convert)

		bookmarks := apiGroup.Group("/users/:userId/bookmarks")
		bookmarks.GET("", h.ListBookmarks)
		bookmarks.POST("", h.AddBookmark)
		bookmarks.DELETE("/:contentId", h.RemoveBookmark)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:      "route not found",
			Code:       CodeNotFound,
			StatusCode: http.StatusNotFound,
		})
	})

	return r
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
	}
}
