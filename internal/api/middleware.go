package api

import (
	"time"

	"tourkorea/explorer/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

// Correlator tags every request with an id, keeping one the caller already sent.
func Correlator() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request.Header.Set(requestIDHeader, requestID)
		}
		c.Header(requestIDHeader, requestID)
		c.Set("requestID", requestID)
		c.Next()
	}
}

// Instrument records request count and latency per route template.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		duration := time.Since(start)
		metrics.RecordAPIRequest(c.Request.Method, endpoint, c.Writer.Status(), duration)

		log.WithFields(log.Fields{
			"request_id": c.GetString("requestID"),
			"status":     c.Writer.Status(),
			"duration":   duration,
		}).Debugf("%s %s", c.Request.Method, c.Request.URL.Path)
	}
}
