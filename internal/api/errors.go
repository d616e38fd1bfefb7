package api

import (
	"errors"
	"net/http"

	"tourkorea/explorer/internal/client"
	"tourkorea/explorer/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeConfig              = "CONFIG_ERROR"
	CodeUpstream            = "UPSTREAM_ERROR"
	CodeMalformedResponse   = "MALFORMED_RESPONSE"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
}

// classify maps an error from the service layer to an HTTP status and error code.
func classify(err error) (int, string) {
	var (
		validationErr *client.ValidationError
		configErr     *client.ConfigError
		upstreamErr   *client.UpstreamError
		httpErr       *client.HTTPError
		bindErrs      validator.ValidationErrors
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &bindErrs):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, CodeConfig
	case errors.Is(err, client.ErrCircuitOpen):
		return http.StatusServiceUnavailable, CodeUpstreamUnavailable
	case errors.Is(err, client.ErrNotFound), errors.Is(err, repository.ErrBookmarkNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, client.ErrMalformedEnvelope):
		return http.StatusBadGateway, CodeMalformedResponse
	case errors.As(err, &upstreamErr), errors.As(err, &httpErr), errors.Is(err, client.ErrTimeout):
		return http.StatusBadGateway, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("❌ %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		log.Debugf("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:      err.Error(),
		Code:       code,
		StatusCode: status,
	})
}

// writeBadRequest answers a request that failed binding or validation.
func writeBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:      describeBindError(err),
		Code:       CodeValidation,
		StatusCode: http.StatusBadRequest,
	})
}
