package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/metrics"
)

const rateLimitedMessage = "Rate limit exceeded. Please try again later."

// statusFor maps an error kind to an HTTP status and a client-safe message.
func statusFor(err error, fallback string) (int, string) {
	var (
		rlErr *domain.RateLimitedError
		vErr  *domain.ValidationError
	)
	switch {
	case errors.As(err, &rlErr):
		return http.StatusTooManyRequests, rateLimitedMessage
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Error()
	default:
		// Upstream and storage failures are not described to clients.
		return http.StatusInternalServerError, fallback
	}
}

// outcomeFor labels err for metrics.
func outcomeFor(err error) string {
	var (
		rlErr *domain.RateLimitedError
		upErr *domain.UpstreamError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &rlErr):
		return metrics.OutcomeRateLimited
	case domain.IsValidation(err):
		return metrics.OutcomeInvalid
	case errors.As(err, &upErr):
		return metrics.OutcomeUpstream
	default:
		return metrics.OutcomeError
	}
}

// respondError writes {error} (plus resetIn for throttling) for err.
func respondError(c *gin.Context, err error, fallback string) {
	status, msg := statusFor(err, fallback)

	body := gin.H{"error": msg}
	var rlErr *domain.RateLimitedError
	if errors.As(err, &rlErr) {
		body["resetIn"] = rlErr.RetryAfter.Milliseconds()
	}

	logRejection(c, status, err)
	c.JSON(status, body)
}

func logRejection(c *gin.Context, status int, err error) {
	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("Request failed",
			logger.String("path", c.FullPath()),
			logger.Int("status", status),
			logger.Error(err),
		)
	} else {
		log.Debug("Request rejected",
			logger.String("path", c.FullPath()),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
}
