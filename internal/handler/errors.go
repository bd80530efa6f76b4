package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openfin/accounts-api/internal/domain"
)

// ErrorResponse is the wire shape of a failed request: a message and a meta
// block carrying only the request timestamp. Data and links are absent on
// error paths; the interaction id travels in the response header.
type ErrorResponse struct {
	Message string `json:"message"`
	Meta    struct {
		RequestDateTime time.Time `json:"requestDateTime"`
	} `json:"meta"`
}

func respondError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	message := "Upstream provider failed"

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		message = "Invalid request parameters"
	case errors.Is(err, domain.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
		message = "Rate limit exceeded"
		c.Header("Retry-After", "60")
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Consent is not valid"
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		message = "Consent does not grant the required permission"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = "Resource not found"
	}

	var resp ErrorResponse
	resp.Message = message
	resp.Meta.RequestDateTime = time.Now().UTC()
	c.JSON(status, resp)
}
