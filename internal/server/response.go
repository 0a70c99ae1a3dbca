package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/redditpersona/internal/clients"
	personageneration "github.com/spacesedan/redditpersona/internal/persona_generation"
)

// ValidationError is a request the caller has to fix before retrying.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type upstreamBody struct {
	Service string `json:"service"`
	Status  int    `json:"status"`
	Body    string `json:"body,omitempty"`
}

type errorBody struct {
	Success  bool          `json:"success"`
	Error    string        `json:"error"`
	Field    string        `json:"field,omitempty"`
	Upstream *upstreamBody `json:"upstream,omitempty"`
	Raw      string        `json:"raw,omitempty"`
}

func ok(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

func badRequest(c *gin.Context, field, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: message, Field: field})
}

// fail maps an error class onto a status code and error body.
func fail(c *gin.Context, err error) {
	var (
		verr     *ValidationError
		upstream *clients.UpstreamError
		perr     *personageneration.ParseError
	)

	switch {
	case errors.As(err, &verr):
		badRequest(c, verr.Field, verr.Message)
	case errors.As(err, &upstream):
		status := http.StatusInternalServerError
		if upstream.StatusCode >= 400 && upstream.StatusCode <= 599 {
			status = upstream.StatusCode
		}
		c.AbortWithStatusJSON(status, errorBody{
			Error: err.Error(),
			Upstream: &upstreamBody{
				Service: upstream.Service,
				Status:  upstream.StatusCode,
				Body:    upstream.Body,
			},
		})
	case errors.As(err, &perr):
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: perr.Error(), Raw: perr.Raw})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}
