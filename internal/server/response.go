package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/apierr"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/textstore"
)

var errTooManyRequests = errors.New("too many requests")

// toAPIError maps domain errors to a status and error code.
func toAPIError(err error) *apierr.Error {
	if e, ok := apierr.As(err); ok {
		return e
	}
	switch {
	case errors.Is(err, gateway.ErrInvalidInput), errors.Is(err, textstore.ErrInvalid):
		return apierr.New(http.StatusBadRequest, apierr.CodeInvalidRequest, err)
	case errors.Is(err, textstore.ErrNotFound):
		return apierr.NotFound(err)
	case errors.Is(err, gateway.ErrUpstream):
		return apierr.Upstream(err)
	}
	return apierr.New(http.StatusInternalServerError, apierr.CodeInternal, err)
}

func RespondError(c *gin.Context, err error) {
	e := toAPIError(err)
	_ = c.Error(err)
	c.JSON(e.Status, api.ErrorEnvelope{
		Error: api.APIError{Message: e.Error(), Code: e.Code},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// bind decodes the JSON body, reporting decode failures as invalid requests.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, apierr.InvalidRequest("invalid body: %v", err))
		return false
	}
	return true
}
