package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/imagex"
	"github.com/gin-gonic/gin"
)

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorInvalidInput),
		errors.Is(err, common.ErrorInvalidCategory),
		errors.Is(err, imagex.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, imagex.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(status, errorBody("internal error"))
		return
	}
	c.AbortWithStatusJSON(status, errorBody(err.Error()))
}
