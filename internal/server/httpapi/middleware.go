package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey       = "user_id"
	requestIDHeader = "X-Request-ID"
)

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader(common.AuthorizationHeaderName), " ")
		if !ok || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("missing token"))
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid token"))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// requestLogger logs one line per request and echoes the request id,
// generating one when the client sent none.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id, _ = common.MakeRandHexString(8)
		}
		c.Header(requestIDHeader, id)

		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
