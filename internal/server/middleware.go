package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "x-api-key"

// APIKeyRequired gates service routes behind the shared service key.
// Comparison is constant time; a server without a configured key
// accepts nothing.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		configured := s.cfg.API.ServiceKey
		presented := strings.TrimSpace(c.GetHeader(apiKeyHeader))

		if configured == "" || presented == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
