package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/server/response"
)

// AdminMiddleware gates the admin API behind a static bearer token.
// ADMIN_API_TOKEN holds the plaintext token; ADMIN_API_TOKEN_HASH may hold
// a bcrypt hash instead, for deployments that keep the plaintext out of the
// environment. One of the two must be set.
type AdminMiddleware struct {
	log   *logger.Logger
	token string
	hash  string
}

func NewAdminMiddleware(log *logger.Logger) (*AdminMiddleware, error) {
	token := strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN"))
	hash := strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN_HASH"))
	if token == "" && hash == "" {
		return nil, fmt.Errorf("missing ADMIN_API_TOKEN or ADMIN_API_TOKEN_HASH")
	}
	return &AdminMiddleware{
		log:   log.With("middleware", "Admin"),
		token: token,
		hash:  hash,
	}, nil
}

func (am *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := extractBearer(c)
		if presented == "" || !am.valid(presented) {
			am.log.Warn("Admin request rejected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "missing or invalid admin token", Code: "unauthorized"},
			})
			return
		}
		c.Next()
	}
}

func (am *AdminMiddleware) valid(presented string) bool {
	if am.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(am.hash), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(am.token), []byte(presented)) == 1
}
