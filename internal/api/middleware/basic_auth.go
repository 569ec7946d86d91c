package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/leadintake/internal/utils"
)

const (
	AdminUserKey = "admin_user"
	adminRealm   = `Basic realm="Admin", charset="UTF-8"`
)

type apiError struct {
	OK    bool       `json:"ok"`
	Error string     `json:"error"`
	Kind  utils.Kind `json:"kind,omitempty"`
}

// abortWithError renders err with the same status mapping the handlers use.
func abortWithError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	msg := http.StatusText(status)
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	c.AbortWithStatusJSON(status, apiError{Error: msg, Kind: utils.KindOf(err)})
}

// AdminAuth guards the review surface with one shared credential pair. The
// password may be plaintext or a bcrypt hash.
func AdminAuth(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if username == "" || password == "" {
			abortWithError(c, utils.E(utils.CodeUnavailable, "middleware.AdminAuth", "Admin access is not configured.", nil))
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		if !ok || !utils.CheckSecret(password, pass) || !userOK {
			c.Header("WWW-Authenticate", adminRealm)
			abortWithError(c, utils.E(utils.CodeUnauthorized, "middleware.AdminAuth", "Unauthorized.", nil))
			return
		}

		c.Set(AdminUserKey, user)
		c.Next()
	}
}
