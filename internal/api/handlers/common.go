package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/leadintake/internal/utils"
)

type APIError struct {
	OK    bool       `json:"ok"`
	Error string     `json:"error"`
	Kind  utils.Kind `json:"kind,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		if status >= http.StatusInternalServerError && ae.Err != nil {
			_ = c.Error(ae)
		}
		c.JSON(status, APIError{
			Error: ae.Message,
			Kind:  ae.Kind,
		})
		return
	}

	_ = c.Error(err)
	c.JSON(status, APIError{
		Error: http.StatusText(status),
	})
}

// optionalForm is nil when the field was not posted at all.
func optionalForm(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}
