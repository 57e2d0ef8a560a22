package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"merabestie-backend/internal/apperr"
)

func envelope(c *gin.Context, err error) (int, gin.H) {
	status := apperr.HTTPStatus(err)
	msg := apperr.Message(err)
	detail := msg
	if status >= http.StatusInternalServerError {
		detail = apperr.Cause(err).Error()
		zap.L().Error("request failed",
			zap.String("requestId", c.GetString(ctxRequestID)),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
	}
	_ = c.Error(err)
	return status, gin.H{"success": false, "message": msg, "error": detail}
}

// fail writes the error envelope with the status implied by err's kind.
func fail(c *gin.Context, err error) {
	status, body := envelope(c, err)
	c.JSON(status, body)
}

func abort(c *gin.Context, err error) {
	status, body := envelope(c, err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, op string, err error) {
	fail(c, apperr.Wrapf(apperr.KindValidation, op, err, "Invalid input"))
}

func ok(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}
