package middleware

import (
	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders the last error a handler attached with c.Error as {success:false, message}.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		kind := apperror.KindOf(err)
		if kind == apperror.KindInternal {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.FullPath(),
			}).Error("request failed")
		}
		c.JSON(apperror.Status(kind), gin.H{
			"success": false,
			"message": apperror.PublicMessage(err),
		})
	}
}
