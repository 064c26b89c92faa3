package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribekit/errors"
)

// RespondError writes err as {"detail": message}, the error shape the
// transcription service uses. AppErrors keep their HTTP status; validation
// errors become 400 and anything else 500.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := errors.AsAppError(err); ok {
		switch {
		case appErr.HTTPStatus != 0:
			status = appErr.HTTPStatus
		case errors.ClassOf(err) == errors.ClassValidation:
			status = http.StatusBadRequest
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": errors.UserMessage(err)})
}

// RespondDetail writes a {"detail": message} error with status.
func RespondDetail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}
