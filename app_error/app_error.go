package app_error

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type statusError struct {
	error
	status int
}

func (e statusError) Unwrap() error {
	return e.error
}

func (e statusError) HTTPStatus() int {
	return e.status
}

// New attaches an HTTP status to an error so Abort can map it later.
func New(err error, status int) error {
	return statusError{error: err, status: status}
}

// Abort writes err as a JSON error response. Errors carrying an explicit
// status keep it, missing records map to 404, everything else is a 500.
func Abort(c *gin.Context, err error) {
	var se statusError
	if errors.As(err, &se) {
		c.JSON(se.status, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
