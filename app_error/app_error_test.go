package app_error

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func abortWith(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Abort(c, err)
	return w
}

func TestAbortKeepsWrappedStatus(t *testing.T) {
	w := abortWith(New(fmt.Errorf("bad state"), 400))
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "bad state")
}

func TestAbortMapsMissingRecordsTo404(t *testing.T) {
	w := abortWith(gorm.ErrRecordNotFound)
	assert.Equal(t, 404, w.Code)
}

func TestAbortMapsWrappedMissingRecordsTo404(t *testing.T) {
	w := abortWith(fmt.Errorf("loading challenge: %w", gorm.ErrRecordNotFound))
	assert.Equal(t, 404, w.Code)
}

func TestAbortDefaultsTo500(t *testing.T) {
	w := abortWith(fmt.Errorf("connection refused"))
	assert.Equal(t, 500, w.Code)
}
