package api

import (
	"time"

	"fiflow_backend/internal/platform/marketclock"
	"fiflow_backend/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// DateQuery binds the optional ?date=YYYY-MM-DD parameter.
// When absent it returns today's date in Asia/Seoul.
func DateQuery(c *gin.Context, now time.Time) (string, error) {
	var d *openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, false, "date", c.Request.URL.Query(), &d); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "date must be YYYY-MM-DD", err)
	}
	if d == nil {
		return marketclock.Today(now), nil
	}
	return d.Time.Format(marketclock.DateLayout), nil
}
