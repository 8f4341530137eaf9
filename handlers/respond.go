package handlers

import (
	"net/http"

	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

var statusByKind = map[services.Kind]int{
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindValidation:      http.StatusBadRequest,
	services.KindNotFound:        http.StatusNotFound,
	services.KindForbidden:       http.StatusForbidden,
	services.KindConflict:        http.StatusBadRequest,
	services.KindRelatedMissing:  http.StatusBadRequest,
	services.KindInternal:        http.StatusInternalServerError,
}

// respondError renders a service error. Causes and stacks of internal
// failures are only exposed outside production.
func respondError(c *gin.Context, err error, production bool) {
	se := services.AsError(err)
	status, ok := statusByKind[se.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{"error": se.Message}
	if se.Details != nil {
		body["details"] = se.Details
	}
	if status == http.StatusInternalServerError && !production && se.Err != nil {
		body["cause"] = se.Err.Error()
		body["stack"] = se.Stack
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}
