package http

import (
	"net/http"

	"shop-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// Every response uses the same envelope: {success, message, <payload>...}.

func respond(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindOutOfStock, domain.KindDuplicate, domain.KindConflict:
		return http.StatusConflict
	case domain.KindEmptyCart, domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
