package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safetrail/utils"
)

// handleServiceError maps a service error to the API envelope,
// falling back to a 500 for anything unstructured.
func handleServiceError(c *gin.Context, err error, fallback string) {
	if serviceErr, ok := utils.GetServiceError(err); ok {
		status := serviceErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		utils.ErrorResponse(c, status, serviceErr.Code, serviceErr.Message, nil)
		return
	}
	utils.InternalServerErrorResponse(c, fallback)
}
