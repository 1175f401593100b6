package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrail/models"
	"safetrail/services"
	"safetrail/utils"
)

type ZoneController struct {
	zoneService *services.ZoneService
	validator   *utils.ValidationService
}

func NewZoneController(zoneService *services.ZoneService, validator *utils.ValidationService) *ZoneController {
	return &ZoneController{
		zoneService: zoneService,
		validator:   validator,
	}
}

// ListZones returns every safety zone, most restrictive first
func (zc *ZoneController) ListZones(c *gin.Context) {
	zones, err := zc.zoneService.ListZones(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list safety zones")
		return
	}

	utils.SuccessResponse(c, "Safety zones retrieved successfully", zones)
}

// GetZone returns one safety zone
func (zc *ZoneController) GetZone(c *gin.Context) {
	zone, err := zc.zoneService.GetZone(c.Request.Context(), c.Param("zoneId"))
	if err != nil {
		handleServiceError(c, err, "Failed to get safety zone")
		return
	}

	utils.SuccessResponse(c, "Safety zone retrieved successfully", zone)
}

// CreateZone adds a safety zone to the catalog
func (zc *ZoneController) CreateZone(c *gin.Context) {
	var req models.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := zc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	zone, err := zc.zoneService.CreateZone(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Zone creation failed: %v", err)
		handleServiceError(c, err, "Failed to create safety zone")
		return
	}

	utils.CreatedResponse(c, "Safety zone created successfully", zone)
}

// Classify reports which zone contains a location
func (zc *ZoneController) Classify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := zc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	classification, err := zc.zoneService.Classify(c.Request.Context(), models.Coordinate{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to classify location")
		return
	}

	utils.SuccessResponse(c, "Location classified successfully", classification)
}
