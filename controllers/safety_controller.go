package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrail/models"
	"safetrail/services"
	"safetrail/utils"
	"safetrail/workers"
)

// SafetyController exposes the safety pipeline: scoring, alerts,
// nearby emergency services, the geofence monitor lifecycle, and the
// device location feed.
type SafetyController struct {
	safetyService  *services.SafetyService
	zoneService    *services.ZoneService
	userService    *services.UserService
	monitorManager *workers.MonitorManager
	validator      *utils.ValidationService
}

func NewSafetyController(
	safetyService *services.SafetyService,
	zoneService *services.ZoneService,
	userService *services.UserService,
	monitorManager *workers.MonitorManager,
	validator *utils.ValidationService,
) *SafetyController {
	return &SafetyController{
		safetyService:  safetyService,
		zoneService:    zoneService,
		userService:    userService,
		monitorManager: monitorManager,
		validator:      validator,
	}
}

// Evaluate computes the safety score, risk level, and alerts for a
// location
func (sc *SafetyController) Evaluate(c *gin.Context) {
	var req models.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := sc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	sample := models.LocationSample{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Timestamp: time.Now(),
	}
	opts := models.ScoreOptions{
		CrowdDensity: req.CrowdDensity,
		Weather:      req.Weather,
	}

	evaluation, err := sc.safetyService.Evaluate(c.Request.Context(), sample, opts)
	if err != nil {
		handleServiceError(c, err, "Failed to evaluate safety")
		return
	}

	utils.SuccessResponse(c, "Safety evaluated successfully", evaluation)
}

// EmergencyServices lists the services for the zone containing a
// location
func (sc *SafetyController) EmergencyServices(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	services, err := sc.zoneService.EmergencyServices(c.Request.Context(), models.Coordinate{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to find emergency services")
		return
	}

	utils.SuccessResponse(c, "Emergency services retrieved successfully", services)
}

// =================== GEOFENCE MONITOR ===================

// StartMonitoring starts the geofence monitor for the authenticated
// user
func (sc *SafetyController) StartMonitoring(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	user, err := sc.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to load profile")
		return
	}

	// The monitor outlives the request; tie it to the background
	// context and let StopMonitoring end it.
	if err := sc.monitorManager.StartMonitoring(context.Background(), userID, user.DeviceToken); err != nil {
		logrus.Errorf("Failed to start geofence monitor: %v", err)
		handleServiceError(c, err, "Failed to start monitoring")
		return
	}

	utils.SuccessResponse(c, "Safety monitoring started", nil)
}

// StopMonitoring stops the user's geofence monitor
func (sc *SafetyController) StopMonitoring(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	sc.monitorManager.StopMonitoring(userID)
	utils.SuccessResponse(c, "Safety monitoring stopped", nil)
}

// MonitorStats returns the monitor counters
func (sc *SafetyController) MonitorStats(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	monitor := sc.monitorManager.GetMonitor(userID)
	if monitor == nil {
		utils.NotFoundResponse(c, "Monitor")
		return
	}

	utils.SuccessResponse(c, "Monitor stats retrieved successfully", monitor.GetStats())
}

// MonitorTransitions returns the recorded zone transitions
func (sc *SafetyController) MonitorTransitions(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	monitor := sc.monitorManager.GetMonitor(userID)
	if monitor == nil {
		utils.NotFoundResponse(c, "Monitor")
		return
	}

	utils.SuccessResponse(c, "Zone transitions retrieved successfully", monitor.GetTransitions())
}

// UpdateLocation feeds a device location sample into the user's
// provider
func (sc *SafetyController) UpdateLocation(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := sc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	sc.monitorManager.PublishLocation(userID, req.Sample())
	utils.SuccessResponse(c, "Location updated", nil)
}
