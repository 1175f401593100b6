package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrail/models"
	"safetrail/services"
	"safetrail/utils"
	"safetrail/websocket"
	"safetrail/workers"
)

// EmergencyController exposes the panic button, emergency calling,
// incident history, and live location sharing.
type EmergencyController struct {
	emergencyService *services.EmergencyService
	shareService     *services.LocationShareService
	userService      *services.UserService
	monitorManager   *workers.MonitorManager
	hub              *websocket.Hub
	validator        *utils.ValidationService
}

func NewEmergencyController(
	emergencyService *services.EmergencyService,
	shareService *services.LocationShareService,
	userService *services.UserService,
	monitorManager *workers.MonitorManager,
	hub *websocket.Hub,
	validator *utils.ValidationService,
) *EmergencyController {
	return &EmergencyController{
		emergencyService: emergencyService,
		shareService:     shareService,
		userService:      userService,
		monitorManager:   monitorManager,
		hub:              hub,
		validator:        validator,
	}
}

// Panic triggers the full emergency alert fan-out
func (ec *EmergencyController) Panic(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.PanicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := ec.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := ec.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to load profile")
		return
	}

	location := &models.LocationSample{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Timestamp: time.Now(),
		Address:   req.Address,
	}

	result := ec.emergencyService.SendEmergencyAlert(c.Request.Context(), user, location, req.Message)
	if !result.Success {
		logrus.Errorf("Emergency dispatch failed for user %s: %s", userID, result.Error)
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success:   false,
			Message:   "Emergency alert could not be dispatched",
			Data:      result,
			Timestamp: time.Now(),
		})
		return
	}

	// Tighten the location watch while the emergency is active.
	if err := ec.monitorManager.SetEmergencyMode(userID, true); err != nil {
		logrus.Warnf("Failed to switch monitor to emergency mode: %v", err)
	}

	utils.CreatedResponse(c, "Emergency alert dispatched", result)
}

// Call opens the dialer toward an emergency number
func (ec *EmergencyController) Call(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.EmergencyCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result := ec.emergencyService.MakeEmergencyCall(req.Number)
	if !result.Success {
		c.JSON(http.StatusConflict, models.APIResponse{
			Success:   false,
			Message:   "Emergency call could not be placed",
			Data:      result,
			Timestamp: time.Now(),
		})
		return
	}

	utils.SuccessResponse(c, "Emergency call initiated", result)
}

// Templates lists the quick-send emergency messages
func (ec *EmergencyController) Templates(c *gin.Context) {
	utils.SuccessResponse(c, "Message templates retrieved successfully", ec.emergencyService.MessageTemplates())
}

// =================== INCIDENTS ===================

// ListIncidents returns the user's incident history
func (ec *EmergencyController) ListIncidents(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	incidents, err := ec.emergencyService.GetUserIncidents(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to list incidents")
		return
	}

	utils.SuccessResponse(c, "Incidents retrieved successfully", incidents)
}

// GetIncident returns one incident
func (ec *EmergencyController) GetIncident(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	incident, err := ec.emergencyService.GetIncident(c.Request.Context(), c.Param("incidentId"))
	if err != nil {
		handleServiceError(c, err, "Failed to get incident")
		return
	}
	if incident.UserID.Hex() != userID {
		utils.ForbiddenResponse(c, "Incident belongs to another user")
		return
	}

	utils.SuccessResponse(c, "Incident retrieved successfully", incident)
}

// UpdateIncidentLocation appends a location to an incident's history
func (ec *EmergencyController) UpdateIncidentLocation(c *gin.Context) {
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

	if validationErrors := ec.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := ec.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to load profile")
		return
	}

	if err := ec.emergencyService.SendLocationUpdate(c.Request.Context(), userID, c.Param("incidentId"), user, req.Sample()); err != nil {
		handleServiceError(c, err, "Failed to record location update")
		return
	}

	utils.SuccessResponse(c, "Location update recorded", nil)
}

// ResolveIncident closes an active incident
func (ec *EmergencyController) ResolveIncident(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.ResolveIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := ec.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := ec.emergencyService.ResolveIncident(c.Request.Context(), userID, c.Param("incidentId"), req.Resolution); err != nil {
		handleServiceError(c, err, "Failed to resolve incident")
		return
	}

	// Back to the relaxed watch profile.
	if err := ec.monitorManager.SetEmergencyMode(userID, false); err != nil {
		logrus.Warnf("Failed to switch monitor out of emergency mode: %v", err)
	}

	utils.SuccessResponse(c, "Incident resolved", nil)
}

// =================== LOCATION SHARING ===================

// StartSharing opens a live sharing session for an incident
func (ec *EmergencyController) StartSharing(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.ShareStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := ec.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := ec.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to load profile")
		return
	}

	session, err := ec.shareService.StartSharing(c.Request.Context(), user, req.EmergencyID, req.Location.Sample())
	if err != nil {
		handleServiceError(c, err, "Failed to start location sharing")
		return
	}

	utils.CreatedResponse(c, "Location sharing started", session)
}

// ShareUpdate records a new location in an open session
func (ec *EmergencyController) ShareUpdate(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.ShareUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := ec.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := ec.shareService.ShareUpdate(c.Request.Context(), userID, req.SessionID, req.Location.Sample())
	if err != nil {
		handleServiceError(c, err, "Failed to share location update")
		return
	}

	utils.SuccessResponse(c, "Location update recorded", result)
}

// StopSharing closes a sharing session
func (ec *EmergencyController) StopSharing(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.ShareStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if err := ec.shareService.StopSharing(c.Request.Context(), userID, req.SessionID); err != nil {
		handleServiceError(c, err, "Failed to stop location sharing")
		return
	}

	utils.SuccessResponse(c, "Location sharing stopped", nil)
}

// WatchIncident upgrades to a websocket streaming the incident's
// location pings
func (ec *EmergencyController) WatchIncident(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	incidentID := c.Param("incidentId")
	incident, err := ec.emergencyService.GetIncident(c.Request.Context(), incidentID)
	if err != nil {
		handleServiceError(c, err, "Failed to load incident")
		return
	}
	if incident.UserID.Hex() != userID {
		utils.ForbiddenResponse(c, "Incident belongs to another user")
		return
	}

	websocket.ServeWS(ec.hub, c, incidentID, userID)
}
