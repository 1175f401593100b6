package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrail/models"
	"safetrail/services"
	"safetrail/utils"
)

type UserController struct {
	userService *services.UserService
	validator   *utils.ValidationService
}

func NewUserController(userService *services.UserService, validator *utils.ValidationService) *UserController {
	return &UserController{
		userService: userService,
		validator:   validator,
	}
}

// GetProfile returns the authenticated tourist's profile
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	user, err := uc.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to get profile")
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", user)
}

// UpdateProfile updates profile fields and settings
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := uc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := uc.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Profile update failed: %v", err)
		handleServiceError(c, err, "Failed to update profile")
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", user)
}

// GetIdentityQR renders the tourist identity QR code as a PNG
func (uc *UserController) GetIdentityQR(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))

	png, err := uc.userService.IdentityQR(c.Request.Context(), userID, size)
	if err != nil {
		handleServiceError(c, err, "Failed to generate QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// =================== EMERGENCY CONTACTS ===================

// AddContact adds an emergency contact and sends a verification SMS
func (uc *UserController) AddContact(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := uc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	contact, err := uc.userService.AddContact(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err, "Failed to add contact")
		return
	}

	utils.CreatedResponse(c, "Emergency contact added", contact)
}

// UpdateContact updates an emergency contact
func (uc *UserController) UpdateContact(c *gin.Context) {
	userID := c.GetString("userID")
	contactID := c.Param("contactId")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := uc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := uc.userService.UpdateContact(c.Request.Context(), userID, contactID, req); err != nil {
		handleServiceError(c, err, "Failed to update contact")
		return
	}

	utils.SuccessResponse(c, "Emergency contact updated", nil)
}

// RemoveContact deletes an emergency contact
func (uc *UserController) RemoveContact(c *gin.Context) {
	userID := c.GetString("userID")
	contactID := c.Param("contactId")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := uc.userService.RemoveContact(c.Request.Context(), userID, contactID); err != nil {
		handleServiceError(c, err, "Failed to remove contact")
		return
	}

	utils.SuccessResponse(c, "Emergency contact removed", nil)
}

// ResendVerification re-sends the contact verification code
func (uc *UserController) ResendVerification(c *gin.Context) {
	userID := c.GetString("userID")
	contactID := c.Param("contactId")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := uc.userService.SendContactVerification(c.Request.Context(), userID, contactID); err != nil {
		handleServiceError(c, err, "Failed to send verification code")
		return
	}

	utils.SuccessResponse(c, "Verification code sent", nil)
}

// VerifyContact confirms a contact with the SMS code
func (uc *UserController) VerifyContact(c *gin.Context) {
	userID := c.GetString("userID")
	contactID := c.Param("contactId")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.VerifyContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := uc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := uc.userService.VerifyContact(c.Request.Context(), userID, contactID, req.Code); err != nil {
		handleServiceError(c, err, "Failed to verify contact")
		return
	}

	utils.SuccessResponse(c, "Emergency contact verified", nil)
}
