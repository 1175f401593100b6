package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrail/models"
	"safetrail/services"
	"safetrail/utils"
)

type AuthController struct {
	authService *services.AuthService
	validator   *utils.ValidationService
}

func NewAuthController(authService *services.AuthService, validator *utils.ValidationService) *AuthController {
	return &AuthController{
		authService: authService,
		validator:   validator,
	}
}

// Register creates a new tourist account
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := ac.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	resp, err := ac.authService.Register(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Registration failed: %v", err)
		handleServiceError(c, err, "Failed to register")
		return
	}

	utils.CreatedResponse(c, "Account created successfully", resp)
}

// Login authenticates a tourist
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := ac.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	resp, err := ac.authService.Login(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "Failed to log in")
		return
	}

	utils.SuccessResponse(c, "Logged in successfully", resp)
}

// Refresh exchanges a refresh token for a new token pair
func (ac *AuthController) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	resp, err := ac.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "Failed to refresh token")
		return
	}

	utils.SuccessResponse(c, "Token refreshed successfully", resp)
}
