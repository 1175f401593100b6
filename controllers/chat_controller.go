package controllers

import (
	"github.com/gin-gonic/gin"

	"safetrail/models"
	"safetrail/services"
	"safetrail/utils"
)

type ChatController struct {
	chatbotService *services.ChatbotService
	validator      *utils.ValidationService
}

func NewChatController(chatbotService *services.ChatbotService, validator *utils.ValidationService) *ChatController {
	return &ChatController{
		chatbotService: chatbotService,
		validator:      validator,
	}
}

// Chat answers a tourist question
func (cc *ChatController) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := cc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	utils.SuccessResponse(c, "Reply generated", cc.chatbotService.Reply(c.Request.Context(), req))
}
