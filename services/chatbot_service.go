package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safetrail/models"
)

// ChatbotService answers common tourist questions with a small
// keyword-based intent matcher. Location-aware intents consult the
// safety pipeline when the client sent coordinates.
type ChatbotService struct {
	zoneService   *ZoneService
	safetyService *SafetyService
	helplineNo    string
	policeNo      string
}

func NewChatbotService(zoneService *ZoneService, safetyService *SafetyService, helplineNo, policeNo string) *ChatbotService {
	return &ChatbotService{
		zoneService:   zoneService,
		safetyService: safetyService,
		helplineNo:    helplineNo,
		policeNo:      policeNo,
	}
}

func (cs *ChatbotService) Reply(ctx context.Context, req models.ChatRequest) *models.ChatResponse {
	message := strings.ToLower(req.Message)

	resp := &models.ChatResponse{
		Intent:    "unknown",
		Timestamp: time.Now(),
	}

	switch {
	case containsAny(message, "emergency", "help me", "sos", "danger"):
		resp.Intent = "emergency"
		resp.Reply = fmt.Sprintf("If you are in immediate danger, use the panic button or call the police at %s. The tourist helpline is %s.", cs.policeNo, cs.helplineNo)
		resp.Suggestions = []string{"Trigger panic button", "Call police", "Call tourist helpline"}

	case containsAny(message, "safe", "safety", "score", "area"):
		resp.Intent = "safety_check"
		resp.Reply = cs.safetyReply(ctx, req)
		resp.Suggestions = []string{"Show safety score", "Show nearby emergency services"}

	case containsAny(message, "police", "hospital", "ambulance", "doctor"):
		resp.Intent = "emergency_services"
		resp.Reply = cs.servicesReply(ctx, req)
		resp.Suggestions = []string{"Call police", "Call ambulance"}

	case containsAny(message, "hello", "hi", "hey", "namaste"):
		resp.Intent = "greeting"
		resp.Reply = "Hello! I can help with safety information, nearby emergency services, and what to do in an emergency. What do you need?"
		resp.Suggestions = []string{"Is this area safe?", "Nearest police station", "Emergency numbers"}

	default:
		resp.Reply = fmt.Sprintf("I can help with safety questions and emergencies. For anything urgent call the tourist helpline at %s.", cs.helplineNo)
		resp.Suggestions = []string{"Is this area safe?", "Emergency numbers"}
	}

	return resp
}

func (cs *ChatbotService) safetyReply(ctx context.Context, req models.ChatRequest) string {
	if req.Latitude == nil || req.Longitude == nil {
		return "Share your location and I can tell you how safe the area around you is."
	}

	sample := models.LocationSample{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Timestamp: time.Now(),
	}
	evaluation, err := cs.safetyService.Evaluate(ctx, sample, models.ScoreOptions{})
	if err != nil {
		return "I could not check the safety of your area right now. Please try again."
	}

	zoneName := "an unmapped area"
	if evaluation.Classification.Zone != nil {
		zoneName = evaluation.Classification.Zone.Name
	}

	return fmt.Sprintf("You are in %s. Safety score: %d/100 (%s risk).", zoneName, evaluation.Score.Score, evaluation.RiskLevel)
}

func (cs *ChatbotService) servicesReply(ctx context.Context, req models.ChatRequest) string {
	base := fmt.Sprintf("Police: %s, Ambulance: 108, Tourist helpline: %s.", cs.policeNo, cs.helplineNo)

	if req.Latitude == nil || req.Longitude == nil {
		return base
	}

	services, err := cs.zoneService.EmergencyServices(ctx, models.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if err != nil || len(services) == 0 {
		return base
	}

	parts := make([]string, 0, len(services))
	for _, s := range services {
		parts = append(parts, fmt.Sprintf("%s %s (%.1f km)", s.Type, s.Number, s.DistanceKm))
	}
	return "Nearby emergency services: " + strings.Join(parts, ", ")
}

func containsAny(message string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}
