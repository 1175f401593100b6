package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"safetrail/config"
	"safetrail/controllers"
	"safetrail/database"
	"safetrail/middleware"
	"safetrail/models"
	"safetrail/repositories"
	"safetrail/services"
	"safetrail/utils"
	"safetrail/websocket"
	"safetrail/workers"
)

// App bundles the wired application so main can run and shut it down.
type App struct {
	Router         *gin.Engine
	MonitorManager *workers.MonitorManager
	CleanupWorker  *workers.CleanupWorker
}

// SetupRoutes wires repositories, services, controllers, and routes.
// Every dependency is constructed here and passed down explicitly.
func SetupRoutes(cfg *config.Config, db *mongo.Database, redisClient *redis.Client, hub *websocket.Hub) *App {
	router := gin.New()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	zoneRepo := repositories.NewZoneRepository(db)
	incidentRepo := repositories.NewIncidentRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)

	// Shared utilities
	jwtService := utils.NewJWTService(cfg.JWTSecret)
	validator := utils.NewValidationService()

	// Transports
	smsService := services.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.TransportTimeout)
	pushService, err := services.NewFCMPushService(cfg.FirebaseCredentials)
	if err != nil {
		logrus.Fatalf("Failed to initialize push service: %v", err)
	}
	dialer := services.NewClientDialer(true)

	// Domain services
	authService := services.NewAuthService(userRepo, jwtService)
	userService := services.NewUserService(userRepo, smsService, redisClient)
	zoneService := services.NewZoneService(zoneRepo)
	safetyService := services.NewSafetyService(zoneService, cfg.NightStartHour, cfg.NightEndHour)
	emergencyService := services.NewEmergencyService(incidentRepo, smsService, pushService, dialer, services.EmergencyDispatchConfig{
		ContactSendSpacing: cfg.ContactSendSpacing,
		PoliceNumber:       cfg.DefaultPoliceNo,
		AmbulanceNumber:    cfg.DefaultAmbulanceNo,
		HelplineNumber:     cfg.DefaultHelplineNo,
	})
	shareService := services.NewLocationShareService(sessionRepo, incidentRepo, smsService, hub, cfg.ShareInterval)
	chatbotService := services.NewChatbotService(zoneService, safetyService, cfg.DefaultHelplineNo, cfg.DefaultPoliceNo)

	// Workers
	monitorManager := workers.NewMonitorManager(zoneService, safetyService, pushService, redisClient, workers.GeofenceMonitorConfig{
		NormalInterval:     cfg.NormalInterval,
		EmergencyInterval:  cfg.EmergencyInterval,
		NormalDistanceM:    cfg.NormalDistanceM,
		EmergencyDistanceM: cfg.EmergencyDistanceM,
		TransitionLogSize:  cfg.TransitionLogSize,
	})
	cleanupWorker := workers.NewCleanupWorker(sessionRepo, 5*time.Minute, 30*time.Minute)

	// Controllers
	authController := controllers.NewAuthController(authService, validator)
	userController := controllers.NewUserController(userService, validator)
	zoneController := controllers.NewZoneController(zoneService, validator)
	safetyController := controllers.NewSafetyController(safetyService, zoneService, userService, monitorManager, validator)
	emergencyController := controllers.NewEmergencyController(emergencyService, shareService, userService, monitorManager, hub, validator)
	chatController := controllers.NewChatController(chatbotService, validator)

	// Global middleware
	errorHandler := middleware.NewErrorHandler(cfg.Environment, logrus.StandardLogger())
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Redis:    redisClient,
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	})

	router.Use(errorHandler.Handle())
	router.Use(middleware.LoggerMiddleware(middleware.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))
	router.Use(middleware.CORSMiddleware(cfg.Environment))
	router.Use(rateLimiter.Middleware())

	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	// Health
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		dbStatus := "up"
		if !database.IsConnected() {
			status = "degraded"
			dbStatus = "down"
		}
		c.JSON(200, models.HealthResponse{
			Status:  status,
			Version: "1.0.0",
			Services: map[string]string{
				"database": dbStatus,
				"sms":      transportStatus(smsService.IsAvailable()),
			},
			Timestamp: time.Now(),
		})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
	}

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(authMiddleware.RequireAuth())
	{
		users := authed.Group("/users")
		{
			users.GET("/me", userController.GetProfile)
			users.PUT("/me", userController.UpdateProfile)
			users.GET("/me/qr", userController.GetIdentityQR)
			users.POST("/me/contacts", userController.AddContact)
			users.PUT("/me/contacts/:contactId", userController.UpdateContact)
			users.DELETE("/me/contacts/:contactId", userController.RemoveContact)
			users.POST("/me/contacts/:contactId/verification", userController.ResendVerification)
			users.POST("/me/contacts/:contactId/verify", userController.VerifyContact)
		}

		zones := authed.Group("/zones")
		{
			zones.GET("", zoneController.ListZones)
			zones.GET("/:zoneId", zoneController.GetZone)
			zones.POST("", zoneController.CreateZone)
			zones.POST("/classify", zoneController.Classify)
		}

		safety := authed.Group("/safety")
		{
			safety.POST("/evaluate", safetyController.Evaluate)
			safety.POST("/emergency-services", safetyController.EmergencyServices)
			safety.POST("/monitor/start", safetyController.StartMonitoring)
			safety.POST("/monitor/stop", safetyController.StopMonitoring)
			safety.GET("/monitor/stats", safetyController.MonitorStats)
			safety.GET("/monitor/transitions", safetyController.MonitorTransitions)
			safety.POST("/location", safetyController.UpdateLocation)
		}

		emergency := authed.Group("/emergency")
		{
			emergency.POST("/panic", middleware.PanicCooldown(redisClient, cfg.PanicCooldown), emergencyController.Panic)
			emergency.POST("/call", emergencyController.Call)
			emergency.GET("/templates", emergencyController.Templates)
			emergency.GET("/incidents", emergencyController.ListIncidents)
			emergency.GET("/incidents/:incidentId", emergencyController.GetIncident)
			emergency.POST("/incidents/:incidentId/location", emergencyController.UpdateIncidentLocation)
			emergency.POST("/incidents/:incidentId/resolve", emergencyController.ResolveIncident)
			emergency.GET("/incidents/:incidentId/watch", emergencyController.WatchIncident)
			emergency.POST("/share/start", emergencyController.StartSharing)
			emergency.POST("/share/update", emergencyController.ShareUpdate)
			emergency.POST("/share/stop", emergencyController.StopSharing)
		}

		authed.POST("/chat", chatController.Chat)
	}

	return &App{
		Router:         router,
		MonitorManager: monitorManager,
		CleanupWorker:  cleanupWorker,
	}
}

func transportStatus(available bool) string {
	if available {
		return "up"
	}
	return "unconfigured"
}
