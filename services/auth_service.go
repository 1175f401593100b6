package services

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"safetrail/models"
	"safetrail/repositories"
	"safetrail/utils"
)

type AuthService struct {
	userRepo   *repositories.UserRepository
	jwtService *utils.JWTService
}

func NewAuthService(userRepo *repositories.UserRepository, jwtService *utils.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

func (as *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if _, err := as.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeConflict, "email already registered", http.StatusConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to hash password", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Nationality:  req.Nationality,
		Settings: models.UserSettings{
			Language:          "en",
			SafetyAlertsLevel: "all",
			ShareInterval:     5,
		},
	}

	if err := as.userRepo.Create(ctx, user); err != nil {
		if err.Error() == "email already registered" {
			return nil, utils.NewServiceErrorWithStatus(models.ErrCodeConflict, err.Error(), http.StatusConflict)
		}
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to create user", err)
	}

	logrus.Infof("Registered new tourist %s", user.Email)
	return as.buildAuthResponse(user)
}

func (as *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := as.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeUnauthorized, "invalid email or password", http.StatusUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeUnauthorized, "invalid email or password", http.StatusUnauthorized)
	}

	if !user.IsActive {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeForbidden, "account is deactivated", http.StatusForbidden)
	}

	return as.buildAuthResponse(user)
}

func (as *AuthService) Refresh(ctx context.Context, req models.RefreshRequest) (*models.AuthResponse, error) {
	claims, err := as.jwtService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeUnauthorized, "invalid refresh token", http.StatusUnauthorized)
	}

	user, err := as.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, utils.NewServiceErrorWithStatus(models.ErrCodeUnauthorized, "user not found", http.StatusUnauthorized)
	}

	return as.buildAuthResponse(user)
}

func (as *AuthService) buildAuthResponse(user *models.User) (*models.AuthResponse, error) {
	pair, err := as.jwtService.GenerateTokenPair(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, utils.NewServiceErrorWithCause(models.ErrCodeInternal, "failed to issue tokens", err)
	}

	return &models.AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
