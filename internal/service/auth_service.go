package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
	"github.com/WinKyaw/InventSight-sub004/internal/repository"
	"github.com/WinKyaw/InventSight-sub004/pkg/apperror"
	"github.com/WinKyaw/InventSight-sub004/pkg/jwt"
	"github.com/WinKyaw/InventSight-sub004/pkg/validator"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Login(input LoginInput) (*LoginResponse, error)
	Logout(userID uuid.UUID) error
	GetProfile(userID uuid.UUID) (*model.UserResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, logger *zap.Logger) AuthService {
	return &authService{userRepo: userRepo, logger: logger}
}

func (s *authService) Login(input LoginInput) (*LoginResponse, error) {
	if msg := validator.FirstErrorMessage(input); msg != "" {
		return nil, apperror.BadRequest(msg)
	}

	user, err := s.userRepo.FindByEmail(input.Email)
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.BadRequest("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.BadRequest("account is deactivated")
	}
	if !user.CheckPassword(input.Password) {
		return nil, apperror.BadRequest("invalid email or password")
	}

	// Rotating the version on every login keeps at most one session live
	// per user.
	tokenVersion := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(user.ID, tokenVersion); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.CompanyID, roleCode, user.GetPrivilegeCodes(), tokenVersion)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", user.CompanyID.String()),
	)

	resp := user.ToResponse()
	return &LoginResponse{Token: token, User: resp}, nil
}

func (s *authService) Logout(userID uuid.UUID) error {
	// Invalidate the current token by rotating the version.
	return s.userRepo.UpdateTokenVersion(userID, uuid.New().String())
}

func (s *authService) GetProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}
