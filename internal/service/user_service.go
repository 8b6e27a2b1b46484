package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"
	"procurement-backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
}

type UpdateUserRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	Department string `json:"department"`
	IsActive   *bool  `json:"is_active"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo      repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, tokenRepo repository.RefreshTokenRepository) UserService {
	return &userService{repo: repo, tokenRepo: tokenRepo}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Phone:      user.Phone,
		Role:       user.Role,
		Department: user.Department,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", apperror.ErrValidation, req.Role)
	}
	if req.Role == model.RoleDepartmentHead && req.Department == "" {
		return nil, fmt.Errorf("%w: department is required for DEPARTMENT_HEAD", apperror.ErrValidation)
	}

	// Basic Email format validation fallback
	emailRegex := regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)
	if !emailRegex.MatchString(req.Email) {
		return nil, fmt.Errorf("%w: invalid email format", apperror.ErrValidation)
	}

	// Double check username/email uniqueness via repo directly
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username already exists", apperror.ErrValidation)
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", apperror.ErrValidation)
	}

	// Hash password automatically
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:   req.Username,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   string(hashedPassword),
		Role:       req.Role,
		Department: req.Department,
		IsActive:   true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", apperror.ErrForbidden)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", apperror.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", apperror.ErrForbidden)
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates the presented refresh token: the old one is deleted
// and a new pair issued, so a stolen token is usable at most once.
func (s *userService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	stored, err := s.tokenRepo.FindByToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", apperror.ErrForbidden)
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokenRepo.Delete(ctx, stored.ID)
		return nil, fmt.Errorf("%w: refresh token expired", apperror.ErrForbidden)
	}

	user, err := s.repo.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", apperror.ErrForbidden)
	}

	if err := s.tokenRepo.Delete(ctx, stored.ID); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  now.Add(accessTokenTTL).Unix(),
		"iat":  now.Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	accessToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshToken := hex.EncodeToString(raw)

	if err := s.tokenRepo.Create(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: now.Add(refreshTokenTTL),
	}); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &TokenResponse{Token: accessToken, RefreshToken: refreshToken}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, *mapToResponse(&u))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", apperror.ErrValidation, req.Role)
		}
		user.Role = req.Role
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
			return nil, fmt.Errorf("%w: username already exists", apperror.ErrValidation)
		}
		user.Username = req.Username
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("%w: email already exists", apperror.ErrValidation)
		}
		user.Email = req.Email
	}

	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Department != "" {
		user.Department = req.Department
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}
	// Revoke outstanding sessions along with the account.
	if err := s.tokenRepo.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
