package services

import (
	"errors"
	"fmt"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"
	"buensabor_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// User roles.
const (
	RoleAdmin    = "admin"
	RoleCashier  = "cashier"
	RoleCook     = "cook"
	RoleDelivery = "delivery"
	RoleCustomer = "customer"
)

var validRoles = map[string]bool{
	RoleAdmin:    true,
	RoleCashier:  true,
	RoleCook:     true,
	RoleDelivery: true,
	RoleCustomer: true,
}

// Auth-specific errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUserNotFound       = errors.New("user not found")
)

// RegisterRequest is the DTO for customer self-registration. A user row and a
// customer profile are created together.
type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=3"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	FullName    string  `json:"full_name" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
}

// CreateStaffUserRequest is the DTO for an admin creating a staff account.
type CreateStaffUserRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// LoginRequest is the DTO for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token pair and the authenticated user.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// AuthService defines the interface for authentication business logic.
type AuthService interface {
	RegisterCustomer(req RegisterRequest) (*models.User, *models.Customer, error)
	CreateStaffUser(req CreateStaffUserRequest) (*models.User, error)
	Login(req LoginRequest) (*LoginResponse, error)
	RefreshTokens(refreshToken string) (*LoginResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
}

type authService struct {
	authRepo     repositories.AuthRepository
	customerRepo repositories.CustomerRepository
	tx           repositories.Transactor
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, customerRepo repositories.CustomerRepository, tx repositories.Transactor) AuthService {
	return &authService{authRepo: authRepo, customerRepo: customerRepo, tx: tx}
}

// RegisterCustomer creates the login user and its customer profile in one
// transaction, so a customer account never exists half-made.
func (s *authService) RegisterCustomer(req RegisterRequest) (*models.User, *models.Customer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    &req.Email,
		FullName: &req.FullName,
		Role:     RoleCustomer,
		IsActive: true,
	}
	customer := &models.Customer{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Email:       &req.Email,
	}

	err = s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		userID, err := s.authRepo.CreateUser(tx, user, string(hash))
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		customer.UserID = &userID
		if _, err := s.customerRepo.CreateCustomer(tx, customer); err != nil {
			return fmt.Errorf("failed to create customer profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, customer, nil
}

func (s *authService) CreateStaffUser(req CreateStaffUserRequest) (*models.User, error) {
	if !validRoles[req.Role] || req.Role == RoleCustomer {
		return nil, fmt.Errorf("%w: invalid staff role %q", ErrValidation, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    &req.Email,
		FullName: &req.FullName,
		Role:     req.Role,
		IsActive: true,
	}
	err = s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		_, err := s.authRepo.CreateUser(tx, user, string(hash))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	user, passwordHash, err := s.authRepo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RefreshTokens validates a refresh token and issues a fresh pair.
func (s *authService) RefreshTokens(refreshToken string) (*LoginResponse, error) {
	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	user, err := s.authRepo.FindUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user %d: %w", claims.UserID, err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *models.User) (*LoginResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &LoginResponse{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user, nil
}
