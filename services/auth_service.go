package services

import (
	"context"
	"strings"

	"knowledge-base-api/auth"
	"knowledge-base-api/models"
	"knowledge-base-api/repositories"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type authService struct {
	store      *repositories.Store
	jwtManager *auth.JWTManager
	bcryptCost int
}

func NewAuthService(store *repositories.Store, jwtManager *auth.JWTManager) AuthService {
	return &authService{
		store:      store,
		jwtManager: jwtManager,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, models.Invalid("Username, email, and password are required")
	}

	exists, err := s.store.Users.UsernameExists(ctx, username)
	if err != nil {
		return nil, storeError("check username", err, "")
	}
	if exists {
		return nil, models.ErrorConflict{Message: "Username already exists"}
	}

	if _, err := s.store.Users.GetByEmail(ctx, email); err == nil {
		return nil, models.ErrorConflict{Message: "Email already exists"}
	} else if !isNotFound(err) {
		return nil, storeError("check email", err, "")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, storeError("hash password", err, "")
	}

	role := req.Role
	if role == "" {
		role = models.RoleViewer
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, storeError("create user", err, "")
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	invalid := models.ErrorUnauthorized{Message: "Invalid username or password"}

	user, err := s.store.Users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, storeError("load user", err, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	return s.issue(user)
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load user", err, "User not found")
	}
	return user, nil
}

func (s *authService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, storeError("sign token", err, "")
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}
