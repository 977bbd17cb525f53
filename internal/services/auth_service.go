package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sujangowda077/sidequest-main/internal/models"
)

type AuthService struct {
	authRepo models.AuthRepo
}

func NewAuthService(authRepo models.AuthRepo) *AuthService {
	return &AuthService{
		authRepo: authRepo,
	}
}

// SignUp enforces the campus-domain restriction before touching the backend.
func (as *AuthService) SignUp(ctx context.Context, email, password string) (interface{}, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	return as.authRepo.SignUp(ctx, email, password)
}

func (as *AuthService) SignIn(ctx context.Context, email, password string) (interface{}, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	return as.authRepo.SignIn(ctx, email, password)
}

func (as *AuthService) RefreshSession(ctx context.Context, refreshToken string) (interface{}, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	return as.authRepo.RefreshSession(ctx, refreshToken)
}
