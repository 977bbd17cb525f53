package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go/types"
)

type AuthRepo interface {
	SignUp(ctx context.Context, email, password string) (interface{}, error)
	SignIn(ctx context.Context, email, password string) (interface{}, error)
	RefreshSession(ctx context.Context, refreshToken string) (interface{}, error)
}

// SignUp registers the auth user. The matching profiles row is created by a
// database trigger, so a fresh account starts ungated until onboarding fills
// it in.
func (su *SupabaseRepo) SignUp(ctx context.Context, email, password string) (interface{}, error) {
	res, err := su.supabaseClient.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		if strings.Contains(err.Error(), "User already Registered") {
			return nil, fmt.Errorf("email already in use")
		}
		if strings.Contains(err.Error(), "unique constraint") {
			return nil, fmt.Errorf("user already exists")
		}
		return nil, fmt.Errorf("failed to create account")
	}
	return res, nil
}

func (su *SupabaseRepo) SignIn(ctx context.Context, email, password string) (interface{}, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return resp, nil
}

func (su *SupabaseRepo) RefreshSession(ctx context.Context, refreshToken string) (interface{}, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %v", err)
	}
	return resp, nil
}
