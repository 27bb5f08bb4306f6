package service

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jaekwang-park/todo-web/internal/cognito"
	"github.com/jaekwang-park/todo-web/internal/repository"
)

// AuthService passes credential checks through to Cognito and records
// signed-in users.
type AuthService struct {
	cognitoClient cognito.Client
	userRepo      repository.UserRepository
}

func NewAuthService(cognitoClient cognito.Client, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cognitoClient: cognitoClient,
		userRepo:      userRepo,
	}
}

// --- Input/Output types ---

type SignInInput struct {
	Email    string
	Password string
}

type SignInOutput struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type SignUpInput struct {
	Email    string
	Password string
}

type SignUpOutput struct {
	UserSub      string `json:"user_sub"`
	Confirmed    bool   `json:"confirmed"`
	CodeDelivery string `json:"code_delivery"`
}

type ConfirmSignUpInput struct {
	Email string
	Code  string
}

type SignOutInput struct {
	AccessToken string
}

// --- Service methods ---

func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (SignInOutput, error) {
	if input.Email == "" {
		return SignInOutput{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return SignInOutput{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	out, err := s.cognitoClient.SignIn(ctx, cognito.SignInInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return SignInOutput{}, err
	}

	// The token was just issued by Cognito; its signature is checked on later requests.
	sub, err := extractSub(out.IDToken)
	if err != nil {
		return SignInOutput{}, fmt.Errorf("failed to extract sub from id token: %w", err)
	}

	user, err := s.userRepo.GetOrCreate(ctx, sub, input.Email)
	if err != nil {
		return SignInOutput{}, fmt.Errorf("failed to get or create user: %w", err)
	}

	return SignInOutput{
		UserID:       user.ID,
		IDToken:      out.IDToken,
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
		TokenType:    out.TokenType,
	}, nil
}

func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error) {
	if input.Email == "" {
		return SignUpOutput{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return SignUpOutput{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	out, err := s.cognitoClient.SignUp(ctx, cognito.SignUpInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return SignUpOutput{}, err
	}

	return SignUpOutput{
		UserSub:      out.UserSub,
		Confirmed:    out.Confirmed,
		CodeDelivery: out.CodeDelivery,
	}, nil
}

func (s *AuthService) ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error {
	if input.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}

	return s.cognitoClient.ConfirmSignUp(ctx, cognito.ConfirmSignUpInput{
		Email: input.Email,
		Code:  input.Code,
	})
}

func (s *AuthService) SignOut(ctx context.Context, input SignOutInput) error {
	if input.AccessToken == "" {
		return fmt.Errorf("%w: access_token is required", ErrInvalidInput)
	}

	return s.cognitoClient.GlobalSignOut(ctx, cognito.GlobalSignOutInput{
		AccessToken: input.AccessToken,
	})
}

func extractSub(idToken string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("sub claim not found in JWT")
	}
	return sub, nil
}
