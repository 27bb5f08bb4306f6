package cognito

import "context"

// Client is the subset of the Cognito user pool API the web app signs users in with.
type Client interface {
	SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error
	SignIn(ctx context.Context, input SignInInput) (AuthOutput, error)
	GlobalSignOut(ctx context.Context, input GlobalSignOutInput) error
}

type SignUpInput struct {
	Email    string
	Password string
}

type SignUpOutput struct {
	UserSub      string
	Confirmed    bool
	CodeDelivery string // e.g. "EMAIL"
}

type ConfirmSignUpInput struct {
	Email string
	Code  string
}

type SignInInput struct {
	Email    string
	Password string
}

// AuthOutput holds the tokens issued on a successful sign-in.
type AuthOutput struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

type GlobalSignOutInput struct {
	AccessToken string
}
